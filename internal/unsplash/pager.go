package unsplash

import (
	"context"
	"sync"
)

const (
	StartingPage    = 1
	DefaultPageSize = 25
)

// Page is one page of results with the numbers of its neighbours.
// PrevPage and NextPage are 0 when there is no such page.
type Page struct {
	Number     int     `json:"page"`
	PrevPage   int     `json:"prevPage,omitempty"`
	NextPage   int     `json:"nextPage,omitempty"`
	Total      int     `json:"total"`
	TotalPages int     `json:"totalPages"`
	Photos     []Photo `json:"photos"`
}

// Pager walks the result pages of one query.
type Pager struct {
	searcher Searcher
	query    string
	pageSize int

	mu   sync.Mutex
	next int
}

// NewPager creates a pager over query that starts at StartingPage.
func NewPager(searcher Searcher, query string, pageSize int) *Pager {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Pager{
		searcher: searcher,
		query:    query,
		pageSize: pageSize,
		next:     StartingPage,
	}
}

func (p *Pager) Query() string {
	return p.query
}

// Page loads page n without moving the pager.
func (p *Pager) Page(ctx context.Context, n int) (*Page, error) {
	if n < StartingPage {
		n = StartingPage
	}

	resp, err := p.searcher.SearchPhotos(ctx, p.query, n, p.pageSize)
	if err != nil {
		return nil, err
	}

	page := &Page{
		Number:     n,
		Total:      resp.Total,
		TotalPages: resp.TotalPages,
		Photos:     resp.Results,
	}
	if page.Photos == nil {
		page.Photos = []Photo{}
	}
	if n > StartingPage {
		page.PrevPage = n - 1
	}
	if n < resp.TotalPages {
		page.NextPage = n + 1
	}
	return page, nil
}

// Next loads the page after the last one returned by Next.
func (p *Pager) Next(ctx context.Context) (*Page, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.next == 0 {
		return nil, ErrNoMorePages
	}

	page, err := p.Page(ctx, p.next)
	if err != nil {
		return nil, err
	}
	p.next = page.NextPage
	return page, nil
}

// HasNext reports whether Next can return another page.
func (p *Pager) HasNext() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.next != 0
}
