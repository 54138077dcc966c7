package viewmodels

import "github.com/mrlokans/sunflower/internal/unsplash"

// GalleryViewModel serves photo searches for a plant.
type GalleryViewModel struct {
	searcher unsplash.Searcher
	pageSize int
}

func NewGalleryViewModel(searcher unsplash.Searcher) *GalleryViewModel {
	return &GalleryViewModel{searcher: searcher, pageSize: unsplash.DefaultPageSize}
}

// SearchPictures returns a pager over the results for query.
func (vm *GalleryViewModel) SearchPictures(query string) *unsplash.Pager {
	return unsplash.NewPager(vm.searcher, query, vm.pageSize)
}
