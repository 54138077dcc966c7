// Package gallery keeps at most one photo search running per screen.
//
// Starting a search for a screen cancels the search that screen started
// before, the way a search box drops results for text the user has already
// replaced.
package gallery

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

// ErrSuperseded is returned to a search that was replaced by a newer one from the same screen.
var ErrSuperseded = errors.New("search superseded by a newer request")

type search struct {
	id     string
	cancel context.CancelCauseFunc
}

// Runner tracks the in-flight search of every screen.
type Runner struct {
	mu       sync.Mutex
	inflight map[string]search
}

func NewRunner() *Runner {
	return &Runner{inflight: make(map[string]search)}
}

// Run cancels the screen's previous search, then runs fn with a context that
// the next Run for the same screen cancels. A superseded run always returns
// ErrSuperseded, even if fn finished first.
func (r *Runner) Run(ctx context.Context, screenID string, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithCancelCause(ctx)
	current := search{id: uuid.NewString(), cancel: cancel}

	r.mu.Lock()
	if prev, ok := r.inflight[screenID]; ok {
		prev.cancel(ErrSuperseded)
	}
	r.inflight[screenID] = current
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		if s, ok := r.inflight[screenID]; ok && s.id == current.id {
			delete(r.inflight, screenID)
		}
		r.mu.Unlock()
		cancel(nil)
	}()

	err := fn(ctx)
	if errors.Is(context.Cause(ctx), ErrSuperseded) {
		return ErrSuperseded
	}
	return err
}

// Cancel stops the screen's in-flight search, if any.
func (r *Runner) Cancel(screenID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.inflight[screenID]
	if !ok {
		return false
	}
	s.cancel(context.Canceled)
	delete(r.inflight, screenID)
	return true
}

// InFlight returns the number of screens with a running search.
func (r *Runner) InFlight() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.inflight)
}
