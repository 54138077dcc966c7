// Package viewmodels adapts repository streams to the state a screen shows.
//
// View-models hold no rendering logic. A handler creates one per screen,
// reads its streams until the client goes away, and calls Close.
package viewmodels

import (
	"context"
	"strconv"
)

// SavedState is the per-screen key/value state a view-model is restored from.
type SavedState interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

// MapState is an in-memory SavedState.
type MapState map[string]any

func (m MapState) Get(key string) (any, bool) {
	v, ok := m[key]
	return v, ok
}

func (m MapState) Set(key string, value any) {
	m[key] = value
}

func stringValue(state SavedState, key string) (string, bool) {
	v, ok := state.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func intValue(state SavedState, key string) (int, bool) {
	v, ok := state.Get(key)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case string:
		i, err := strconv.Atoi(n)
		return i, err == nil
	default:
		return 0, false
	}
}

// scope is the lifetime of a view-model. Work started by the view-model
// itself, rather than by a caller's context, stops when the scope closes.
type scope struct {
	ctx    context.Context
	cancel context.CancelFunc
}

func newScope() scope {
	ctx, cancel := context.WithCancel(context.Background())
	return scope{ctx: ctx, cancel: cancel}
}

// Close cancels everything the view-model started.
func (s scope) Close() {
	s.cancel()
}
