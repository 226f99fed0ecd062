// Package domain holds the typed entities produced by input normalization
// (spec §3) and the arena-indexed storage that the rest of the pipeline
// reads by reference.
package domain

import "fmt"

// Arena stores entities of one kind behind stable integer indices, with a
// secondary string-id lookup for the exchange-format boundary. Hot paths in
// eligibility and model building use the integer index; only input parsing
// and output rendering touch the string id.
type Arena[T any] struct {
	items []T
	index map[string]int
}

// NewArena constructs an empty arena.
func NewArena[T any]() *Arena[T] {
	return &Arena[T]{index: make(map[string]int)}
}

// Add appends item under id, returning its stable index. Re-adding the same
// id is rejected so callers can surface a duplicate-id diagnostic.
func (a *Arena[T]) Add(id string, item T) (int, error) {
	if _, exists := a.index[id]; exists {
		return -1, fmt.Errorf("duplicate id %q", id)
	}
	idx := len(a.items)
	a.items = append(a.items, item)
	a.index[id] = idx
	return idx, nil
}

// Lookup resolves a string id to its arena index.
func (a *Arena[T]) Lookup(id string) (int, bool) {
	idx, ok := a.index[id]
	return idx, ok
}

// Get returns the item at idx.
func (a *Arena[T]) Get(idx int) T {
	return a.items[idx]
}

// Set replaces the item at idx, preserving its index and id.
func (a *Arena[T]) Set(idx int, item T) {
	a.items[idx] = item
}

// Len reports the number of items stored.
func (a *Arena[T]) Len() int {
	return len(a.items)
}

// All returns the underlying items in insertion order. Callers must not
// mutate the returned slice's addressability expectations across goroutines;
// the planning pipeline treats arenas as immutable once built (spec §3
// ownership: ownership is single-threaded per run).
func (a *Arena[T]) All() []T {
	return a.items
}
