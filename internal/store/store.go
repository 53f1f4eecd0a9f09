// internal/store/store.go
//
// The stage store is the single source of truth for which order sits in which
// lifecycle bucket. It is mutated only through Load and MoveOrder; everything
// else reads snapshots. Loads for different stages and transitions for
// different orders run on separate goroutines under the TUI event loop, so the
// buckets sit behind one mutex.

package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/nlicea/orderdeck/internal/order"
)

// Fetcher is the slice of the remote gateway the store consumes.
type Fetcher interface {
	FetchStage(ctx context.Context, stage order.Stage) ([]order.Order, error)
}

// Store holds the in-memory bucket per lifecycle stage. Invariant: every
// order id lives in exactly one bucket at any instant.
type Store struct {
	fetcher Fetcher

	mu      sync.RWMutex
	buckets map[order.Stage][]order.Order
}

// New creates an empty store backed by the given gateway.
func New(fetcher Fetcher) (*Store, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("store: fetcher is required")
	}
	buckets := make(map[order.Stage][]order.Order, len(order.Buckets()))
	for _, stage := range order.Buckets() {
		buckets[stage] = nil
	}
	return &Store{fetcher: fetcher, buckets: buckets}, nil
}

// Load fetches the server-side membership of one stage and replaces the
// bucket wholesale. On failure the bucket keeps its previous contents and the
// caller gets a stage-scoped *order.FetchError. Loads of different stages are
// independent and safe to run concurrently.
func (s *Store) Load(ctx context.Context, stage order.Stage) error {
	bucket := stage.Bucket()
	orders, err := s.fetcher.FetchStage(ctx, stage)
	if err != nil {
		return &order.FetchError{Stage: bucket, Err: err}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	replacement := make([]order.Order, len(orders))
	copy(replacement, orders)
	s.buckets[bucket] = replacement
	return nil
}

// MoveOrder removes the order from one bucket and appends it to another,
// preserving arrival order in the destination. Returns
// order.ErrNotFoundInSource when the order is not in the source bucket; that
// always means stale state and the caller must resync via Load rather than
// retry.
func (s *Store) MoveOrder(id string, from, to order.Stage) error {
	src, dst := from.Bucket(), to.Bucket()
	s.mu.Lock()
	defer s.mu.Unlock()
	bucket := s.buckets[src]
	for i, o := range bucket {
		if o.ID != id {
			continue
		}
		s.buckets[src] = append(bucket[:i:i], bucket[i+1:]...)
		s.buckets[dst] = append(s.buckets[dst], o)
		return nil
	}
	return fmt.Errorf("store: move %s from %s: %w", id, src, order.ErrNotFoundInSource)
}

// Find locates an order by id and reports the bucket holding it.
func (s *Store) Find(id string) (order.Order, order.Stage, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, stage := range order.Buckets() {
		for _, o := range s.buckets[stage] {
			if o.ID == id {
				return o, stage, true
			}
		}
	}
	return order.Order{}, "", false
}

// Snapshot returns a copy of one bucket for rendering.
func (s *Store) Snapshot(stage order.Stage) []order.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bucket := s.buckets[stage.Bucket()]
	out := make([]order.Order, len(bucket))
	copy(out, bucket)
	return out
}

// Counts reports the size of each bucket. Computed on demand; order volumes
// are small enough that a walk beats bookkeeping.
func (s *Store) Counts() map[order.Stage]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[order.Stage]int, len(s.buckets))
	for _, stage := range order.Buckets() {
		counts[stage] = len(s.buckets[stage])
	}
	return counts
}
