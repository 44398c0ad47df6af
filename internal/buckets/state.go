package buckets

// Package buckets owns the per-bucket pagination state for the order tabs.
// The store is the only writer of that state; coordinators ask for a
// re-fetch instead of patching cached orders in place.

import (
	"sync"

	"github.com/orderdeskapp/orderdesk/internal/orders"
)

// State is a read-only snapshot of one bucket's slot.
type State struct {
	Page       int
	TotalPages int
	TotalCount int
	PageSize   int
	Items      []orders.Order
	Loading    bool
	Err        string
}

type slot struct {
	page       int
	totalPages int
	totalCount int
	pageSize   int
	items      []orders.Order
	loading    bool
	errMsg     string

	// latest is the sequence of the most recently issued fetch for this
	// bucket. Responses carrying an older sequence are discarded, so a slow
	// reply can never clobber a newer one.
	latest uint64
}

type Store struct {
	mu    sync.Mutex
	slots map[orders.Bucket]*slot
}

func NewStore(defaultPageSize int) *Store {
	if defaultPageSize <= 0 {
		defaultPageSize = 9
	}
	slots := make(map[orders.Bucket]*slot, len(orders.Buckets))
	for _, bucket := range orders.Buckets {
		slots[bucket] = &slot{page: 1, pageSize: defaultPageSize}
	}
	return &Store{slots: slots}
}

// SetPageSize overrides one bucket's page size.
func (s *Store) SetPageSize(bucket orders.Bucket, size int) {
	if size <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if sl, ok := s.slots[bucket]; ok {
		sl.pageSize = size
	}
}

// Snapshot returns a copy of the bucket's current state.
func (s *Store) Snapshot(bucket orders.Bucket) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl, ok := s.slots[bucket]
	if !ok {
		return State{Page: 1}
	}
	items := make([]orders.Order, len(sl.items))
	copy(items, sl.items)
	return State{
		Page:       sl.page,
		TotalPages: sl.totalPages,
		TotalCount: sl.totalCount,
		PageSize:   sl.pageSize,
		Items:      items,
		Loading:    sl.loading,
		Err:        sl.errMsg,
	}
}

// beginFetch registers a new in-flight fetch and returns its sequence along
// with the bucket's page size.
func (s *Store) beginFetch(bucket orders.Bucket) (uint64, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl := s.slots[bucket]
	sl.latest++
	sl.loading = true
	return sl.latest, sl.pageSize
}

// completeFetch applies a successful result. Only the requested bucket's
// slot is touched, and only if the result is still the latest.
func (s *Store) completeFetch(bucket orders.Bucket, seq uint64, page int, items []orders.Order, totalPages, totalCount int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl := s.slots[bucket]
	if seq != sl.latest {
		return false
	}
	sl.page = page
	sl.items = items
	sl.totalPages = totalPages
	sl.totalCount = totalCount
	sl.loading = false
	sl.errMsg = ""
	return true
}

// failFetch records a bucket-scoped failure: items are cleared but the
// pagination metadata is left alone to avoid inconsistent page/total pairs.
func (s *Store) failFetch(bucket orders.Bucket, seq uint64, msg string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl := s.slots[bucket]
	if seq != sl.latest {
		return false
	}
	sl.items = nil
	sl.loading = false
	sl.errMsg = msg
	return true
}

func (s *Store) resetPage(bucket orders.Bucket) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sl, ok := s.slots[bucket]; ok {
		sl.page = 1
	}
}
