// Package session keeps per-operator form state between requests.
package session

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/okian/r744/internal/domain/features"
	"github.com/okian/r744/pkg/metrics"
)

const (
	defaultCapacity = 10_000
	defaultTTL      = time.Hour
)

// State is what one operator session remembers: the last submitted field
// values and how many predictions it has run.
type State struct {
	Record      features.Record
	Predictions int
}

// Fresh returns the state of a session that has not submitted anything yet.
func Fresh() State {
	return State{Record: features.Default()}
}

// Store holds session state keyed by session id. Sessions never see each
// other's state.
type Store interface {
	// Get returns the state for id, or Fresh() and false when id is unknown
	// or expired.
	Get(ctx context.Context, id string) (State, bool)
	// Save replaces the state for id.
	Save(ctx context.Context, id string, st State)
	// Len returns the number of live sessions.
	Len() int
}

// lruStore is a bounded, expiring Store. When full, the least recently used
// session is dropped.
type lruStore struct {
	capacity int
	ttl      time.Duration
	cache    *expirable.LRU[string, State]
}

// NewInMemoryStore creates a bounded in-memory store.
func NewInMemoryStore(opts ...Option) Store {
	s := &lruStore{
		capacity: defaultCapacity,
		ttl:      defaultTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.cache = expirable.NewLRU[string, State](s.capacity, func(string, State) {
		metrics.RecordSessionEvicted()
	}, s.ttl)
	return s
}

func (s *lruStore) Get(_ context.Context, id string) (State, bool) {
	st, ok := s.cache.Get(id)
	if !ok {
		return Fresh(), false
	}
	return st, true
}

func (s *lruStore) Save(_ context.Context, id string, st State) {
	s.cache.Add(id, st)
	metrics.UpdateActiveSessions(s.cache.Len())
}

func (s *lruStore) Len() int {
	return s.cache.Len()
}

// NewID returns a fresh random session id.
func NewID() string {
	return uuid.NewString()
}

// ValidID reports whether id looks like one issued by NewID.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
