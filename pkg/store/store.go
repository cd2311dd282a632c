// Package store archives routing runs so results can be retrieved later by
// id, e.g. through the HTTP API. A run records the device name, routing
// parameters, the measured report, and the serialized routed program.
//
// Two backends are provided: [MemoryStore] for tests and single-process
// usage, and [MongoStore] for durable server deployments.
package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/qroute/pkg/metrics"
	"github.com/matzehuels/qroute/pkg/route"
)

// ErrNotFound is returned when no run exists for the requested id.
var ErrNotFound = errors.New("run not found")

// Run is one archived routing run.
type Run struct {
	ID          string         `json:"id" bson:"_id"`
	Device      string         `json:"device" bson:"device"`
	SearchDepth int            `json:"search_depth" bson:"search_depth"`
	CreatedAt   time.Time      `json:"created_at" bson:"created_at"`
	Report      metrics.Report `json:"report" bson:"report"`

	// Routed is the routing result in its JSON serialization. Kept as bytes
	// so every backend stores the exact same representation.
	Routed []byte `json:"routed" bson:"routed"`
}

// NewRun builds a run record with a fresh id and timestamp.
func NewRun(deviceName string, searchDepth int, routed *route.Routed, report metrics.Report) (Run, error) {
	data, err := route.MarshalRouted(routed)
	if err != nil {
		return Run{}, fmt.Errorf("serialize routed program: %w", err)
	}
	return Run{
		ID:          uuid.NewString(),
		Device:      deviceName,
		SearchDepth: searchDepth,
		CreatedAt:   time.Now().UTC(),
		Report:      report,
		Routed:      data,
	}, nil
}

// Result decodes the archived routing result.
func (r Run) Result() (*route.Routed, error) {
	return route.ReadRouted(bytes.NewReader(r.Routed))
}

// Store persists routing runs. Implementations must be safe for concurrent
// use.
type Store interface {
	// Put archives a run. Ids are unique; putting an existing id fails.
	Put(ctx context.Context, run Run) error

	// Get retrieves a run by id, or [ErrNotFound].
	Get(ctx context.Context, id string) (Run, error)

	// List returns the most recent runs, newest first, at most limit.
	List(ctx context.Context, limit int) ([]Run, error)

	// Close releases backend resources.
	Close(ctx context.Context) error
}

// MemoryStore is an in-memory store for tests and single-process usage.
type MemoryStore struct {
	mu   sync.RWMutex
	runs map[string]Run
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{runs: make(map[string]Run)}
}

// Put archives a run.
func (s *MemoryStore) Put(ctx context.Context, run Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.runs[run.ID]; exists {
		return fmt.Errorf("run %s already exists", run.ID)
	}
	s.runs[run.ID] = run
	return nil
}

// Get retrieves a run by id.
func (s *MemoryStore) Get(ctx context.Context, id string) (Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[id]
	if !ok {
		return Run{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return run, nil
}

// List returns the most recent runs, newest first.
func (s *MemoryStore) List(ctx context.Context, limit int) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]Run, 0, len(s.runs))
	for _, run := range s.runs {
		runs = append(runs, run)
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

// Close does nothing for the in-memory store.
func (s *MemoryStore) Close(ctx context.Context) error { return nil }

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)
