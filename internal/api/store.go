package api

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// RunStore keeps finished generation runs in memory so clients can fetch
// them again by id.
type RunStore struct {
	mu   sync.Mutex
	runs map[string]*Run
}

func NewRunStore() *RunStore {
	return &RunStore{
		runs: make(map[string]*Run),
	}
}

// Put assigns run an id and creation time and stores it.
func (s *RunStore) Put(run *Run, now time.Time) {
	run.ID = newRunID()
	run.Object = "run"
	run.CreatedAt = now.Unix()

	s.mu.Lock()
	s.runs[run.ID] = run
	s.mu.Unlock()
}

func (s *RunStore) Get(id string) (*Run, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.runs[id]
	return run, ok
}

func (s *RunStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.runs[id]; !ok {
		return false
	}
	delete(s.runs, id)
	return true
}

// IDs returns the stored run ids, oldest first.
func (s *RunStore) IDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	type entry struct {
		id string
		at int64
	}
	entries := make([]entry, 0, len(s.runs))
	for id, run := range s.runs {
		entries = append(entries, entry{id: id, at: run.CreatedAt})
	}
	slices.SortFunc(entries, func(a, b entry) int {
		if a.at != b.at {
			return int(a.at - b.at)
		}
		if a.id < b.id {
			return -1
		}
		return 1
	})
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.id
	}
	return ids
}

func newRunID() string {
	return "run_" + uuid.NewString()
}
