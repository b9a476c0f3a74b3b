package api

import (
	"sync"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/samcharles93/glfm/pkg/glfm"
	"github.com/samcharles93/glfm/pkg/glfm/link"
)

// stateRecord is a learned state together with what it was learned from.
type stateRecord struct {
	State     *glfm.LatentState
	X         *mat.Dense
	Types     []link.DataType
	Params    glfm.Params
	CreatedAt time.Time
}

// StateStore keeps latent states in memory, keyed by their run id.
type StateStore struct {
	mu     sync.Mutex
	states map[string]*stateRecord
}

func NewStateStore() *StateStore {
	return &StateStore{
		states: make(map[string]*stateRecord),
	}
}

func (s *StateStore) Save(rec *stateRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[rec.State.ID] = rec
}

func (s *StateStore) Get(id string) (*stateRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.states[id]
	return rec, ok
}

func (s *StateStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.states[id]; !ok {
		return false
	}
	delete(s.states, id)
	return true
}

func (s *StateStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.states)
}
