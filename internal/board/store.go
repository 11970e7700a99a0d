package board

import (
	"sync"

	"github.com/google/uuid"

	"taskboard/internal/model"
)

// Store is the board's local copy of the task collection. It is a cache of
// the remote store: Replace installs an authoritative snapshot, PatchStatus
// applies an optimistic move and Reset empties it after a failed load.
type Store struct {
	mu    sync.RWMutex
	tasks []model.Task
}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) Replace(tasks []model.Task) {
	cp := make([]model.Task, len(tasks))
	copy(cp, tasks)

	s.mu.Lock()
	s.tasks = cp
	s.mu.Unlock()
}

// PatchStatus sets the status of one task and returns the status it had.
func (s *Store) PatchStatus(id uuid.UUID, status model.Status) (model.Status, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			prev := s.tasks[i].Status
			s.tasks[i].Status = status
			return prev, true
		}
	}
	return "", false
}

func (s *Store) Reset() {
	s.mu.Lock()
	s.tasks = nil
	s.mu.Unlock()
}

// Tasks returns a snapshot in collection order.
func (s *Store) Tasks() []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cp := make([]model.Task, len(s.tasks))
	copy(cp, s.tasks)
	return cp
}

func (s *Store) Find(id uuid.UUID) (model.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return model.Task{}, false
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}

// Buckets groups the current snapshot by column.
func (s *Store) Buckets() map[model.Status][]model.Task {
	return Bucket(s.Tasks())
}
