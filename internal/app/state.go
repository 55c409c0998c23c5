package app

import (
	"github.com/taskflow/backend/internal/domain"
)

// State is the shell's single owned state container. It is only mutated on
// the shell's event loop, through the methods below.
type State struct {
	Tasks  []domain.Task
	Filter domain.Status
	Error  string

	Loading  bool
	Creating bool
	Updating bool
	Deleting bool

	PendingDelete string

	minElapsed     bool
	firstFetchDone bool
	fetchSeq       uint64
}

// InitialLoading holds until both the minimum display time has passed and
// the first list fetch has completed.
func (s *State) InitialLoading() bool {
	return !s.minElapsed || !s.firstFetchDone
}

// beginFetch starts a list fetch and returns its sequence token.
func (s *State) beginFetch() uint64 {
	s.fetchSeq++
	s.Loading = true
	s.Error = ""
	return s.fetchSeq
}

// finishFetch applies a fetch result. Results carrying a superseded token
// are discarded and false is returned. A failure keeps the previous list.
func (s *State) finishFetch(seq uint64, tasks []domain.Task, err error) bool {
	if seq != s.fetchSeq {
		return false
	}
	s.Loading = false
	s.firstFetchDone = true
	if err != nil {
		s.Error = err.Error()
		return true
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	s.Tasks = tasks
	return true
}

func (s *State) prepend(task domain.Task) {
	s.Tasks = append([]domain.Task{task}, s.Tasks...)
}

// replace swaps the entry with the same ID in place.
func (s *State) replace(task domain.Task) {
	for i := range s.Tasks {
		if s.Tasks[i].ID == task.ID {
			s.Tasks[i] = task
			return
		}
	}
}

func (s *State) remove(id string) {
	out := s.Tasks[:0:0]
	for _, t := range s.Tasks {
		if t.ID != id {
			out = append(out, t)
		}
	}
	s.Tasks = out
}

// Snapshot is a read-only copy of State handed to observers.
type Snapshot struct {
	Tasks          []domain.Task
	Filter         domain.Status
	Error          string
	Loading        bool
	Creating       bool
	Updating       bool
	Deleting       bool
	PendingDelete  string
	InitialLoading bool
}

func (s *State) snapshot() Snapshot {
	return Snapshot{
		Tasks:          append([]domain.Task(nil), s.Tasks...),
		Filter:         s.Filter,
		Error:          s.Error,
		Loading:        s.Loading,
		Creating:       s.Creating,
		Updating:       s.Updating,
		Deleting:       s.Deleting,
		PendingDelete:  s.PendingDelete,
		InitialLoading: s.InitialLoading(),
	}
}
