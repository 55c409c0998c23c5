// Package app holds the client-side task shell: list state, fetch
// sequencing, the initial loading gate and two-step deletes.
package app

import (
	"context"
	"errors"
	"time"

	"github.com/taskflow/backend/internal/client"
	"github.com/taskflow/backend/internal/domain"
	"github.com/taskflow/backend/internal/infrastructure/logger"
)

const (
	DefaultMinLoading    = 2 * time.Second
	DefaultConfirmWindow = 3 * time.Second
)

var ErrShellStopped = errors.New("shell: stopped")

// TaskAPI is the remote task store. *client.Client satisfies it.
type TaskAPI interface {
	ListTasks(ctx context.Context, status domain.Status) ([]domain.Task, error)
	CreateTask(ctx context.Context, input client.TaskInput) (*domain.Task, error)
	UpdateTask(ctx context.Context, id string, input client.TaskInput) (*domain.Task, error)
	DeleteTask(ctx context.Context, id string) error
}

type DeleteResult int

const (
	// DeletePending means the task is now awaiting a confirming call.
	DeletePending DeleteResult = iota
	// DeleteDone means the confirming call reached the server.
	DeleteDone
)

type Config struct {
	API           TaskAPI
	Logger        *logger.Logger
	Clock         Clock
	MinLoading    time.Duration
	ConfirmWindow time.Duration
	// OnChange runs on the event loop after every transition.
	OnChange func(Snapshot)
}

type op struct {
	fn  func(*State)
	ack chan struct{}
	// readOnly ops do not notify OnChange.
	readOnly bool
}

type Shell struct {
	api           TaskAPI
	log           *logger.Logger
	clock         Clock
	minLoading    time.Duration
	confirmWindow time.Duration
	onChange      func(Snapshot)

	ops  chan op
	done chan struct{}

	// Owned by the event loop.
	state        State
	runCtx       context.Context
	gateTimer    Timer
	confirmTimer Timer
	confirmGen   uint64
}

func New(cfg Config) *Shell {
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = RealClock()
	}
	minLoading := cfg.MinLoading
	if minLoading <= 0 {
		minLoading = DefaultMinLoading
	}
	window := cfg.ConfirmWindow
	if window <= 0 {
		window = DefaultConfirmWindow
	}
	return &Shell{
		api:           cfg.API,
		log:           log,
		clock:         clock,
		minLoading:    minLoading,
		confirmWindow: window,
		onChange:      cfg.OnChange,
		ops:           make(chan op),
		done:          make(chan struct{}),
	}
}

// Run processes transitions until ctx is cancelled. On return every timer is
// stopped and later completions are dropped.
func (s *Shell) Run(ctx context.Context) error {
	s.runCtx = ctx
	defer s.teardown()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case o := <-s.ops:
			o.fn(&s.state)
			if o.ack != nil {
				close(o.ack)
			}
			if s.onChange != nil && !o.readOnly {
				s.onChange(s.state.snapshot())
			}
		}
	}
}

func (s *Shell) teardown() {
	if s.gateTimer != nil {
		s.gateTimer.Stop()
	}
	if s.confirmTimer != nil {
		s.confirmTimer.Stop()
	}
	close(s.done)
	s.log.Debugw("shell_stopped")
}

// do runs fn on the loop and waits for it to finish.
func (s *Shell) do(fn func(*State)) error {
	return s.send(op{fn: fn})
}

func (s *Shell) send(o op) error {
	ack := make(chan struct{})
	o.ack = ack
	select {
	case s.ops <- o:
	case <-s.done:
		return ErrShellStopped
	}
	<-ack
	return nil
}

// post queues fn without waiting for it. It is used from timer callbacks and
// fetch goroutines, which must not outlive the loop.
func (s *Shell) post(fn func(*State)) {
	go func() {
		select {
		case s.ops <- op{fn: fn}:
		case <-s.done:
		}
	}()
}

// Snapshot returns a copy of the current state.
func (s *Shell) Snapshot() (Snapshot, error) {
	var snap Snapshot
	err := s.send(op{fn: func(st *State) { snap = st.snapshot() }, readOnly: true})
	return snap, err
}

// Mount arms the initial loading gate and starts the first fetch.
func (s *Shell) Mount() error {
	return s.do(func(st *State) {
		s.gateTimer = s.clock.AfterFunc(s.minLoading, func() {
			s.post(func(st *State) { st.minElapsed = true })
		})
		s.startFetch(st)
	})
}

// SetFilter switches the status filter and refetches when it changed.
func (s *Shell) SetFilter(status domain.Status) error {
	return s.do(func(st *State) {
		if st.Filter == status {
			return
		}
		st.Filter = status
		s.startFetch(st)
	})
}

// Retry refetches the list with the current filter.
func (s *Shell) Retry() error {
	return s.do(s.startFetch)
}

// startFetch runs on the loop. The request itself runs on its own goroutine
// and posts its result back tagged with its sequence token.
func (s *Shell) startFetch(st *State) {
	seq := st.beginFetch()
	filter := st.Filter
	ctx := s.runCtx
	go func() {
		tasks, err := s.api.ListTasks(ctx, filter)
		s.post(func(st *State) {
			if !st.finishFetch(seq, tasks, err) {
				s.log.Debugw("shell_fetch_stale", "seq", seq, "filter", filter)
				return
			}
			if err != nil {
				s.log.Warnw("shell_fetch_failed", "filter", filter, "error", err)
			}
		})
	}()
}

// Create submits a new task and prepends it on success. Failures leave the
// list untouched and are returned to the caller.
func (s *Shell) Create(ctx context.Context, input client.TaskInput) (*domain.Task, error) {
	if err := s.do(func(st *State) { st.Creating = true }); err != nil {
		return nil, err
	}
	task, err := s.api.CreateTask(ctx, input)
	if doErr := s.do(func(st *State) {
		st.Creating = false
		if err == nil {
			st.prepend(*task)
		}
	}); doErr != nil && err == nil {
		return task, doErr
	}
	return task, err
}

// Update submits edited fields and replaces the entry in place on success.
func (s *Shell) Update(ctx context.Context, id string, input client.TaskInput) (*domain.Task, error) {
	if err := s.do(func(st *State) { st.Updating = true }); err != nil {
		return nil, err
	}
	task, err := s.api.UpdateTask(ctx, id, input)
	if doErr := s.do(func(st *State) {
		st.Updating = false
		if err == nil {
			st.replace(*task)
		}
	}); doErr != nil && err == nil {
		return task, doErr
	}
	return task, err
}

// Delete implements the two-step confirmation. The first call on an id marks
// it pending for the confirm window; a second call on the same id within the
// window deletes it. A failed delete leaves the list and pending mark as is.
func (s *Shell) Delete(ctx context.Context, id string) (DeleteResult, error) {
	confirmed := false
	if err := s.do(func(st *State) {
		if st.PendingDelete == id {
			confirmed = true
			st.Deleting = true
			return
		}
		st.PendingDelete = id
		s.armConfirmReset(id)
	}); err != nil {
		return DeletePending, err
	}
	if !confirmed {
		return DeletePending, nil
	}

	err := s.api.DeleteTask(ctx, id)
	if doErr := s.do(func(st *State) {
		st.Deleting = false
		if err != nil {
			return
		}
		st.remove(id)
		if st.PendingDelete == id {
			st.PendingDelete = ""
			if s.confirmTimer != nil {
				s.confirmTimer.Stop()
			}
		}
	}); doErr != nil && err == nil {
		return DeleteDone, doErr
	}
	if err != nil {
		s.log.Warnw("shell_delete_failed", "id", id, "error", err)
	}
	return DeleteDone, err
}

// armConfirmReset runs on the loop and replaces any previous reset timer.
func (s *Shell) armConfirmReset(id string) {
	if s.confirmTimer != nil {
		s.confirmTimer.Stop()
	}
	s.confirmGen++
	gen := s.confirmGen
	s.confirmTimer = s.clock.AfterFunc(s.confirmWindow, func() {
		s.post(func(st *State) {
			if s.confirmGen == gen && st.PendingDelete == id {
				st.PendingDelete = ""
			}
		})
	})
}
