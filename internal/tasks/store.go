package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrTaskNotFound is returned for operations on an unknown task id.
var ErrTaskNotFound = errors.New("task not found")

// Store caches task lists per action and applies mutations through a
// Backend. A failed backend call leaves the cache untouched. Concurrent
// mutations are serialized; the last one to commit wins.
//
// Backends replace an action's whole list on Apply, so a mutation is only
// computed against a list that was fetched first.
type Store struct {
	mu      sync.Mutex
	backend Backend
	logger  *slog.Logger
	lists   map[string][]Task
	owner   map[string]string // task id -> action id
	loaded  map[string]bool
	version map[string]uint64 // bumped by every commit
	now     func() time.Time
	newID   func() string
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithIDFunc(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

func NewStore(b Backend, opts ...Option) *Store {
	s := &Store{
		backend: b,
		logger:  slog.New(slog.DiscardHandler),
		lists:   make(map[string][]Task),
		owner:   make(map[string]string),
		loaded:  make(map[string]bool),
		version: make(map[string]uint64),
		now:     func() time.Time { return time.Now().UTC() },
		newID:   func() string { return "task-" + uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load fetches the action's tasks from the backend and replaces the cache.
// When a mutation commits while the fetch is in flight, the committed list
// is kept and returned instead.
func (s *Store) Load(ctx context.Context, actionID string) ([]Task, error) {
	s.mu.Lock()
	ver := s.version[actionID]
	s.mu.Unlock()

	fetched, err := s.fetch(ctx, actionID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.version[actionID] != ver {
		s.logger.Debug("discard stale task fetch", "action", actionID)
		return cloneTasks(s.lists[actionID]), nil
	}
	s.install(actionID, fetched)
	return cloneTasks(s.lists[actionID]), nil
}

func (s *Store) fetch(ctx context.Context, actionID string) ([]Task, error) {
	fetched, err := s.backend.Fetch(ctx, actionID)
	if err != nil {
		s.logger.Error("fetch tasks", "action", actionID, "err", err)
		return nil, fmt.Errorf("fetch tasks for %s: %w", actionID, err)
	}
	return fetched, nil
}

// install replaces the cached list of actionID. Callers hold s.mu.
func (s *Store) install(actionID string, fetched []Task) {
	list := cloneTasks(fetched)
	sort.SliceStable(list, func(i, j int) bool { return list[i].Order < list[j].Order })
	renumber(list)

	for _, t := range s.lists[actionID] {
		delete(s.owner, t.ID)
	}
	for i := range list {
		list[i].ActionID = actionID
		s.owner[list[i].ID] = actionID
	}
	s.lists[actionID] = list
	s.loaded[actionID] = true
}

// List returns the cached tasks of an action ordered by Order.
func (s *Store) List(actionID string) []Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := cloneTasks(s.lists[actionID])
	if out == nil {
		out = []Task{}
	}
	return out
}

// Progress reports completion over the cached tasks of an action.
func (s *Store) Progress(actionID string) Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ComputeProgress(s.lists[actionID])
}

// Add validates d against the action window and appends a new task. An
// action that was never loaded is fetched first.
func (s *Store) Add(ctx context.Context, actionID string, bounds DateRange, d Draft) (Task, error) {
	clean, err := Validate(d, bounds)
	if err != nil {
		return Task{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded[actionID] {
		fetched, err := s.fetch(ctx, actionID)
		if err != nil {
			return Task{}, err
		}
		s.install(actionID, fetched)
	}

	now := s.now()
	t := Task{
		ID:          s.newID(),
		ActionID:    actionID,
		Description: clean.Description,
		Responsible: clean.Responsible,
		Sector:      clean.Sector,
		Status:      clean.Status,
		StartDate:   clean.StartDate,
		EndDate:     clean.EndDate,
		FollowUp:    clean.FollowUp,
		Order:       len(s.lists[actionID]),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	next := append(cloneTasks(s.lists[actionID]), t)

	if err := s.commit(ctx, Mutation{Kind: MutationCreate, ActionID: actionID, Task: t, Tasks: next}); err != nil {
		return Task{}, err
	}
	s.owner[t.ID] = actionID
	return t, nil
}

// Update merges p into the task and bumps UpdatedAt. Text and date fields
// are revalidated; the action window is not, since the store does not own it.
func (s *Store) Update(ctx context.Context, taskID string, p Patch) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	actionID, idx, err := s.locate(taskID)
	if err != nil {
		return Task{}, err
	}

	next := cloneTasks(s.lists[actionID])
	merged := p.apply(next[idx])
	clean, err := Validate(merged.draft(), DateRange{})
	if err != nil {
		return Task{}, err
	}
	merged.Description = clean.Description
	merged.Responsible = clean.Responsible
	merged.Sector = clean.Sector
	merged.StartDate = clean.StartDate
	merged.EndDate = clean.EndDate
	merged.FollowUp = clean.FollowUp
	merged.UpdatedAt = s.now()
	next[idx] = merged

	if err := s.commit(ctx, Mutation{Kind: MutationUpdate, ActionID: actionID, Task: merged, Tasks: next}); err != nil {
		return Task{}, err
	}
	return merged, nil
}

// Delete removes the task and renumbers its siblings 0..n-1.
func (s *Store) Delete(ctx context.Context, taskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	actionID, idx, err := s.locate(taskID)
	if err != nil {
		return err
	}

	cur := s.lists[actionID]
	removed := cur[idx]
	next := make([]Task, 0, len(cur)-1)
	next = append(next, cur[:idx]...)
	next = append(next, cur[idx+1:]...)
	renumber(next)

	if err := s.commit(ctx, Mutation{Kind: MutationDelete, ActionID: actionID, Task: removed, Tasks: next}); err != nil {
		return err
	}
	delete(s.owner, taskID)
	return nil
}

// Reorder moves the task to newOrder, clamped to [0, n-1], and renumbers
// the list. It returns the resulting list.
func (s *Store) Reorder(ctx context.Context, taskID string, newOrder int) ([]Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	actionID, idx, err := s.locate(taskID)
	if err != nil {
		return nil, err
	}

	cur := s.lists[actionID]
	moved := cur[idx]
	rest := make([]Task, 0, len(cur))
	rest = append(rest, cur[:idx]...)
	rest = append(rest, cur[idx+1:]...)

	newOrder = clamp(newOrder, 0, len(cur)-1)
	next := make([]Task, 0, len(cur))
	next = append(next, rest[:newOrder]...)
	next = append(next, moved)
	next = append(next, rest[newOrder:]...)
	renumber(next)

	if err := s.commit(ctx, Mutation{Kind: MutationReorder, ActionID: actionID, Task: next[newOrder], Tasks: next}); err != nil {
		return nil, err
	}
	return cloneTasks(next), nil
}

// commit sends m to the backend and, on success, installs m.Tasks as the
// action's list. Callers hold s.mu.
func (s *Store) commit(ctx context.Context, m Mutation) error {
	if err := s.backend.Apply(ctx, m); err != nil {
		s.logger.Error("apply task mutation", "kind", m.Kind, "action", m.ActionID, "task", m.Task.ID, "err", err)
		return fmt.Errorf("%s task: %w", m.Kind, err)
	}
	s.lists[m.ActionID] = m.Tasks
	s.loaded[m.ActionID] = true
	s.version[m.ActionID]++
	s.logger.Debug("task mutation applied", "kind", m.Kind, "action", m.ActionID, "task", m.Task.ID)
	return nil
}

func (s *Store) locate(taskID string) (string, int, error) {
	actionID, ok := s.owner[taskID]
	if !ok {
		return "", 0, fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}
	for i, t := range s.lists[actionID] {
		if t.ID == taskID {
			return actionID, i, nil
		}
	}
	return "", 0, fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
}

func renumber(list []Task) {
	for i := range list {
		list[i].Order = i
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
