package tasks

import (
	"context"
	"sync"
	"time"
)

// MutationKind names the operation a Mutation describes.
type MutationKind string

const (
	MutationCreate  MutationKind = "create"
	MutationUpdate  MutationKind = "update"
	MutationDelete  MutationKind = "delete"
	MutationReorder MutationKind = "reorder"
)

// Mutation is a proposed change to one action's task list. Tasks is the
// complete list as it will look once the mutation is committed.
type Mutation struct {
	Kind     MutationKind
	ActionID string
	Task     Task
	Tasks    []Task
}

// Backend is the remote side of the task store. The store commits a
// mutation locally only after Apply succeeds.
type Backend interface {
	Fetch(ctx context.Context, actionID string) ([]Task, error)
	Apply(ctx context.Context, m Mutation) error
}

// MemoryBackend keeps task lists in process memory, optionally delaying
// every call to mimic a network round trip.
type MemoryBackend struct {
	mu      sync.Mutex
	data    map[string][]Task
	latency time.Duration
}

func NewMemoryBackend(seed map[string][]Task, latency time.Duration) *MemoryBackend {
	data := make(map[string][]Task, len(seed))
	for k, v := range seed {
		data[k] = cloneTasks(v)
	}
	return &MemoryBackend{data: data, latency: latency}
}

func (b *MemoryBackend) Fetch(ctx context.Context, actionID string) ([]Task, error) {
	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return cloneTasks(b.data[actionID]), nil
}

func (b *MemoryBackend) Apply(ctx context.Context, m Mutation) error {
	if err := b.wait(ctx); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data[m.ActionID] = cloneTasks(m.Tasks)
	return nil
}

func (b *MemoryBackend) wait(ctx context.Context) error {
	if b.latency <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(b.latency)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func cloneTasks(in []Task) []Task {
	if in == nil {
		return nil
	}
	out := make([]Task, len(in))
	copy(out, in)
	return out
}
