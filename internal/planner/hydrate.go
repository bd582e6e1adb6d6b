package planner

import (
	"context"
	"fmt"
	"log"
	"sync"

	"taskplanner/internal/model"
)

// HydrationState tracks the one-time bootstrap load.
type HydrationState int

const (
	StateUninitialized HydrationState = iota
	StateLoading
	StateReady
	StateFailed
)

func (s HydrationState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Snapshot is what hydration subscribers receive once loading reaches
// Ready: the store state after the post-load generation pass, so every
// subscriber sees the same collections regardless of when it
// registered.
type Snapshot struct {
	Tasks     []model.Task
	Recurring []model.RecurringTask
}

// Hydrator brings the store to a durable-backed state before anything
// else queries or mutates it, then runs the generation engine exactly
// once per hydrator lifetime. Concurrent Load calls coalesce into the
// single in-flight load.
type Hydrator struct {
	store   *Store
	engine  *Engine
	durable DocumentStore
	today   func() string

	mu        sync.Mutex
	state     HydrationState
	loadErr   error
	done      chan struct{}
	generated bool
	subs      map[int]func(Snapshot)
	nextSub   int
}

// NewHydrator wires the hydration protocol. today supplies the
// reference day for the post-load generation run.
func NewHydrator(store *Store, engine *Engine, durable DocumentStore, today func() string) *Hydrator {
	return &Hydrator{
		store:   store,
		engine:  engine,
		durable: durable,
		today:   today,
		subs:    make(map[int]func(Snapshot)),
	}
}

// State reports the current hydration state.
func (h *Hydrator) State() HydrationState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Subscribe registers a callback invoked once with the loaded snapshot
// when hydration reaches Ready. A subscriber added after Ready fires
// immediately. The returned function unsubscribes.
func (h *Hydrator) Subscribe(fn func(Snapshot)) func() {
	h.mu.Lock()
	if h.state == StateReady {
		snap := h.snapshotLocked()
		h.mu.Unlock()
		h.notify(fn, snap)
		return func() {}
	}
	id := h.nextSub
	h.nextSub++
	h.subs[id] = fn
	h.mu.Unlock()
	return func() {
		h.mu.Lock()
		delete(h.subs, id)
		h.mu.Unlock()
	}
}

// Load performs the bootstrap load. If a load is already in flight the
// call waits for it and returns its result; once Ready, Load is a
// no-op. After a failure, Load keeps returning the stored error —
// Rehydrate is the recovery path.
func (h *Hydrator) Load(ctx context.Context) error {
	h.mu.Lock()
	switch h.state {
	case StateReady:
		h.mu.Unlock()
		return nil
	case StateFailed:
		err := h.loadErr
		h.mu.Unlock()
		return err
	case StateLoading:
		done := h.done
		h.mu.Unlock()
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
		h.mu.Lock()
		err := h.loadErr
		h.mu.Unlock()
		return err
	}
	h.state = StateLoading
	h.done = make(chan struct{})
	h.mu.Unlock()

	return h.load(ctx)
}

// Rehydrate resets the state machine and the generation guard, then
// repeats the load. Meant for recovery, not normal operation; calls
// that race an in-flight load wait for it to settle first.
func (h *Hydrator) Rehydrate(ctx context.Context) error {
	for {
		h.mu.Lock()
		if h.state == StateLoading {
			done := h.done
			h.mu.Unlock()
			select {
			case <-done:
			case <-ctx.Done():
				return ctx.Err()
			}
			continue
		}
		h.state = StateLoading
		h.loadErr = nil
		h.generated = false
		h.done = make(chan struct{})
		h.mu.Unlock()
		return h.load(ctx)
	}
}

func (h *Hydrator) load(ctx context.Context) error {
	tasks, err := h.durable.ScanTasks(ctx)
	if err != nil {
		return h.fail(fmt.Errorf("load tasks: %w", err))
	}
	recurring, err := h.durable.ScanRecurring(ctx)
	if err != nil {
		return h.fail(fmt.Errorf("load recurring tasks: %w", err))
	}

	h.store.ReplaceAll(tasks, recurring)
	log.Printf("[info] hydrated %d tasks, %d recurring definitions", len(tasks), len(recurring))

	h.mu.Lock()
	h.state = StateReady
	h.loadErr = nil
	runGen := !h.generated
	h.generated = true
	subs := make([]func(Snapshot), 0, len(h.subs))
	for _, fn := range h.subs {
		subs = append(subs, fn)
	}
	done := h.done
	h.mu.Unlock()

	if runGen {
		created, err := h.engine.GenerateForDate(h.today())
		if err != nil {
			log.Printf("generate instances: %v", err)
		} else if len(created) > 0 {
			log.Printf("[info] generated %d recurring instances for %s", len(created), h.today())
		}
	}

	snap := Snapshot{
		Tasks:     h.store.Tasks(),
		Recurring: h.store.RecurringTasks(),
	}
	for _, fn := range subs {
		h.notify(fn, snap)
	}

	close(done)
	return nil
}

func (h *Hydrator) fail(err error) error {
	h.mu.Lock()
	h.state = StateFailed
	h.loadErr = err
	done := h.done
	h.mu.Unlock()
	close(done)
	return err
}

// notify shields the fan-out from a panicking subscriber so the rest
// still get notified.
func (h *Hydrator) notify(fn func(Snapshot), snap Snapshot) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("hydration subscriber panic: %v", r)
		}
	}()
	fn(snap)
}

// snapshotLocked assumes h.mu is held.
func (h *Hydrator) snapshotLocked() Snapshot {
	return Snapshot{
		Tasks:     h.store.Tasks(),
		Recurring: h.store.RecurringTasks(),
	}
}
