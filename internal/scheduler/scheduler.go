// Package scheduler runs named recurring triggers on cron schedules anchored
// to a configured time zone.
//
// Each trigger moves OFF → SCHEDULED → RUNNING → SCHEDULED. StopAll returns
// every trigger to OFF. A trigger never runs concurrently with itself: a tick
// or manual fire that lands while the handler is still running is skipped.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/projecthub/pm-system/internal/pkg/metrics"
)

var (
	ErrUnknownTrigger   = errors.New("unknown trigger")
	ErrTriggerBusy      = errors.New("trigger is already running")
	ErrDuplicateTrigger = errors.New("trigger already registered")
)

type State string

const (
	StateOff       State = "off"
	StateScheduled State = "scheduled"
	StateRunning   State = "running"
)

// Handler is one sweep. Returned errors are logged and recorded; they never
// unschedule the trigger.
type Handler func(ctx context.Context) error

// Trigger binds a handler to a standard five-field cron spec or a
// descriptor such as "@hourly" or "@every 10m".
type Trigger struct {
	Name     string
	Spec     string
	Location *time.Location
	Handler  Handler
}

// Run describes one handler execution.
type Run struct {
	ID        string        `json:"id"`
	Trigger   string        `json:"trigger"`
	Source    string        `json:"source"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Error     string        `json:"error,omitempty"`
}

// Status is a point-in-time view of a trigger.
type Status struct {
	Name     string     `json:"name"`
	Spec     string     `json:"spec"`
	Timezone string     `json:"timezone"`
	State    State      `json:"state"`
	NextRun  *time.Time `json:"next_run,omitempty"`
	LastRun  *Run       `json:"last_run,omitempty"`
	Runs     int64      `json:"runs"`
	Failures int64      `json:"failures"`
}

type entry struct {
	trigger  Trigger
	schedule cron.Schedule
	running  atomic.Bool

	mu        sync.Mutex
	scheduled bool
	next      time.Time
	last      *Run
	runs      int64
	failures  int64
}

// Registry owns the triggers of one process.
type Registry struct {
	log zerolog.Logger

	mu       sync.Mutex
	entries  map[string]*entry
	order    []string
	startCtx context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

func New(log zerolog.Logger) *Registry {
	return &Registry{
		log:     log.With().Str("component", "scheduler").Logger(),
		entries: make(map[string]*entry),
	}
}

// Register adds a trigger. Triggers registered after Start begin ticking
// immediately.
func (r *Registry) Register(t Trigger) error {
	if t.Name == "" || t.Handler == nil {
		return fmt.Errorf("register trigger: name and handler are required")
	}
	if t.Location == nil {
		t.Location = time.UTC
	}
	sched, err := cron.ParseStandard(t.Spec)
	if err != nil {
		return fmt.Errorf("register trigger %s: %w", t.Name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[t.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateTrigger, t.Name)
	}
	e := &entry{trigger: t, schedule: sched}
	r.entries[t.Name] = e
	r.order = append(r.order, t.Name)

	if r.cancel != nil {
		r.launch(e)
	}
	return nil
}

// Start schedules every registered trigger. It is a no-op when already
// started. The loops stop when ctx is cancelled or StopAll is called.
func (r *Registry) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		return
	}

	r.startCtx, r.cancel = context.WithCancel(ctx)
	for _, name := range r.order {
		r.launch(r.entries[name])
	}
	r.log.Info().Int("triggers", len(r.order)).Msg("scheduler started")
}

// StopAll cancels every trigger, waits for in-flight scheduled runs to
// return and resets all triggers to OFF.
func (r *Registry) StopAll() {
	r.mu.Lock()
	cancel := r.cancel
	r.cancel = nil
	r.startCtx = nil
	r.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	r.wg.Wait()
	r.log.Info().Msg("scheduler stopped")
}

// Fire runs a trigger's handler now, outside its schedule. The schedule
// itself is untouched.
func (r *Registry) Fire(ctx context.Context, name string) (*Run, error) {
	r.mu.Lock()
	e, ok := r.entries[name]
	r.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTrigger, name)
	}
	return r.execute(ctx, e, "manual")
}

// Status lists the triggers in registration order.
func (r *Registry) Status() []Status {
	r.mu.Lock()
	entries := make([]*entry, 0, len(r.order))
	for _, name := range r.order {
		entries = append(entries, r.entries[name])
	}
	r.mu.Unlock()

	out := make([]Status, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.status())
	}
	return out
}

// launch must be called with r.mu held and r.startCtx set.
func (r *Registry) launch(e *entry) {
	ctx := r.startCtx
	e.mu.Lock()
	e.scheduled = true
	e.mu.Unlock()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer e.unschedule()
		r.loop(ctx, e)
	}()
}

func (r *Registry) loop(ctx context.Context, e *entry) {
	for {
		next := e.schedule.Next(time.Now().In(e.trigger.Location))
		e.setNext(next)

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			if _, err := r.execute(ctx, e, "schedule"); errors.Is(err, ErrTriggerBusy) {
				r.log.Warn().Str("trigger", e.trigger.Name).Msg("previous run still in progress, skipping tick")
			}
		}
	}
}

// execute runs the handler once, guarding against re-entry and panics.
func (r *Registry) execute(ctx context.Context, e *entry, source string) (*Run, error) {
	name := e.trigger.Name
	if !e.running.CompareAndSwap(false, true) {
		metrics.SchedulerRunsTotal.WithLabelValues(name, "skipped").Inc()
		return nil, fmt.Errorf("%w: %s", ErrTriggerBusy, name)
	}
	defer e.running.Store(false)

	run := &Run{ID: uuid.NewString(), Trigger: name, Source: source, StartedAt: time.Now().UTC()}
	log := r.log.With().Str("trigger", name).Str("run_id", run.ID).Str("source", source).Logger()
	log.Info().Msg("trigger started")

	result := "ok"
	err := invoke(ctx, e.trigger.Handler)
	run.Duration = time.Since(run.StartedAt)

	var panicErr *panicError
	switch {
	case errors.As(err, &panicErr):
		result = "panic"
		run.Error = err.Error()
		log.Error().Str("stack", panicErr.stack).Err(err).Dur("duration", run.Duration).Msg("trigger panicked")
	case err != nil:
		result = "error"
		run.Error = err.Error()
		log.Error().Err(err).Dur("duration", run.Duration).Msg("trigger failed")
	default:
		log.Info().Dur("duration", run.Duration).Msg("trigger finished")
	}
	metrics.SchedulerRunsTotal.WithLabelValues(name, result).Inc()
	metrics.SchedulerRunDuration.WithLabelValues(name).Observe(run.Duration.Seconds())

	e.finish(run, err != nil)
	return run, nil
}

func (e *entry) setNext(t time.Time) {
	e.mu.Lock()
	e.next = t
	e.mu.Unlock()
}

func (e *entry) unschedule() {
	e.mu.Lock()
	e.scheduled = false
	e.next = time.Time{}
	e.mu.Unlock()
}

func (e *entry) finish(run *Run, failed bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.last = run
	e.runs++
	if failed {
		e.failures++
	}
}

func (e *entry) status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := Status{
		Name:     e.trigger.Name,
		Spec:     e.trigger.Spec,
		Timezone: e.trigger.Location.String(),
		State:    StateOff,
		Runs:     e.runs,
		Failures: e.failures,
	}
	switch {
	case e.running.Load():
		st.State = StateRunning
	case e.scheduled:
		st.State = StateScheduled
	}
	if e.scheduled && !e.next.IsZero() {
		next := e.next
		st.NextRun = &next
	}
	if e.last != nil {
		last := *e.last
		st.LastRun = &last
	}
	return st
}
