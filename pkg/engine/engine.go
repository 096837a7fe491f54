package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/stefanpenner/tempo/pkg/routine"
)

// DefaultInterval is the recommended polling interval.
const DefaultInterval = 10 * time.Second

// ErrInvalidInterval is returned for polling intervals that could skip an
// exact-minute match.
var ErrInvalidInterval = errors.New("tick interval must split one minute into two or more equal ticks")

// ValidateInterval accepts intervals that split a minute into at least two
// equal ticks. A full-minute interval is rejected: scheduling jitter would
// eventually step over a wall-clock minute.
func ValidateInterval(d time.Duration) error {
	if d <= 0 || d >= time.Minute || time.Minute%d != 0 {
		return fmt.Errorf("%w: %s", ErrInvalidInterval, d)
	}
	return nil
}

// Source supplies the active routine and settings and accepts schedule
// replacements. ActiveRoutine returns nil when no schedule is selected.
type Source interface {
	ActiveRoutine() (*routine.Routine, error)
	EngineSettings() (Settings, error)
	SaveRoutine(r routine.Routine) error
}

// Sink renders events: toast, system notification, sound.
type Sink interface {
	Notify(ctx context.Context, ev Event) error
}

// History persists fired events so a restart does not fire them again.
type History interface {
	Record(ctx context.Context, ev Event) error
	FiredKeys(ctx context.Context, day string) ([]string, error)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, ev Event) error

// Notify implements Sink.
func (f SinkFunc) Notify(ctx context.Context, ev Event) error { return f(ctx, ev) }

// Engine owns the evaluator state and drives it from a clock. All methods
// are safe for concurrent use; user actions take effect before the next tick.
type Engine struct {
	mu      sync.Mutex
	state   State
	day     string
	source  Source
	sink    Sink
	history History
	now     func() time.Time
	logger  *zap.Logger
	metrics *Metrics
	lapse   bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithHistory attaches a fired-event history.
func WithHistory(h History) Option {
	return func(e *Engine) { e.history = h }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithMetrics attaches metrics.
func WithMetrics(m *Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithLockLapse releases a lock once its block is over. Hosts without a
// user at the keyboard need this; interactive hosts wait for an unlock action.
func WithLockLapse() Option {
	return func(e *Engine) { e.lapse = true }
}

// New creates an Engine.
func New(source Source, sink Sink, opts ...Option) *Engine {
	e := &Engine{
		state:  State{Ledger: NewLedger()},
		source: source,
		sink:   sink,
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Now returns the engine clock's current time.
func (e *Engine) Now() time.Time {
	return e.now()
}

// State returns a snapshot of the evaluator state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// SetMuted toggles audible playback. Toasts are still emitted.
func (e *Engine) SetMuted(muted bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.Muted = muted
}

// Tick runs one evaluation and dispatches the resulting events.
func (e *Engine) Tick(ctx context.Context) ([]Event, error) {
	e.mu.Lock()
	now := e.now()
	e.rollDay(ctx, now)

	r, err := e.source.ActiveRoutine()
	if err != nil {
		e.logger.Warn("no active schedule", zap.Error(err))
		r = nil
	}
	settings, err := e.source.EngineSettings()
	if err != nil {
		e.logger.Warn("loading settings", zap.Error(err))
		settings = Settings{}
	}

	wasLocked := e.state.Lock.Active
	if e.lapse {
		if state, lapsed := Lapse(e.state, r, now); lapsed {
			e.logger.Info("lock lapsed", zap.String("block", e.state.Lock.BlockID))
			e.metrics.unlock(lockLapsed)
			e.state = state
		}
	}
	state, events := Evaluate(e.state, Input{Routine: r, Now: now, Settings: settings})
	e.state = state
	e.metrics.tick()
	if wasLocked != state.Lock.Active {
		e.metrics.setLocked(state.Lock.Active)
	}
	e.mu.Unlock()

	for _, ev := range events {
		e.metrics.event(ev)
		e.logger.Info("event fired",
			zap.String("kind", string(ev.Kind)),
			zap.String("key", ev.Key),
			zap.String("activity", ev.Activity))
		if e.history != nil {
			if err := e.history.Record(ctx, ev); err != nil {
				e.logger.Warn("recording event", zap.String("key", ev.Key), zap.Error(err))
			}
		}
		if e.sink != nil {
			if err := e.sink.Notify(ctx, ev); err != nil {
				e.logger.Warn("notifying", zap.String("key", ev.Key), zap.Error(err))
			}
		}
	}
	return events, ctx.Err()
}

// rollDay prunes the ledger when the calendar day changes and reloads
// today's keys from history. A lock still held from yesterday is released,
// since it would otherwise block every lock of the new day.
// Must be called with e.mu held.
func (e *Engine) rollDay(ctx context.Context, now time.Time) {
	day := DayKey(now)
	if day == e.day {
		return
	}
	if e.day != "" && e.state.Lock.Active {
		e.logger.Info("stale lock released", zap.String("block", e.state.Lock.BlockID), zap.String("day", e.day))
		e.state.Lock = LockSession{}
		e.metrics.unlock(lockLapsed)
		e.metrics.setLocked(false)
	}
	e.day = day
	e.state.Ledger = e.state.Ledger.Prune(day)
	if e.history == nil {
		return
	}
	keys, err := e.history.FiredKeys(ctx, day)
	if err != nil {
		e.logger.Warn("loading fired events", zap.String("day", day), zap.Error(err))
		return
	}
	for _, k := range keys {
		e.state.Ledger = e.state.Ledger.With(k)
	}
	e.logger.Debug("ledger rehydrated", zap.String("day", day), zap.Int("keys", len(keys)))
}

// Run ticks immediately and then every interval until ctx is cancelled.
func (e *Engine) Run(ctx context.Context, interval time.Duration) error {
	if err := ValidateInterval(interval); err != nil {
		return err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := e.Tick(ctx); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Unlock applies a user unlock action. Late-unlock persists the shifted
// schedule before returning.
func (e *Engine) Unlock(ctx context.Context, action UnlockAction) (LockSession, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	released := e.state.Lock
	r, err := e.source.ActiveRoutine()
	if err != nil {
		return released, fmt.Errorf("loading active routine: %w", err)
	}
	var current routine.Routine
	if r != nil {
		current = *r
	}

	state, shifted, err := Unlock(e.state, current, action)
	if err != nil {
		return released, err
	}
	if action == UnlockLate && r != nil {
		if err := e.source.SaveRoutine(shifted); err != nil {
			return released, fmt.Errorf("saving shifted routine: %w", err)
		}
	}
	e.state = state
	e.metrics.unlock(action)
	e.metrics.setLocked(false)
	e.logger.Info("unlocked",
		zap.String("action", string(action)),
		zap.String("block", released.BlockID))
	return released, ctx.Err()
}

// Shift moves the whole active schedule by delta minutes.
func (e *Engine) Shift(ctx context.Context, delta int) (routine.Routine, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	r, err := e.source.ActiveRoutine()
	if err != nil {
		return routine.Routine{}, fmt.Errorf("loading active routine: %w", err)
	}
	if r == nil {
		return routine.Routine{}, fmt.Errorf("shifting schedule: %w", ErrNoSchedule)
	}
	shifted := routine.Shift(*r, delta)
	if err := e.source.SaveRoutine(shifted); err != nil {
		return routine.Routine{}, fmt.Errorf("saving shifted routine: %w", err)
	}
	e.logger.Info("schedule shifted", zap.String("routine", r.ID), zap.Int("minutes", delta))
	return shifted, ctx.Err()
}

// ErrNoSchedule is returned by actions that need an active routine.
var ErrNoSchedule = errors.New("no active schedule")
