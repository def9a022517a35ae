package input

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dshills/keychord/internal/input/action"
	"github.com/dshills/keychord/internal/input/clock"
	"github.com/dshills/keychord/internal/input/key"
	"github.com/dshills/keychord/internal/input/keymap"
	"github.com/dshills/keychord/internal/input/platform"
)

// KeyTimeout is how long a chord prefix waits for its second key.
const KeyTimeout = 1000 * time.Millisecond

// ErrClosed is returned by HandleKey after Close.
var ErrClosed = errors.New("dispatcher closed")

// State is the chord state of a Dispatcher.
type State uint8

const (
	// StateIdle means no prefix is pending.
	StateIdle State = iota
	// StateAwaitingChord means a prefix key was pressed and the
	// dispatcher waits for the second key until the deadline.
	StateAwaitingChord
)

func (s State) String() string {
	if s == StateAwaitingChord {
		return "awaiting-chord"
	}
	return "idle"
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithClock sets the scheduler used for chord timeouts.
func WithClock(c clock.Clock) Option {
	return func(d *Dispatcher) { d.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(d *Dispatcher) { d.logger = l }
}

// WithUIContext sets the flavor context used for applicability.
func WithUIContext(c action.Context) Option {
	return func(d *Dispatcher) { d.uictx = c }
}

// WithModalCheck sets the predicate reporting an open modal dialog.
// Nothing is dispatched while it returns true.
func WithModalCheck(f func() bool) Option {
	return func(d *Dispatcher) { d.modal = f }
}

// WithListener registers a callback invoked with the id of every action
// that handles a shortcut.
func WithListener(f func(actionID string)) Option {
	return func(d *Dispatcher) { d.listeners = append(d.listeners, f) }
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *Metrics) Option {
	return func(d *Dispatcher) { d.metrics = m }
}

// WithBaseContext sets the context that chord timeouts and queued keys
// run under. Close cancels it.
func WithBaseContext(ctx context.Context) Option {
	return func(d *Dispatcher) { d.ctx = ctx }
}

// queuedInput is a key press or chord timeout waiting for the dispatch
// in flight to finish.
type queuedInput struct {
	ctx     context.Context
	code    key.Code
	rawKey  string
	timeout bool
	gen     uint64
}

// Dispatcher resolves key presses to actions. It is a two-state machine:
// idle, or awaiting the second key of a chord after a prefix key.
//
// At most one dispatch runs at a time. A key pressed while another
// dispatch is in flight, including one sent by an action it runs, is
// queued and resolved in arrival order by the dispatch in flight just
// before that dispatch returns.
type Dispatcher struct {
	// mu guards the fields below. It is never held while actions run.
	mu         sync.Mutex
	index      *keymap.Index
	pending    bool
	prefix     key.Code
	deadline   time.Time
	timer      clock.Timer
	generation uint64
	busy       bool
	queue      []queuedInput
	closed     bool

	ctx       context.Context
	cancel    context.CancelFunc
	registry  action.Registry
	host      platform.Platform
	clock     clock.Clock
	logger    zerolog.Logger
	uictx     action.Context
	modal     func() bool
	listeners []func(string)
	metrics   *Metrics
}

// NewDispatcher creates a dispatcher over an index and an action
// registry for the given host.
func NewDispatcher(index *keymap.Index, registry action.Registry, host platform.Platform, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		index:    index,
		registry: registry,
		host:     host,
		ctx:      context.Background(),
		clock:    clock.Real(),
		logger:   zerolog.Nop(),
		uictx:    action.EmptyContext,
		metrics:  NewMetrics(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.ctx, d.cancel = context.WithCancel(d.ctx)
	if d.index == nil {
		d.index, _ = keymap.Build(nil)
	}
	return d
}

// HandleEvent dispatches a key event.
func (d *Dispatcher) HandleEvent(ctx context.Context, ev key.Event) (bool, error) {
	return d.HandleKey(ctx, ev.Code, ev.Key)
}

// HandleKey dispatches one key press. It returns true when the key was
// consumed: a chord prefix was armed, or an action reported it handled
// the shortcut. Errors from actions are returned unchanged apart from
// wrapping with the action id; the chord state is already updated when
// an action runs.
//
// If another dispatch is in flight the key is queued and HandleKey
// returns false at once. A queued key keeps ctx's values but not its
// deadline; its action errors are logged.
func (d *Dispatcher) HandleKey(ctx context.Context, code key.Code, rawKey string) (bool, error) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return false, ErrClosed
	}
	if d.busy {
		d.queue = append(d.queue, queuedInput{ctx: context.WithoutCancel(ctx), code: code, rawKey: rawKey})
		d.mu.Unlock()
		d.metrics.queued.Add(1)
		d.logger.Debug().Stringer("key", code).Msg("dispatch in flight, key queued")
		return false, nil
	}
	d.busy = true
	d.mu.Unlock()

	defer d.drain()
	return d.dispatch(ctx, code, rawKey)
}

// drain resolves queued input until the queue is empty, then marks the
// dispatcher idle. The caller must own the in-flight dispatch.
func (d *Dispatcher) drain() {
	for {
		d.mu.Lock()
		if d.closed || len(d.queue) == 0 {
			d.queue = nil
			d.busy = false
			d.mu.Unlock()
			return
		}
		in := d.queue[0]
		d.queue = d.queue[1:]
		d.mu.Unlock()

		if in.timeout {
			d.expire(in.gen)
			continue
		}
		ctx, cancel := d.detach(in.ctx)
		if _, err := d.dispatch(ctx, in.code, in.rawKey); err != nil {
			d.logger.Error().Err(err).Stringer("key", in.code).Msg("queued key failed")
		}
		cancel()
	}
}

// detach returns a context carrying ctx's values that is cancelled with
// the dispatcher.
func (d *Dispatcher) detach(ctx context.Context) (context.Context, context.CancelFunc) {
	c, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(d.ctx, cancel)
	return c, func() {
		stop()
		cancel()
	}
}

func (d *Dispatcher) dispatch(ctx context.Context, code key.Code, rawKey string) (bool, error) {
	start := time.Now()
	defer func() { d.metrics.recordDispatch(time.Since(start)) }()

	d.mu.Lock()
	idx := d.index
	d.mu.Unlock()

	log := d.logger.With().
		Str("dispatch", uuid.NewString()).
		Stringer("key", code).
		Logger()

	if isPossiblyInput(code, rawKey, d.host) {
		d.metrics.suppressed.Add(1)
		log.Debug().Str("raw", rawKey).Msg("suppressed while editing")
		return false, nil
	}
	if (d.modal != nil && d.modal()) || code.IsModifierOnly() {
		return false, nil
	}

	if prefix, ok := d.takePending(); ok {
		handled, err := d.resolve(ctx, log, idx.ChordActions(prefix, code))
		if err != nil {
			return false, err
		}
		if handled {
			d.metrics.chordsCompleted.Add(1)
			log.Debug().Stringer("prefix", prefix).Msg("chord completed")
			return true, nil
		}

		d.metrics.chordsAborted.Add(1)
		log.Debug().Stringer("prefix", prefix).Msg("chord aborted, replaying prefix")
		if _, err := d.resolve(ctx, log, idx.StandaloneActions(prefix)); err != nil {
			return false, err
		}
	}

	if idx.IsPrefixKey(code) {
		d.arm(code)
		d.metrics.chordsStarted.Add(1)
		log.Debug().Msg("chord started")
		return true, nil
	}

	handled, err := d.resolve(ctx, log, idx.StandaloneActions(code))
	if err == nil && !handled {
		d.metrics.unhandled.Add(1)
	}
	return handled, err
}

// takePending cancels a pending chord and returns its prefix.
func (d *Dispatcher) takePending() (key.Code, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.pending {
		return 0, false
	}
	prefix := d.prefix
	d.cancelLocked()
	return prefix, true
}

func (d *Dispatcher) cancelLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = false
	d.deadline = time.Time{}
	d.generation++
}

func (d *Dispatcher) arm(prefix key.Code) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.cancelLocked()
	gen := d.generation
	d.pending = true
	d.prefix = prefix
	d.deadline = d.clock.Now().Add(KeyTimeout)
	d.timer = d.clock.AfterFunc(KeyTimeout, func() { d.timeout(gen) })
}

// timeout runs when a prefix timer fires. It is queued behind a dispatch
// in flight; a timer from an earlier generation is ignored.
func (d *Dispatcher) timeout(gen uint64) {
	d.mu.Lock()
	if d.closed || !d.pending || d.generation != gen {
		d.mu.Unlock()
		return
	}
	if d.busy {
		d.queue = append(d.queue, queuedInput{timeout: true, gen: gen})
		d.mu.Unlock()
		return
	}
	d.busy = true
	d.mu.Unlock()

	defer d.drain()
	d.expire(gen)
}

// expire resolves an expired prefix as a standalone shortcut, unless a
// key arrived since the timer fired.
func (d *Dispatcher) expire(gen uint64) {
	d.mu.Lock()
	if d.closed || !d.pending || d.generation != gen {
		d.mu.Unlock()
		return
	}
	prefix := d.prefix
	idx := d.index
	d.timer = nil
	d.cancelLocked()
	d.mu.Unlock()

	d.metrics.chordTimeouts.Add(1)
	log := d.logger.With().
		Str("dispatch", uuid.NewString()).
		Stringer("key", prefix).
		Logger()
	log.Debug().Msg("chord timed out")

	if _, err := d.resolve(d.ctx, log, idx.StandaloneActions(prefix)); err != nil {
		log.Error().Err(err).Msg("timed out prefix failed")
	}
}

// resolve executes the applicable actions among ids in order until one
// reports it handled the shortcut.
func (d *Dispatcher) resolve(ctx context.Context, log zerolog.Logger, ids []string) (bool, error) {
	if len(ids) == 0 {
		return false, nil
	}

	actions, err := d.registry.ApplicableActions(ctx, ids, d.uictx)
	if err != nil {
		return false, fmt.Errorf("applicable actions: %w", err)
	}

	execCtx := action.WithUIContext(ctx, d.uictx)
	for _, a := range actions {
		handled, err := a.Execute(execCtx)
		if err != nil {
			d.metrics.actionErrors.Add(1)
			log.Error().Err(err).Str("action", a.ID()).Msg("action failed")
			return false, fmt.Errorf("action %q: %w", a.ID(), err)
		}
		if !handled {
			continue
		}

		d.metrics.actionsFired.Add(1)
		log.Info().Str("action", a.ID()).Msg("shortcut fired")
		for _, l := range d.listeners {
			l(a.ID())
		}
		return true, nil
	}
	return false, nil
}

// State returns the current chord state.
func (d *Dispatcher) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pending {
		return StateAwaitingChord
	}
	return StateIdle
}

// PendingPrefix returns the armed prefix key, if any.
func (d *Dispatcher) PendingPrefix() (key.Code, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.prefix, d.pending
}

// Deadline returns when the pending prefix times out.
func (d *Dispatcher) Deadline() (time.Time, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.deadline, d.pending
}

// Index returns the current shortcut index.
func (d *Dispatcher) Index() *keymap.Index {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.index
}

// SetIndex replaces the shortcut index and cancels any pending chord.
// A dispatch already in progress finishes with the old index.
func (d *Dispatcher) SetIndex(idx *keymap.Index) {
	if idx == nil {
		idx, _ = keymap.Build(nil)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.index = idx
	if d.pending {
		d.cancelLocked()
	}
}

// Metrics returns the metrics collector.
func (d *Dispatcher) Metrics() *Metrics {
	return d.metrics
}

// GlobalShortcutKeys returns the keys bound to at least one action that
// applies without any active flavor.
func (d *Dispatcher) GlobalShortcutKeys(ctx context.Context) ([]key.Code, error) {
	idx := d.Index()

	var keys []key.Code
	for _, code := range idx.Keys() {
		actions, err := d.registry.ApplicableActions(ctx, idx.ActionsForKey(code), action.EmptyContext)
		if err != nil {
			return nil, err
		}
		if len(actions) > 0 {
			keys = append(keys, code)
		}
	}
	return keys, nil
}

// Close cancels any pending chord, drops queued keys and cancels the
// base context of timed-out and queued dispatches. Later HandleKey calls
// return ErrClosed. Close is idempotent.
func (d *Dispatcher) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}
	d.closed = true
	d.queue = nil
	d.cancelLocked()
	d.cancel()
	return nil
}
