package paste

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dictaflow/dictaflow/pkg/events"
)

// Fixed timing of the delivery protocol.
const (
	// TrustRetryInterval spaces consecutive trust checks.
	TrustRetryInterval = 250 * time.Millisecond
	// TrustAttemptBudget caps trust checks before the delivery aborts.
	TrustAttemptBudget = 20
	// PasteDelay lets input focus settle before the keystroke.
	PasteDelay = 50 * time.Millisecond
	// RestoreDelay gives the target application time to consume the
	// transient clipboard entry before it is overwritten back.
	RestoreDelay = 900 * time.Millisecond
)

const textType = "public.utf8-plain-text"

// State names one phase of the delivery protocol.
type State int

const (
	StateIdle State = iota
	StateCapturing
	StateAwaitingTrust
	StatePasting
	StateRestoring
	StateDone
)

var (
	// ErrDeliveryInFlight is returned when a paste is requested while
	// another is still running. Snapshots must never interleave.
	ErrDeliveryInFlight = errors.New("paste delivery already in flight")

	// ErrPermissionNotGranted is returned when the trust budget is
	// exhausted without a grant. Retryable from the caller's side.
	ErrPermissionNotGranted = errors.New("accessibility permission not granted")

	// ErrDeliveryCanceled is returned when Cancel interrupts the trust
	// wait.
	ErrDeliveryCanceled = errors.New("paste delivery canceled")
)

// Options holds per-deliverer behavior switches.
type Options struct {
	// PreserveClipboard opts out of clipboard protection entirely: no
	// snapshot is taken, the delivery text stays on the clipboard, and
	// transient marking is skipped.
	PreserveClipboard bool
}

// Deliverer runs the clipboard-safe paste protocol: capture the
// clipboard, write the delivery text, wait for the OS trust grant,
// post the paste keystroke, and restore the original clipboard. At
// most one delivery is in flight at a time.
type Deliverer struct {
	clip   Clipboard
	trust  TrustOracle
	keys   KeyInjector
	notify Notifier
	sched  Scheduler
	pub    *events.Publisher
	opts   Options

	mu       sync.Mutex
	inFlight bool
	state    State
	canceled atomic.Bool
}

// NewDeliverer creates a paste deliverer. Publisher and notifier may be
// nil.
func NewDeliverer(clip Clipboard, trust TrustOracle, keys KeyInjector, notify Notifier, sched Scheduler, pub *events.Publisher, opts Options) *Deliverer {
	if sched == nil {
		sched = SystemScheduler
	}
	return &Deliverer{
		clip:   clip,
		trust:  trust,
		keys:   keys,
		notify: notify,
		sched:  sched,
		pub:    pub,
		opts:   opts,
		state:  StateIdle,
	}
}

// State reports the current protocol phase.
func (d *Deliverer) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Cancel interrupts a delivery waiting on the trust grant. The delivery
// aborts at its next scheduled step and restores any snapshot. A
// delivery already past the trust gate runs to completion.
func (d *Deliverer) Cancel() {
	d.canceled.Store(true)
}

// PasteAtCursor delivers text into the focused application. It returns
// once the protocol reaches a terminal state; all waiting in between
// happens on scheduled continuations, not busy sleeps.
func (d *Deliverer) PasteAtCursor(ctx context.Context, text string) error {
	d.mu.Lock()
	if d.inFlight {
		d.mu.Unlock()
		return ErrDeliveryInFlight
	}
	d.inFlight = true
	d.state = StateCapturing
	d.mu.Unlock()
	d.canceled.Store(false)

	defer func() {
		d.mu.Lock()
		d.inFlight = false
		d.state = StateIdle
		d.mu.Unlock()
	}()

	// Snapshot is all-or-nothing: either every pair is captured here
	// and later fully restored, or (preserve mode) none is touched.
	var snapshot []Item
	if !d.opts.PreserveClipboard {
		snap, err := d.clip.ReadAll()
		if err != nil {
			return fmt.Errorf("capture clipboard: %w", err)
		}
		snapshot = snap
	}

	if err := d.clip.Write([]byte(text), textType, !d.opts.PreserveClipboard); err != nil {
		d.restore(ctx, snapshot)
		return fmt.Errorf("write clipboard: %w", err)
	}

	d.setState(StateAwaitingTrust)

	attempts := 0
	for attempts < TrustAttemptBudget {
		attempts++
		if d.trust.IsTrusted(attempts == 1) {
			return d.deliver(ctx, snapshot, attempts, len(text))
		}
		if attempts == 1 && d.notify != nil {
			d.notify.PermissionWait()
		}

		if err := d.waitInterval(ctx, TrustRetryInterval); err != nil {
			d.setState(StateRestoring)
			d.restore(ctx, snapshot)
			d.emitAborted(ctx, "canceled", attempts, snapshot != nil)
			return err
		}
	}

	// Budget exhausted while untrusted: no keystroke is ever posted and
	// the user's clipboard must not stay overwritten.
	d.setState(StateRestoring)
	d.restore(ctx, snapshot)
	d.emitAborted(ctx, "permission not granted", attempts, snapshot != nil)
	return fmt.Errorf("%w after %d attempts", ErrPermissionNotGranted, attempts)
}

// deliver runs the trusted tail of the protocol: keystroke after a
// short focus-settling delay, then clipboard restoration.
func (d *Deliverer) deliver(ctx context.Context, snapshot []Item, attempts, chars int) error {
	d.setState(StatePasting)

	pasted := make(chan struct{})
	d.sched.AfterFunc(PasteDelay, func() {
		d.keys.PostPaste()
		close(pasted)
	})
	<-pasted

	if snapshot != nil {
		d.setState(StateRestoring)
		restored := make(chan struct{})
		d.sched.AfterFunc(RestoreDelay, func() {
			d.restore(ctx, snapshot)
			close(restored)
		})
		<-restored
	}

	d.setState(StateDone)
	if d.pub != nil {
		if err := d.pub.Emit(ctx, events.PasteDelivered, "", events.PasteDeliveredData{
			Chars:     chars,
			Preserved: d.opts.PreserveClipboard,
			Attempts:  attempts,
		}); err != nil {
			slog.WarnContext(ctx, "emit paste.delivered failed", slog.String("error", err.Error()))
		}
	}
	return nil
}

// PressEnter posts a bare return-key event. It is a stateless primitive
// distinct from the paste protocol: no retry, no clipboard interaction,
// and it only proceeds if trust is already granted.
func (d *Deliverer) PressEnter(_ context.Context) error {
	if !d.trust.IsTrusted(false) {
		return ErrPermissionNotGranted
	}
	d.keys.PostReturn()
	return nil
}

// waitInterval parks on a scheduled continuation. Returns early when
// the context or Cancel interrupts the wait.
func (d *Deliverer) waitInterval(ctx context.Context, dur time.Duration) error {
	fired := make(chan struct{})
	d.sched.AfterFunc(dur, func() { close(fired) })

	select {
	case <-fired:
		if d.canceled.Load() {
			return ErrDeliveryCanceled
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// restore rewrites every captured pair. A nil snapshot (preserve mode)
// is a no-op.
func (d *Deliverer) restore(ctx context.Context, snapshot []Item) {
	if snapshot == nil {
		return
	}
	if err := d.clip.Clear(); err != nil {
		slog.ErrorContext(ctx, "clear clipboard for restore failed", slog.String("error", err.Error()))
		return
	}
	for _, item := range snapshot {
		if err := d.clip.Write(item.Payload, item.Type, false); err != nil {
			slog.ErrorContext(ctx, "restore clipboard item failed",
				slog.String("type", item.Type),
				slog.String("error", err.Error()))
		}
	}
}

func (d *Deliverer) setState(s State) {
	d.mu.Lock()
	d.state = s
	d.mu.Unlock()
}

func (d *Deliverer) emitAborted(ctx context.Context, reason string, attempts int, restored bool) {
	if d.pub == nil {
		return
	}
	if err := d.pub.Emit(ctx, events.PasteAborted, "", events.PasteAbortedData{
		Reason:   reason,
		Attempts: attempts,
		Restored: restored,
	}); err != nil {
		slog.WarnContext(ctx, "emit paste.aborted failed", slog.String("error", err.Error()))
	}
}
