package isolate

import (
	"errors"
	"fmt"
	"image"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/adaryorg/securedesk/internal/logging"
	"github.com/adaryorg/securedesk/internal/screen"
)

var (
	ErrNilCallback  = errors.New("dialog construct and result callbacks are required")
	ErrNilSessions  = errors.New("session manager is required")
	ErrBindMismatch = errors.New("worker thread is not on the isolated session")
	ErrNilDialog    = errors.New("construct callback returned no dialog")
)

const (
	DefaultPollInterval = 150 * time.Millisecond
	DefaultTitle        = "securedesk"

	takeoverMessage = "Another program has switched away from the secure desktop.\n\n" +
		"Click OK to switch back to the secure desktop and continue."
)

// Outcome is how the user dismissed a dialog.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeOK
	OutcomeCancel
	OutcomeAbort
	OutcomeRetry
	OutcomeIgnore
	OutcomeYes
	OutcomeNo
)

var outcomeNames = map[Outcome]string{
	OutcomeNone:   "none",
	OutcomeOK:     "ok",
	OutcomeCancel: "cancel",
	OutcomeAbort:  "abort",
	OutcomeRetry:  "retry",
	OutcomeIgnore: "ignore",
	OutcomeYes:    "yes",
	OutcomeNo:     "no",
}

func (o Outcome) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// Handle identifies a desktop session. Zero is never a valid handle.
type Handle uintptr

// Sessions creates, switches and inspects desktop sessions.
type Sessions interface {
	Create(name string) (Handle, error)
	// BindThread moves the calling OS thread onto the session.
	BindThread(h Handle) error
	// ThreadSession returns the session the calling OS thread is bound to.
	ThreadSession() (Handle, error)
	// ActiveSession opens the session currently receiving input. The handle
	// must be given back with Release.
	ActiveSession() (Handle, error)
	Release(h Handle) error
	// Switch makes the session visible and gives it input.
	Switch(h Handle) error
	Destroy(h Handle) error
	// NameContains reports whether the session's name contains substr. An
	// error means the answer is unknown.
	NameContains(h Handle, substr string) (bool, error)
}

// imeDisabler is implemented by backends where input method helpers would
// otherwise be spawned per desktop and outlive it.
type imeDisabler interface {
	DisableIME() error
}

// messagePumper is implemented by backends with a per-thread message queue.
type messagePumper interface {
	PumpMessages()
}

// Surface is a window shown on the isolated session.
type Surface interface {
	Close() error
}

// Backdrops shows a full-screen image on the calling thread's session.
type Backdrops interface {
	Show(img image.Image) (Surface, error)
}

// Notifier reaches the user without going through the application's own UI loop.
type Notifier interface {
	Warn(title, text string)
	PlayCue() error
}

// ClipboardGuard wraps the prompt and reports whether it had to clear the clipboard.
type ClipboardGuard interface {
	Protect(fn func()) bool
}

type Observer interface {
	Observe(r Report)
}

// Dialog is a modal dialog supplied by the caller.
type Dialog interface {
	// ShowModal blocks until the dialog is dismissed. owner may be nil.
	ShowModal(owner Surface) Outcome
	Destroy()
}

type ConstructFunc[P any] func(param P) (Dialog, error)

type ResultFunc[R any] func(d Dialog) R

type Options struct {
	Sessions  Sessions
	Screen    screen.Capturer
	Backdrops Backdrops
	Notifier  Notifier
	Clipboard ClipboardGuard
	Observers []Observer
	Clock     clockwork.Clock

	// PollInterval is the watchdog's timed-join period.
	PollInterval time.Duration
	// SettleDelay lets queued window messages drain after each session change.
	SettleDelay time.Duration
	PlaySound   bool
	// Title is used for the takeover warning.
	Title string
}

// Protected presents dialogs built by construct on an isolated session and
// extracts their result with result.
type Protected[P, R any] struct {
	construct ConstructFunc[P]
	result    ResultFunc[R]
	opts      Options
	clock     clockwork.Clock
}

func New[P, R any](construct ConstructFunc[P], result ResultFunc[R], opts Options) (*Protected[P, R], error) {
	if construct == nil || result == nil {
		return nil, ErrNilCallback
	}
	if opts.Sessions == nil {
		return nil, ErrNilSessions
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.SettleDelay < 0 {
		opts.SettleDelay = 0
	}
	if opts.Title == "" {
		opts.Title = DefaultTitle
	}

	return &Protected[P, R]{
		construct: construct,
		result:    result,
		opts:      opts,
		clock:     opts.Clock,
	}, nil
}

// ShowDialog shows the dialog on an isolated session. If that path cannot
// produce a result, the dialog is shown on the normal session instead. The
// returned error is only non-nil when the fallback could not build the dialog.
func (p *Protected[P, R]) ShowDialog(param P) (Outcome, R, error) {
	report := Report{
		ID:      uuid.NewString(),
		Started: p.clock.Now(),
		Path:    PathIsolated,
	}

	p.settle()

	var inv *invocation[P, R]
	run := func() { inv = p.showIsolated(param, &report) }
	if p.opts.Clipboard != nil {
		report.ClipboardCleared = p.opts.Clipboard.Protect(run)
	} else {
		run()
	}

	if inv != nil {
		if err := inv.err(); err != nil && report.Failure == "" {
			report.Failure = err.Error()
		}
	}

	var (
		outcome Outcome
		payload R
		err     error
	)
	if captured, o, r := inv.snapshot(); captured {
		outcome, payload = o, r
	} else {
		logging.Warn("Secure desktop unavailable, showing dialog on the normal desktop")
		report.Path = PathFallback
		outcome, payload, err = p.showDirect(param)
		if err != nil && report.Failure == "" {
			report.Failure = err.Error()
		}
	}

	report.Outcome = outcome
	report.Finished = p.clock.Now()
	p.notify(report)

	return outcome, payload, err
}

// ShowDirect shows the dialog on the caller's normal session without isolation.
func (p *Protected[P, R]) ShowDirect(param P) (Outcome, R, error) {
	report := Report{
		ID:      uuid.NewString(),
		Started: p.clock.Now(),
		Path:    PathDirect,
	}

	outcome, payload, err := p.showDirect(param)
	if err != nil {
		report.Failure = err.Error()
	}

	report.Outcome = outcome
	report.Finished = p.clock.Now()
	p.notify(report)

	return outcome, payload, err
}

func (p *Protected[P, R]) showDirect(param P) (Outcome, R, error) {
	var zero R

	dialog, err := p.construct(param)
	if err != nil {
		return OutcomeNone, zero, fmt.Errorf("failed to construct dialog: %w", err)
	}
	if dialog == nil {
		return OutcomeNone, zero, ErrNilDialog
	}
	defer dialog.Destroy()

	outcome := dialog.ShowModal(nil)
	return outcome, p.result(dialog), nil
}

// showIsolated runs one isolated-session presentation. It returns nil when no
// worker was started.
func (p *Protected[P, R]) showIsolated(param P, report *Report) (inv *invocation[P, R]) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error("Secure desktop presentation failed: %v", r)
			report.fail(fmt.Errorf("panic: %v", r))
		}
	}()

	sessions := p.opts.Sessions

	var backdrop image.Image
	if img := screen.Snapshot(p.opts.Screen); img != nil {
		backdrop = img
	}

	// Session binding is per OS thread
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	original, err := sessions.ThreadSession()
	if err != nil {
		report.fail(fmt.Errorf("failed to query original session: %w", err))
		return nil
	}

	name, err := newSessionName()
	if err != nil {
		report.fail(fmt.Errorf("failed to generate session name: %w", err))
		return nil
	}

	isolated, err := sessions.Create(name)
	if err != nil {
		report.fail(fmt.Errorf("failed to create isolated session: %w", err))
		return nil
	}
	if isolated == 0 {
		report.fail(errors.New("failed to create isolated session: zero handle"))
		return nil
	}
	logging.Debug("Created isolated session %s", name)

	// nil until the worker is started
	var done chan struct{}
	defer func() {
		if err := sessions.Switch(original); err != nil {
			logging.Warn("Failed to switch back to the original session: %v", err)
		}
		if err := sessions.BindThread(original); err != nil {
			logging.Debug("Failed to rebind caller thread: %v", err)
		}

		// The session must outlive the worker thread bound to it
		if done != nil {
			<-done
		}

		if err := sessions.Destroy(isolated); err != nil {
			logging.Warn("Failed to destroy isolated session: %v", err)
		}
		logging.Debug("Destroyed isolated session %s", name)
	}()

	nameSupported, err := sessions.NameContains(isolated, name)
	if err != nil || !nameSupported {
		logging.Warn("Session names cannot be read, takeover detection disabled")
		nameSupported = false
	}

	target := watchTarget{
		original:      original,
		isolated:      isolated,
		name:          name,
		nameSupported: nameSupported,
	}

	inv = newInvocation[P, R](backdrop, isolated, param)
	done = make(chan struct{})

	go p.runWorker(inv, done)

	report.Takeovers = p.watch(inv, done, target)
	return inv
}

func (p *Protected[P, R]) settle() {
	pump, _ := p.opts.Sessions.(messagePumper)
	if pump != nil {
		pump.PumpMessages()
	}
	if p.opts.SettleDelay > 0 {
		p.clock.Sleep(p.opts.SettleDelay)
	}
	if pump != nil {
		pump.PumpMessages()
	}
}

func (p *Protected[P, R]) notify(r Report) {
	for _, o := range p.opts.Observers {
		if o != nil {
			o.Observe(r)
		}
	}
}
