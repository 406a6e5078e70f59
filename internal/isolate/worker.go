package isolate

import (
	"fmt"
	"runtime"

	"github.com/adaryorg/securedesk/internal/logging"
)

// runWorker performs everything that has to happen on the isolated session.
// Whatever happens, it ends with the invocation Terminated and done closed.
func (p *Protected[P, R]) runWorker(inv *invocation[P, R], done chan<- struct{}) {
	// Never unlocked: the thread is bound to a session that is about to be
	// destroyed, so the runtime discards it when this goroutine exits.
	runtime.LockOSThread()

	defer close(done)
	defer inv.advance(Terminated)

	var background Surface
	defer func() {
		if background == nil {
			return
		}
		defer func() {
			if r := recover(); r != nil {
				logging.Error("Closing secure desktop backdrop panicked: %v", r)
			}
		}()
		if err := background.Close(); err != nil {
			logging.Warn("Failed to close secure desktop backdrop: %v", err)
		}
	}()

	defer func() {
		if r := recover(); r != nil {
			logging.Error("Secure desktop worker panicked: %v", r)
			inv.fail(fmt.Errorf("worker panic: %v", r))
		}
	}()

	sessions := p.opts.Sessions

	if err := sessions.BindThread(inv.session); err != nil {
		inv.fail(fmt.Errorf("failed to bind worker thread: %w", err))
		return
	}
	p.settle()

	current, err := sessions.ThreadSession()
	if err != nil || current != inv.session {
		inv.fail(ErrBindMismatch)
		return
	}

	if d, ok := sessions.(imeDisabler); ok {
		if err := d.DisableIME(); err != nil {
			logging.Debug("Could not disable IME on worker thread: %v", err)
		}
	}
	p.settle()

	if p.opts.Backdrops != nil && inv.backdrop != nil {
		surface, err := p.opts.Backdrops.Show(inv.backdrop)
		if err != nil {
			logging.Warn("Failed to show secure desktop backdrop: %v", err)
		} else {
			background = surface
		}
	}
	p.settle()

	if err := sessions.Switch(inv.session); err != nil {
		logging.Warn("Failed to switch to the secure desktop: %v", err)
	}
	p.settle()

	dialog, err := p.construct(inv.param)
	if err != nil {
		inv.fail(fmt.Errorf("failed to construct dialog: %w", err))
		return
	}
	if dialog == nil {
		inv.fail(ErrNilDialog)
		return
	}
	defer dialog.Destroy()

	if p.opts.PlaySound && p.opts.Notifier != nil {
		if err := p.opts.Notifier.PlayCue(); err != nil {
			logging.Debug("Secure desktop sound not played: %v", err)
		}
	}

	inv.advance(ShowingDialog)
	outcome := dialog.ShowModal(background)
	inv.capture(outcome, p.result(dialog))
}
