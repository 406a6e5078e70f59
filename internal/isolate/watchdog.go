package isolate

import (
	"github.com/adaryorg/securedesk/internal/logging"
)

type watchTarget struct {
	original      Handle
	isolated      Handle
	name          string
	nameSupported bool
}

// watch runs on the caller's goroutine until the worker reports Terminated.
// It returns how many takeovers it recovered from.
func (p *Protected[P, R]) watch(inv *invocation[P, R], done <-chan struct{}, target watchTarget) int {
	takeovers := 0

	for {
		// timed join
		select {
		case <-done:
		case <-p.clock.After(p.opts.PollInterval):
		}

		state := inv.State()
		if state == Terminated {
			return takeovers
		}
		if state != ShowingDialog || !target.nameSupported {
			continue
		}

		if p.takenOver(inv, target) {
			takeovers++
			p.recoverTakeover(inv, target)
		}
	}
}

// takenOver reports whether a foreign session owns input while the dialog is
// showing. Indeterminate answers count as no.
func (p *Protected[P, R]) takenOver(inv *invocation[P, R], target watchTarget) bool {
	sessions := p.opts.Sessions

	active, err := sessions.ActiveSession()
	if err != nil {
		logging.Debug("Cannot open input session: %v", err)
		return false
	}
	defer func() {
		if err := sessions.Release(active); err != nil {
			logging.Debug("Failed to release input session handle: %v", err)
		}
	}()
	if active == target.isolated {
		return false
	}

	onIsolated, err := sessions.NameContains(active, target.name)
	if err != nil {
		return false
	}

	// the worker may have finished while we were looking
	return !onIsolated && inv.State() == ShowingDialog
}

// recoverTakeover shows the user where they are and takes them back to the
// isolated session. The warning is trusted to reach the user: the takeover
// actor could in principle interfere with it too.
func (p *Protected[P, R]) recoverTakeover(inv *invocation[P, R], target watchTarget) {
	sessions := p.opts.Sessions
	logging.Warn("Another desktop took input from the secure desktop")

	if err := sessions.Switch(target.original); err != nil {
		logging.Warn("Failed to switch to the original session: %v", err)
	}
	if err := sessions.BindThread(target.original); err != nil {
		logging.Debug("Failed to rebind caller thread: %v", err)
	}
	p.settle()

	if p.opts.Notifier != nil {
		p.opts.Notifier.Warn(p.opts.Title, takeoverMessage)
	}

	if inv.State() != Terminated {
		if err := sessions.Switch(target.isolated); err != nil {
			logging.Warn("Failed to switch back to the secure desktop: %v", err)
		}
		p.settle()
	}
}
