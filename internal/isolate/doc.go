// Package isolate shows a caller-supplied dialog on a freshly created,
// isolated desktop session so that other programs in the user's session can
// neither draw over it nor read its input.
//
// One invocation uses exactly two goroutines. The caller's goroutine runs the
// watchdog: it polls the worker with a timed join and checks that the isolated
// session still owns input while the dialog is up. The worker goroutine is
// locked to its OS thread, binds that thread to the isolated session, shows a
// dimmed snapshot of the screen as backdrop and then the dialog itself.
//
// Every failure on the isolated path is logged and compensated. When no result
// could be captured there, the dialog is shown on the normal session instead,
// so callers always get an outcome of the same shape.
//
// Usage:
//
//	opts := isolate.Options{
//		Clipboard: clipboard.NewGuard(clipboard.NewService(), nil),
//		PlaySound: true,
//	}
//	platform.New().Apply(&opts)
//
//	p, err := isolate.New(prompt.New, prompt.Secret, opts)
//	outcome, secret, err := p.ShowDialog(prompt.Options{Title: "Unlock"})
package isolate
