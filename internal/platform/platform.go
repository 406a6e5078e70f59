/*
MIT License

Copyright (c) 2025 Yuval Adar <adary@adary.org>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.
*/

// Package platform picks the secure desktop collaborators for the running OS.
package platform

import (
	"errors"
	"fmt"
	"image"
	"io"
	"os"

	"github.com/adaryorg/securedesk/internal/isolate"
	"github.com/adaryorg/securedesk/internal/logging"
	"github.com/adaryorg/securedesk/internal/screen"
)

// ErrUnsupported is returned by every session operation on platforms without
// desktop objects.
var ErrUnsupported = errors.New("secure desktop not supported on this platform")

// Backend bundles the OS-specific pieces isolate.Options needs.
type Backend struct {
	Sessions  isolate.Sessions
	Screen    screen.Capturer
	Backdrops isolate.Backdrops
	Notifier  isolate.Notifier
}

// Apply copies the backend into opts, leaving fields the caller already set.
func (b Backend) Apply(opts *isolate.Options) {
	if opts.Sessions == nil {
		opts.Sessions = b.Sessions
	}
	if opts.Screen == nil {
		opts.Screen = b.Screen
	}
	if opts.Backdrops == nil {
		opts.Backdrops = b.Backdrops
	}
	if opts.Notifier == nil {
		opts.Notifier = b.Notifier
	}
}

// New returns the backend for the running OS.
func New() Backend {
	return newBackend()
}

// Unsupported returns a backend whose session creation always fails, so every
// protected dialog falls back to the normal session.
func Unsupported(out io.Writer) Backend {
	if out == nil {
		out = os.Stderr
	}
	return Backend{
		Sessions: UnsupportedSessions{},
		Screen:   UnsupportedScreen{},
		Notifier: &TerminalNotifier{Out: out},
	}
}

type UnsupportedSessions struct{}

func (UnsupportedSessions) Create(string) (isolate.Handle, error) {
	return 0, ErrUnsupported
}

func (UnsupportedSessions) BindThread(isolate.Handle) error {
	return ErrUnsupported
}

func (UnsupportedSessions) ThreadSession() (isolate.Handle, error) {
	return 0, ErrUnsupported
}

func (UnsupportedSessions) ActiveSession() (isolate.Handle, error) {
	return 0, ErrUnsupported
}

func (UnsupportedSessions) Release(isolate.Handle) error {
	return ErrUnsupported
}

func (UnsupportedSessions) Switch(isolate.Handle) error {
	return ErrUnsupported
}

func (UnsupportedSessions) Destroy(isolate.Handle) error {
	return ErrUnsupported
}

func (UnsupportedSessions) NameContains(isolate.Handle, string) (bool, error) {
	return false, ErrUnsupported
}

type UnsupportedScreen struct{}

func (UnsupportedScreen) Capture() (*image.RGBA, error) {
	return nil, screen.ErrUnsupported
}

// TerminalNotifier reports warnings on a terminal instead of a message box.
type TerminalNotifier struct {
	Out io.Writer
}

func (n *TerminalNotifier) Warn(title, text string) {
	logging.Warn("%s: %s", title, text)
	fmt.Fprintf(n.Out, "%s: %s\n", title, text)
}

// PlayCue rings the terminal bell.
func (n *TerminalNotifier) PlayCue() error {
	_, err := io.WriteString(n.Out, "\a")
	return err
}
