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

// Package prompt is a terminal password dialog that can be shown through
// isolate.Protected.
package prompt

import (
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/adaryorg/securedesk/internal/config"
	"github.com/adaryorg/securedesk/internal/isolate"
	"github.com/adaryorg/securedesk/internal/logging"
)

type Options struct {
	Title  string
	Prompt string
	Theme  config.ThemeConfig
	// Input defaults to the controlling terminal so the secret can be read
	// even when stdin is redirected.
	Input io.Reader
	// Output defaults to stderr; stdout is left for the caller.
	Output io.Writer
}

// PasswordDialog asks for a secret without echoing it.
type PasswordDialog struct {
	opts    Options
	secret  []byte
	outcome isolate.Outcome
}

// New builds a PasswordDialog. It matches isolate.ConstructFunc.
func New(opts Options) (isolate.Dialog, error) {
	if opts.Output == nil {
		opts.Output = os.Stderr
	}
	return &PasswordDialog{opts: opts}, nil
}

func (d *PasswordDialog) ShowModal(owner isolate.Surface) isolate.Outcome {
	programOpts := []tea.ProgramOption{tea.WithOutput(d.opts.Output)}
	if d.opts.Input != nil {
		programOpts = append(programOpts, tea.WithInput(d.opts.Input))
	} else {
		programOpts = append(programOpts, tea.WithInputTTY())
	}

	final, err := tea.NewProgram(newModel(d.opts), programOpts...).Run()
	if err != nil {
		logging.Error("Password prompt failed: %v", err)
		return isolate.OutcomeNone
	}

	m, ok := final.(model)
	if !ok {
		logging.Error("Password prompt returned unexpected model %T", final)
		return isolate.OutcomeNone
	}
	d.finish(m)
	return d.outcome
}

// finish takes the outcome and, on acceptance, the secret from the final model.
func (d *PasswordDialog) finish(m model) {
	d.outcome = m.outcome
	if m.outcome == isolate.OutcomeOK {
		d.secret = []byte(m.input.Value())
	}
}

// Destroy overwrites the stored secret.
func (d *PasswordDialog) Destroy() {
	for i := range d.secret {
		d.secret[i] = 0
	}
	d.secret = nil
}

// Secret returns the accepted secret of a dialog built by New. It matches
// isolate.ResultFunc.
func Secret(d isolate.Dialog) string {
	pd, ok := d.(*PasswordDialog)
	if !ok {
		return ""
	}
	return string(pd.secret)
}
