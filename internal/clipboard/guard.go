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

package clipboard

import (
	"bytes"

	"github.com/adaryorg/securedesk/internal/logging"
)

// Guard clears the clipboard when something changed it while a secure prompt
// was shown, and mutes clipboard listeners for the duration.
type Guard struct {
	store   ContentStore
	monitor *Monitor
}

// NewGuard builds a guard. monitor may be nil when no listeners are running.
func NewGuard(store ContentStore, monitor *Monitor) *Guard {
	return &Guard{store: store, monitor: monitor}
}

// Protect runs fn inside the guard scope and reports whether the clipboard was cleared.
func (g *Guard) Protect(fn func()) bool {
	var blocker *Blocker
	if g.monitor != nil {
		blocker = g.monitor.Suppress()
	}
	defer blocker.Release()

	before := g.store.ContentHash()
	fn()
	after := g.store.ContentHash()

	if before == nil || after == nil || bytes.Equal(before, after) {
		return false
	}

	if err := g.store.Clear(); err != nil {
		logging.Error("Failed to clear clipboard after secure prompt: %v", err)
		return false
	}
	logging.Info("Clipboard changed during secure prompt, cleared")
	return true
}
