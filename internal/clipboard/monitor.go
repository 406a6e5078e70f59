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
	"context"
	"sync"
	"time"

	"github.com/adaryorg/securedesk/internal/logging"
)

// ChangeCallback receives the new content hash whenever the clipboard changes.
type ChangeCallback func(hash []byte)

// Monitor polls the clipboard and notifies listeners about changes.
// Notifications can be suppressed while sensitive UI is up.
type Monitor struct {
	source    ContentStore
	interval  time.Duration
	callbacks []ChangeCallback

	mu         sync.Mutex
	lastHash   []byte
	suppressed int
	resync     bool
}

// Blocker keeps monitor notifications suppressed until released.
type Blocker struct {
	monitor *Monitor
	once    sync.Once
}

func NewMonitor(source ContentStore, callbacks ...ChangeCallback) *Monitor {
	return &Monitor{
		source:    source,
		interval:  500 * time.Millisecond,
		callbacks: callbacks,
	}
}

// SetInterval changes the polling interval; non-positive values are ignored.
func (m *Monitor) SetInterval(interval time.Duration) {
	if interval > 0 {
		m.interval = interval
	}
}

func (m *Monitor) Start(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			m.poll()
		}
	}
}

func (m *Monitor) poll() {
	hash := m.source.ContentHash()
	if hash == nil {
		return
	}

	m.mu.Lock()
	first := m.lastHash == nil
	changed := !bytes.Equal(hash, m.lastHash)
	m.lastHash = hash

	silent := first || m.suppressed > 0 || m.resync
	m.resync = false
	callbacks := m.callbacks
	m.mu.Unlock()

	if !changed {
		return
	}
	if silent {
		logging.Debug("Clipboard change absorbed without notification")
		return
	}

	for _, cb := range callbacks {
		cb(hash)
	}
}

// Suppress stops change notifications until the returned blocker is released.
// Blockers nest.
func (m *Monitor) Suppress() *Blocker {
	m.mu.Lock()
	m.suppressed++
	m.mu.Unlock()
	return &Blocker{monitor: m}
}

// Suppressed reports whether any blocker is active.
func (m *Monitor) Suppressed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.suppressed > 0
}

// Release re-enables notifications. The first poll afterwards adopts the
// current clipboard state silently. Calling Release more than once is harmless.
func (b *Blocker) Release() {
	if b == nil || b.monitor == nil {
		return
	}
	b.once.Do(func() {
		m := b.monitor
		m.mu.Lock()
		m.suppressed--
		if m.suppressed == 0 {
			m.resync = true
		}
		m.mu.Unlock()
	})
}
