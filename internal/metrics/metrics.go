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

// Package metrics counts protected prompts for export through the
// node-exporter textfile collector.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/adaryorg/securedesk/internal/isolate"
)

// Collector holds the prompt metrics on its own registry.
type Collector struct {
	registry *prometheus.Registry

	// PromptsTotal counts prompts by presentation path and outcome
	PromptsTotal *prometheus.CounterVec
	// TakeoversTotal counts recovered secure desktop takeovers
	TakeoversTotal prometheus.Counter
	// ClipboardClearsTotal counts clipboards cleared after a prompt
	ClipboardClearsTotal prometheus.Counter
	// PromptDuration tracks how long the user spent in prompts
	PromptDuration prometheus.Histogram
}

func New() *Collector {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Collector{
		registry: registry,
		PromptsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "securedesk_prompts_total",
				Help: "Total protected prompts by presentation path and outcome",
			},
			[]string{"path", "outcome"},
		),
		TakeoversTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "securedesk_takeovers_total",
				Help: "Total secure desktop takeovers detected and recovered",
			},
		),
		ClipboardClearsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "securedesk_clipboard_clears_total",
				Help: "Total clipboards cleared because they changed during a prompt",
			},
		),
		PromptDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "securedesk_prompt_duration_seconds",
				Help:    "Protected prompt duration in seconds",
				Buckets: []float64{.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
			},
		),
	}
}

func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Observe records r. It makes the collector an isolate.Observer.
func (c *Collector) Observe(r isolate.Report) {
	c.PromptsTotal.WithLabelValues(string(r.Path), r.Outcome.String()).Inc()
	c.TakeoversTotal.Add(float64(r.Takeovers))
	if r.ClipboardCleared {
		c.ClipboardClearsTotal.Inc()
	}
	if d := r.Duration(); d >= 0 {
		c.PromptDuration.Observe(d.Seconds())
	}
}

// WriteTextfile writes the registry in text exposition format to path,
// atomically replacing any previous file.
func (c *Collector) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
