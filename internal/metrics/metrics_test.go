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

package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adaryorg/securedesk/internal/isolate"
)

func sampleReport(path isolate.Path, outcome isolate.Outcome) isolate.Report {
	started := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return isolate.Report{
		ID:       "r",
		Started:  started,
		Finished: started.Add(3 * time.Second),
		Path:     path,
		Outcome:  outcome,
	}
}

func TestObserveCountsPrompts(t *testing.T) {
	c := New()

	r := sampleReport(isolate.PathIsolated, isolate.OutcomeOK)
	r.Takeovers = 2
	r.ClipboardCleared = true
	c.Observe(r)
	c.Observe(sampleReport(isolate.PathIsolated, isolate.OutcomeOK))
	c.Observe(sampleReport(isolate.PathFallback, isolate.OutcomeCancel))

	assert.Equal(t, 2.0, testutil.ToFloat64(c.PromptsTotal.WithLabelValues("isolated", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.PromptsTotal.WithLabelValues("fallback", "cancel")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.TakeoversTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.ClipboardClearsTotal))
	count, err := testutil.GatherAndCount(c.Registry())
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

func TestPromptDurationHistogram(t *testing.T) {
	c := New()
	c.Observe(sampleReport(isolate.PathDirect, isolate.OutcomeOK))

	expected := `
# HELP securedesk_takeovers_total Total secure desktop takeovers detected and recovered
# TYPE securedesk_takeovers_total counter
securedesk_takeovers_total 0
`
	require.NoError(t, testutil.GatherAndCompare(c.Registry(), strings.NewReader(expected), "securedesk_takeovers_total"))

	families, err := c.Registry().Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != "securedesk_prompt_duration_seconds" {
			continue
		}
		h := mf.GetMetric()[0].GetHistogram()
		assert.Equal(t, uint64(1), h.GetSampleCount())
		assert.InDelta(t, 3.0, h.GetSampleSum(), 0.001)
		return
	}
	t.Fatal("duration histogram not gathered")
}

func TestSeparateCollectorsDoNotShareState(t *testing.T) {
	a, b := New(), New()
	a.Observe(sampleReport(isolate.PathIsolated, isolate.OutcomeOK))

	assert.Equal(t, 0.0, testutil.ToFloat64(b.PromptsTotal.WithLabelValues("isolated", "ok")))
}

func TestWriteTextfile(t *testing.T) {
	c := New()
	c.Observe(sampleReport(isolate.PathIsolated, isolate.OutcomeCancel))

	path := filepath.Join(t.TempDir(), "textfile", "securedesk.prom")
	require.NoError(t, c.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `securedesk_prompts_total{outcome="cancel",path="isolated"} 1`)
	assert.Contains(t, string(data), "securedesk_prompt_duration_seconds_count 1")
}
