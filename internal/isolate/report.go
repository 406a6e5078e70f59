package isolate

import "time"

// Path says where a dialog ended up being shown.
type Path string

const (
	PathIsolated Path = "isolated"
	PathFallback Path = "fallback"
	PathDirect   Path = "direct"
)

// Report describes one finished invocation. It never carries the dialog's payload.
type Report struct {
	ID               string
	Started          time.Time
	Finished         time.Time
	Path             Path
	Outcome          Outcome
	Takeovers        int
	ClipboardCleared bool
	Failure          string
}

func (r Report) Duration() time.Duration {
	return r.Finished.Sub(r.Started)
}

func (r *Report) fail(err error) {
	if r.Failure == "" && err != nil {
		r.Failure = err.Error()
	}
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(r Report)

func (f ObserverFunc) Observe(r Report) {
	f(r)
}
