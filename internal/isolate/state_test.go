package isolate

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInvocationStateOnlyMovesForward(t *testing.T) {
	inv := newInvocation[string, string](nil, 5, "param")
	assert.Equal(t, NotStarted, inv.State())

	assert.True(t, inv.advance(ShowingDialog))
	assert.False(t, inv.advance(ShowingDialog))
	assert.False(t, inv.advance(NotStarted))
	assert.Equal(t, ShowingDialog, inv.State())

	assert.True(t, inv.advance(Terminated))
	assert.False(t, inv.advance(ShowingDialog))
	assert.Equal(t, Terminated, inv.State())
}

func TestInvocationObservedSequenceIsOrdered(t *testing.T) {
	inv := newInvocation[string, string](nil, 5, "param")

	var (
		wg       sync.WaitGroup
		observed []State
	)
	stop := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			observed = append(observed, inv.State())
			select {
			case <-stop:
				observed = append(observed, inv.State())
				return
			default:
			}
		}
	}()

	inv.advance(ShowingDialog)
	inv.advance(Terminated)
	close(stop)
	wg.Wait()

	for i := 1; i < len(observed); i++ {
		assert.LessOrEqual(t, observed[i-1], observed[i])
	}
	assert.Equal(t, Terminated, observed[len(observed)-1])
}

func TestInvocationCapture(t *testing.T) {
	var nilInv *invocation[string, string]
	captured, outcome, payload := nilInv.snapshot()
	assert.False(t, captured)
	assert.Equal(t, OutcomeNone, outcome)
	assert.Empty(t, payload)

	inv := newInvocation[string, string](nil, 5, "param")
	captured, _, _ = inv.snapshot()
	assert.False(t, captured)

	inv.capture(OutcomeOK, "X")
	captured, outcome, payload = inv.snapshot()
	assert.True(t, captured)
	assert.Equal(t, OutcomeOK, outcome)
	assert.Equal(t, "X", payload)
}

func TestInvocationKeepsFirstFailure(t *testing.T) {
	inv := newInvocation[string, string](nil, 5, "param")
	first := errors.New("first")
	inv.fail(first)
	inv.fail(errors.New("second"))
	assert.Equal(t, first, inv.err())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "not-started", NotStarted.String())
	assert.Equal(t, "showing-dialog", ShowingDialog.String())
	assert.Equal(t, "terminated", Terminated.String())
	assert.Equal(t, "unknown", State(9).String())
}
