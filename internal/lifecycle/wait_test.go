package lifecycle

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitFor_ReturnsImmediatelyWhenPresent(t *testing.T) {
	var calls int32
	v, err := WaitFor(context.Background(), func() (string, bool) {
		atomic.AddInt32(&calls, 1)
		return "button", true
	})
	require.NoError(t, err)
	assert.Equal(t, "button", v)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestWaitFor_FindsElementAfterPolling(t *testing.T) {
	var calls int32
	v, err := WaitFor(context.Background(), func() (int, bool) {
		n := atomic.AddInt32(&calls, 1)
		return int(n), n >= 3
	}, WithInterval(time.Millisecond), WithTimeout(time.Second))
	require.NoError(t, err)
	assert.Equal(t, 3, v)

	// polling must stop once the element is found
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestWaitFor_TimesOutWithDescriptiveError(t *testing.T) {
	var calls int32
	_, err := WaitFor(context.Background(), func() (struct{}, bool) {
		atomic.AddInt32(&calls, 1)
		return struct{}{}, false
	}, WithName("#ai-writer-btn"), WithInterval(2*time.Millisecond), WithTimeout(20*time.Millisecond))

	var werr *WaitTimeoutError
	require.ErrorAs(t, err, &werr)
	assert.Equal(t, `Element "#ai-writer-btn" not found after 0.02s.`, err.Error())

	after := atomic.LoadInt32(&calls)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, after, atomic.LoadInt32(&calls), "lookup kept running after timeout")
}

func TestWaitFor_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(5 * time.Millisecond)
		cancel()
	}()
	_, err := WaitFor(ctx, func() (int, bool) { return 0, false },
		WithInterval(time.Millisecond), WithTimeout(time.Second))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWaitTimeoutError_DefaultTimeout(t *testing.T) {
	err := &WaitTimeoutError{Name: "div.contextual", Timeout: DefaultWaitTimeout}
	assert.Equal(t, `Element "div.contextual" not found after 5s.`, err.Error())
}
