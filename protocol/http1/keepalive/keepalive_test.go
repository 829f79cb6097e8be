package keepalive

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHandlerZeroConfig(t *testing.T) {
	h := NewHandler(Config{})
	for i := 0; i < 100; i++ {
		h.OnRequest()
	}
	assert.False(t, h.NeedsClose())
	assert.Equal(t, ReasonNone, h.Reason())
	assert.Equal(t, 100, h.Requests())
}

func TestHandlerMaxRequests(t *testing.T) {
	h := NewHandler(Config{MaxRequests: 2})
	h.OnRequest()
	assert.False(t, h.NeedsClose())
	h.OnRequest()
	assert.True(t, h.NeedsClose())
	assert.Equal(t, ReasonMaxRequests, h.Reason())
}

func TestHandlerMaxAge(t *testing.T) {
	now := time.Unix(1000, 0)
	h := NewHandler(Config{
		MaxAge: time.Minute,
		Now:    func() time.Time { return now },
	})
	assert.False(t, h.NeedsClose())

	now = now.Add(time.Minute)
	assert.True(t, h.NeedsClose())
	assert.Equal(t, ReasonMaxAge, h.Reason())
}

func TestHandlerDestroy(t *testing.T) {
	h := NewHandler(Config{IdleTimeout: time.Hour})
	h.Destroy()
	h.Destroy()
	assert.True(t, h.NeedsClose())
	assert.Equal(t, ReasonDestroyed, h.Reason())

	// 不可撤销
	h.OnActivity()
	assert.True(t, h.NeedsClose())
}

func TestHandlerIdleTimeout(t *testing.T) {
	var fired atomic.Int32
	h := NewHandler(Config{
		IdleTimeout: 10 * time.Millisecond,
		OnIdle:      func() { fired.Add(1) },
	})

	assert.Eventually(t, h.NeedsClose, time.Second, 5*time.Millisecond)
	assert.Equal(t, ReasonIdle, h.Reason())
	assert.Equal(t, int32(1), fired.Load())

	h.Destroy()
	assert.Equal(t, ReasonIdle, h.Reason())
}

func TestHandlerActivityDefersIdle(t *testing.T) {
	h := NewHandler(Config{IdleTimeout: 200 * time.Millisecond})
	defer h.Destroy()

	for i := 0; i < 3; i++ {
		time.Sleep(50 * time.Millisecond)
		h.OnActivity()
	}
	assert.False(t, h.NeedsClose())
}

func TestHandlerBusyRequestNotIdle(t *testing.T) {
	h := NewHandler(Config{IdleTimeout: 20 * time.Millisecond})
	defer h.Destroy()

	h.OnRequest()
	h.OnActivity()
	time.Sleep(80 * time.Millisecond)
	assert.False(t, h.NeedsClose())

	h.OnRequestDone()
	assert.False(t, h.NeedsClose())
	assert.Eventually(t, h.NeedsClose, time.Second, 5*time.Millisecond)
	assert.Equal(t, ReasonIdle, h.Reason())
}

func TestNoop(t *testing.T) {
	var n Noop
	assert.False(t, n.NeedsClose())
	n.Destroy()
	assert.True(t, n.NeedsClose())
}

func TestReasonString(t *testing.T) {
	assert.Equal(t, "idle", ReasonIdle.String())
	assert.Equal(t, "unknown", Reason(42).String())
}
