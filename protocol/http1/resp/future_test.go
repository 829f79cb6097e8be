package resp

import (
	"context"
	"errors"
	"testing"
	"time"

	errs "github.com/favbox/h1wire/common/errors"
	"github.com/favbox/h1wire/common/mock"
	"github.com/stretchr/testify/assert"
)

func TestFutureCompleteOnce(t *testing.T) {
	f := NewFuture()
	assert.False(t, f.IsDone())
	assert.Nil(t, f.Err())

	boom := errors.New("boom")
	assert.True(t, f.Complete(boom))
	assert.False(t, f.Complete(nil))
	assert.True(t, f.IsDone())
	assert.False(t, f.IsSuccess())
	assert.Equal(t, boom, f.Err())
}

func TestFutureListeners(t *testing.T) {
	f := NewFuture()
	var calls []string
	f.AddListener(func(*Future) { calls = append(calls, "a") }).
		AddListener(func(*Future) { calls = append(calls, "b") })
	assert.Empty(t, calls)

	f.Complete(nil)
	assert.Equal(t, []string{"a", "b"}, calls)

	// 已完成时立即执行
	f.AddListener(func(got *Future) {
		assert.True(t, got.IsSuccess())
		calls = append(calls, "c")
	})
	assert.Equal(t, []string{"a", "b", "c"}, calls)
}

func TestFutureWait(t *testing.T) {
	f := NewFuture()
	go func() {
		time.Sleep(10 * time.Millisecond)
		f.Complete(nil)
	}()
	assert.Nil(t, f.Wait(context.Background()))

	f = NewFuture()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Equal(t, context.Canceled, f.Wait(ctx))

	assert.Equal(t, errs.ErrTimeout, f.WaitTimeout(10*time.Millisecond))
	f.Complete(errs.ErrSessionClosed)
	assert.Equal(t, errs.ErrSessionClosed, f.WaitTimeout(time.Second))
}

func TestCloseOnComplete(t *testing.T) {
	conn := mock.NewConn("")
	f := NewFuture().AddListener(CloseOnComplete(conn))
	assert.False(t, conn.Closed())
	f.Complete(errors.New("boom"))
	assert.True(t, conn.Closed())
}
