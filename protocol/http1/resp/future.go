package resp

import (
	"context"
	"io"
	"sync"
	"time"

	errs "github.com/favbox/h1wire/common/errors"
	"github.com/favbox/h1wire/common/timer"
)

// Future 表示一次写入的完成结果。
//
// 编码器返回的 Future 在写入（含刷新）结束时完成；经由 Session 提交的操作在会话协程执行后完成。
type Future struct {
	done      chan struct{}
	mu        sync.Mutex
	err       error
	completed bool
	listeners []func(*Future)
}

// NewFuture 创建未完成的 Future。
func NewFuture() *Future {
	return &Future{done: make(chan struct{})}
}

func succeeded() *Future {
	f := NewFuture()
	f.Complete(nil)
	return f
}

func failed(err error) *Future {
	f := NewFuture()
	f.Complete(err)
	return f
}

// Complete 以 err 结束 Future，nil 表示成功。只有首次调用生效，返回是否生效。
func (f *Future) Complete(err error) bool {
	f.mu.Lock()
	if f.completed {
		f.mu.Unlock()
		return false
	}
	f.completed = true
	f.err = err
	listeners := f.listeners
	f.listeners = nil
	close(f.done)
	f.mu.Unlock()

	for _, l := range listeners {
		l(f)
	}
	return true
}

// Done 返回在完成时关闭的通道。
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Err 返回写入错误，未完成或成功时为 nil。
func (f *Future) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// IsDone 报告是否已完成。
func (f *Future) IsDone() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// IsSuccess 报告是否已成功完成。
func (f *Future) IsSuccess() bool {
	return f.IsDone() && f.Err() == nil
}

// AddListener 注册完成回调。若已完成，则在当前协程立即执行。
func (f *Future) AddListener(l func(*Future)) *Future {
	f.mu.Lock()
	if !f.completed {
		f.listeners = append(f.listeners, l)
		f.mu.Unlock()
		return f
	}
	f.mu.Unlock()
	l(f)
	return f
}

// Wait 等待完成并返回写入错误，ctx 结束时返回 ctx.Err()。
func (f *Future) Wait(ctx context.Context) error {
	select {
	case <-f.done:
		return f.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// WaitTimeout 最多等待 d，超时返回 errs.ErrTimeout。
func (f *Future) WaitTimeout(d time.Duration) error {
	t := timer.AcquireTimer(d)
	defer timer.ReleaseTimer(t)
	select {
	case <-f.done:
		return f.Err()
	case <-t.C:
		return errs.ErrTimeout
	}
}

// CloseOnComplete 返回一个完成回调：无论成败，都关闭 c。
func CloseOnComplete(c io.Closer) func(*Future) {
	return func(*Future) {
		_ = c.Close()
	}
}
