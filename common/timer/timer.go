// Package timer 复用 *time.Timer，供等待响应结果等短时超时场景使用。
package timer

import (
	"sync"
	"time"
)

var timerPool sync.Pool

// AcquireTimer 从池中取出计时器并按 timeout 重新启动。
func AcquireTimer(timeout time.Duration) *time.Timer {
	v := timerPool.Get()
	if v == nil {
		return time.NewTimer(timeout)
	}
	t := v.(*time.Timer)
	initTimer(t, timeout)
	return t
}

// ReleaseTimer 停止计时器并放回池中。放回后不可再访问 t。
func ReleaseTimer(t *time.Timer) {
	stopTimer(t)
	timerPool.Put(t)
}

func initTimer(t *time.Timer, timeout time.Duration) *time.Timer {
	if t == nil {
		return time.NewTimer(timeout)
	}
	if t.Reset(timeout) {
		panic("BUG: 池中的计时器仍处于活动状态")
	}
	return t
}

// Stop 之后排空通道，保证下次 Reset 不会读到旧值。
func stopTimer(t *time.Timer) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
}
