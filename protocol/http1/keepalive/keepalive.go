// Package keepalive 决定一个 HTTP/1 连接在当前响应之后是否还能复用。
package keepalive

import (
	"sync/atomic"
	"time"
)

// Policy 是连接保活策略。
//
// NeedsClose 报告连接是否必须在当前响应后关闭；
// Destroy 不可撤销地标记连接需要关闭，可重复调用。
type Policy interface {
	NeedsClose() bool
	Destroy()
}

// Reason 表示连接被判定需要关闭的原因。
type Reason int32

const (
	ReasonNone Reason = iota
	ReasonDestroyed
	ReasonIdle
	ReasonMaxRequests
	ReasonMaxAge
)

var reasonNames = [...]string{"none", "destroyed", "idle", "max-requests", "max-age"}

func (r Reason) String() string {
	if r >= 0 && int(r) < len(reasonNames) {
		return reasonNames[r]
	}
	return "unknown"
}

// Config 是 Handler 的配置，零值表示不做任何限制。
type Config struct {
	// IdleTimeout 连接闲置超过该时长后需要关闭。
	IdleTimeout time.Duration
	// MaxRequests 单连接允许处理的最大请求数。
	MaxRequests int
	// MaxAge 连接自建立起的最长存活时间。
	MaxAge time.Duration
	// OnIdle 闲置超时触发时在计时器协程中回调，可为空。
	OnIdle func()
	// Now 返回当前时间，用于测试替换时钟，默认为 time.Now。
	Now func() time.Time
}

// Handler 是基于闲置时间、请求数和连接寿命的保活策略。
//
// 只有没有请求在处理时才计算闲置：OnRequest 暂停闲置计时，OnRequestDone 重新开始。
// 各方法可在多个协程中并发调用：闲置计时器运行在自己的协程里。
type Handler struct {
	cfg      Config
	created  time.Time
	requests atomic.Int64
	reason   atomic.Int32
	busy     atomic.Bool
	idle     *time.Timer
}

var _ Policy = (*Handler)(nil)

// NewHandler 创建保活策略，闲置计时从此刻开始。
func NewHandler(cfg Config) *Handler {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	h := &Handler{cfg: cfg, created: cfg.Now()}
	if cfg.IdleTimeout > 0 {
		h.idle = time.AfterFunc(cfg.IdleTimeout, h.fireIdle)
	}
	return h
}

func (h *Handler) fireIdle() {
	// Stop 与计时器触发竞争时，处理中的请求不算闲置
	if h.busy.Load() {
		return
	}
	if h.latch(ReasonIdle) && h.cfg.OnIdle != nil {
		h.cfg.OnIdle()
	}
}

// 记录首个关闭原因，已有原因时不覆盖。
func (h *Handler) latch(r Reason) bool {
	return h.reason.CompareAndSwap(int32(ReasonNone), int32(r))
}

// OnRequest 在接受一个新请求时调用，计入请求数并暂停闲置计时，直到 OnRequestDone。
func (h *Handler) OnRequest() {
	h.requests.Add(1)
	h.busy.Store(true)
	if h.idle != nil {
		h.idle.Stop()
	}
}

// OnRequestDone 在请求的响应结束后调用，闲置计时从此刻重新开始。
func (h *Handler) OnRequestDone() {
	h.busy.Store(false)
	h.OnActivity()
}

// OnActivity 刷新闲置计时。处理请求期间不计时，闲置超时一旦触发便不可撤销。
func (h *Handler) OnActivity() {
	if h.idle != nil && !h.busy.Load() && Reason(h.reason.Load()) == ReasonNone {
		h.idle.Reset(h.cfg.IdleTimeout)
	}
}

// Requests 返回已接受的请求数。
func (h *Handler) Requests() int {
	return int(h.requests.Load())
}

// NeedsClose 报告连接是否必须在当前响应后关闭。
func (h *Handler) NeedsClose() bool {
	return h.Reason() != ReasonNone
}

// Reason 返回需要关闭的原因，无需关闭时返回 ReasonNone。
func (h *Handler) Reason() Reason {
	if r := Reason(h.reason.Load()); r != ReasonNone {
		return r
	}
	if h.cfg.MaxRequests > 0 && h.requests.Load() >= int64(h.cfg.MaxRequests) {
		h.latch(ReasonMaxRequests)
	} else if h.cfg.MaxAge > 0 && h.cfg.Now().Sub(h.created) >= h.cfg.MaxAge {
		h.latch(ReasonMaxAge)
	}
	return Reason(h.reason.Load())
}

// Destroy 不可撤销地标记连接需要关闭，并停止闲置计时。
func (h *Handler) Destroy() {
	h.latch(ReasonDestroyed)
	if h.idle != nil {
		h.idle.Stop()
	}
}

// Noop 是从不主动要求关闭的策略，但 Destroy 依然生效。
type Noop struct {
	destroyed atomic.Bool
}

var _ Policy = (*Noop)(nil)

func (n *Noop) NeedsClose() bool { return n.destroyed.Load() }
func (n *Noop) Destroy()         { n.destroyed.Store(true) }
