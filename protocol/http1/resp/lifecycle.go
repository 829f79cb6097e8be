package resp

import (
	"bytes"

	"github.com/favbox/h1wire/common/hlog"
	"github.com/favbox/h1wire/protocol/consts"
)

// closeDecision 是对"当前响应后是否关闭连接"的唯一判定，写头时惰性求值。
type closeDecision int

const (
	keepAlive closeDecision = iota
	closeOnShutdown
	closeByPolicy
	closeOnError
)

func (d closeDecision) String() string {
	switch d {
	case keepAlive:
		return "keep-alive"
	case closeOnShutdown:
		return "shutdown"
	case closeByPolicy:
		return "policy"
	case closeOnError:
		return "error"
	}
	return "unknown"
}

func (e *Encoder) decideClose(b *HeaderBlock) closeDecision {
	switch {
	case e.failing:
		return closeOnError
	case e.shutdownRequested:
		return closeOnShutdown
	case e.keepAlive.NeedsClose(), wantsClose(b):
		return closeByPolicy
	}
	return keepAlive
}

// 调用方自己在标头里要求了 connection: close。
func wantsClose(b *HeaderBlock) bool {
	for _, v := range b.Header.PeekAll(consts.HeaderConnection) {
		if bytes.EqualFold(bytes.TrimSpace(v), []byte(consts.HeaderValueClose)) {
			return true
		}
	}
	return false
}

// stampConnection 在物理写入前为最终响应打上 connection: close，返回是否需要在响应结束后关闭连接。
//
// 打上标记后，关闭边界随即设在 id 之后：本交换可以写完正文和挂车，
// 更晚的交换一律被拒，因此每个连接至多发出一次 connection: close。
func (e *Encoder) stampConnection(id int, b *HeaderBlock) bool {
	d := e.decideClose(b)
	if d == keepAlive {
		return false
	}
	b.Header.Set(consts.HeaderConnection, consts.HeaderValueClose)
	e.connectionCloseSent = true
	e.updateClosedID(id + 1)
	hlog.SystemLogger().Debugf("exchange=%d 响应后关闭连接, reason=%s", id, d)
	return true
}

// InitiateShutdown 请求优雅关闭：此后的下一个最终响应带上 connection: close。可重复调用。
func (e *Encoder) InitiateShutdown() {
	e.shutdownRequested = true
}

// ConnectionCloseSent 报告是否已经发出过 connection: close。
func (e *Encoder) ConnectionCloseSent() bool {
	return e.connectionCloseSent
}
