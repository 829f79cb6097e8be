package resp

import (
	"math"

	errs "github.com/favbox/h1wire/common/errors"
	"github.com/favbox/h1wire/common/hlog"
)

// 关闭边界未设置时的取值。
const noCloseBoundary = math.MaxInt

// canWrite 报告 id 的写入是否仍被允许：传输未关闭，且 id 位于关闭边界之前。
func (e *Encoder) canWrite(id int) bool {
	return !e.transportClosed && id < e.closedID
}

// IsResponseHeadersSent 报告 id 及其之前交换的最终响应头是否已发送。
func (e *Encoder) IsResponseHeadersSent(id int) bool {
	return id <= e.lastWrittenID
}

// updateClosedID 下移关闭边界，边界只降不升。
func (e *Encoder) updateClosedID(id int) {
	if id < e.closedID {
		e.closedID = id
	}
}

// checkOrder 拒绝写给已被最终响应覆盖的交换，
// 以及在上一个响应的正文或挂车尚未写完时开始的新交换（1xx 同样不行）。
func (e *Encoder) checkOrder(id int) error {
	switch {
	case id == e.lastWrittenID:
		return errs.Protocol(errs.ErrResponseStarted, id)
	case id < e.lastWrittenID:
		return errs.Protocol(errs.ErrExchangeSuperseded, id)
	case e.cur.active:
		return errs.Protocol(errs.ErrResponseInFlight, id)
	}
	return nil
}

// IsResponseInFlight 报告 id 的最终响应头已写出、但正文或挂车尚未结束。
func (e *Encoder) IsResponseInFlight(id int) bool {
	return e.cur.active && e.cur.id == id
}

func (e *Encoder) sessionClosed(id int) *Future {
	hlog.SystemLogger().Debugf("exchange=%d 写入被丢弃：会话已关闭", id)
	return failed(errs.Protocol(errs.ErrSessionClosed, id))
}

// closeTransport 关闭底层连接，只执行一次。
func (e *Encoder) closeTransport() {
	if e.transportClosed {
		return
	}
	e.transportClosed = true
	e.cur = response{}
	if err := e.conn.Close(); err != nil {
		hlog.SystemLogger().Debugf("关闭连接出错: %v", err)
	}
}
