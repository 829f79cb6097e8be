package resp

import (
	errs "github.com/favbox/h1wire/common/errors"
	"github.com/favbox/h1wire/common/hlog"
	"github.com/favbox/h1wire/protocol"
	"github.com/favbox/h1wire/protocol/consts"
	"github.com/favbox/h1wire/protocol/http1/ext"
)

// WriteData 按已选定的分帧方式写出交换 id 的一段正文。endStream 为真时结束该响应。
//
// 分块：每段数据编码为一个数据块，结束时追加结束块和空挂车。
// 定长：原样写出，只计数不纠正，长度不符时记录告警。
func (e *Encoder) WriteData(id int, data []byte, endStream bool) *Future {
	if !e.canWrite(id) {
		return e.sessionClosed(id)
	}
	if !e.cur.active || e.cur.id != id {
		return failed(errs.Protocol(errs.ErrNoResponseInFlight, id))
	}

	var err error
	switch e.cur.framing {
	case FramingChunked:
		err = ext.WriteChunk(e.conn, data)
		if err == nil && endStream {
			if err = ext.WriteLastChunk(e.conn); err == nil {
				err = ext.WriteCRLF(e.conn)
			}
		}
	case FramingFixed:
		before := e.cur.written
		e.cur.written += len(data)
		if e.cur.written > e.cur.length && before <= e.cur.length {
			hlog.SystemLogger().Warnf("exchange=%d 正文超出 content-length: %d > %d", id, e.cur.written, e.cur.length)
		}
		if len(data) > 0 {
			_, err = e.conn.WriteBinary(data)
		}
		if endStream {
			e.checkUnderrun(id)
		}
	default:
		if len(data) > 0 {
			hlog.SystemLogger().Warnf("exchange=%d 的响应没有正文，丢弃 %d 字节", id, len(data))
		}
	}

	f := e.flush(id, err)
	if endStream && f.IsSuccess() {
		e.finish(id)
	}
	return f
}

// WriteTrailers 写出挂车并结束交换 id 的响应。
//
// 只有分块编码能携带挂车；定长响应的挂车被丢弃，响应照常结束。
func (e *Encoder) WriteTrailers(id int, trailers protocol.Header) *Future {
	if !e.canWrite(id) {
		return e.sessionClosed(id)
	}
	if !e.cur.active || e.cur.id != id {
		return failed(errs.Protocol(errs.ErrNoResponseInFlight, id))
	}
	if err := validateFields(&trailers, "挂车"); err != nil {
		return failed(err)
	}

	var err error
	switch e.cur.framing {
	case FramingChunked:
		// 分帧相关字段不允许出现在挂车中
		var t protocol.Header
		trailers.CopyTo(&t)
		t.Del(consts.HeaderContentLength)
		t.Del(consts.HeaderTransferEncoding)
		if err = ext.WriteLastChunk(e.conn); err == nil {
			if err = e.writeFields(&t); err == nil {
				err = ext.WriteCRLF(e.conn)
			}
		}
	default:
		if trailers.Len() > 0 {
			hlog.SystemLogger().Debugf("exchange=%d 使用 %s 分帧，无法携带挂车，已丢弃 %d 个字段", id, e.cur.framing, trailers.Len())
		}
		if e.cur.framing == FramingFixed {
			e.checkUnderrun(id)
		}
	}

	f := e.flush(id, err)
	if f.IsSuccess() {
		e.finish(id)
	}
	return f
}

func (e *Encoder) checkUnderrun(id int) {
	if e.cur.written < e.cur.length {
		hlog.SystemLogger().Warnf("exchange=%d 正文不足 content-length: %d < %d", id, e.cur.written, e.cur.length)
	}
}
