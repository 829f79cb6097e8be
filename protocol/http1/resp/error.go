package resp

import (
	"fmt"
	"strconv"

	"github.com/favbox/h1wire/common/config"
	errs "github.com/favbox/h1wire/common/errors"
	"github.com/favbox/h1wire/common/hlog"
	"github.com/favbox/h1wire/common/json"
	"github.com/favbox/h1wire/protocol"
	"github.com/favbox/h1wire/protocol/consts"
)

// 错误响应的 JSON 正文。
type errorBody struct {
	Status  int    `json:"status"`
	Reason  string `json:"reason"`
	Message string `json:"message,omitempty"`
}

// WriteErrorResponse 为交换 id 写出错误响应，之后连接总会被关闭。
//
// 写头之前先销毁保活关系，保证响应带上 connection: close；写完后把关闭边界设在 id，
// 任何更晚到达的写入都无法再追加字节。
// 若 id 的最终响应头已经发出，错误响应无从写起：直接关闭连接并返回 ErrResponseStarted。
// 上一个交换的响应尚未结束时同理，连接被关闭并返回 ErrResponseInFlight。
// HEAD 请求只得到响应头，content-length 仍是正文应有的长度。
func (e *Encoder) WriteErrorResponse(id int, req *protocol.RequestHeaders, status int, message string, cause error) *Future {
	if !e.canWrite(id) {
		return e.sessionClosed(id)
	}
	if cause != nil {
		hlog.SystemLogger().Errorf("exchange=%d 返回错误响应 %d: %v", id, status, cause)
	}

	e.keepAlive.Destroy()

	if e.IsResponseHeadersSent(id) {
		e.updateClosedID(id)
		e.closeTransport()
		return failed(errs.Protocol(errs.ErrResponseStarted, id))
	}

	if status < 200 {
		status = consts.StatusInternalServerError
	}
	h := protocol.ResponseHeaders{Status: status}
	var body []byte
	if !consts.IsContentAlwaysEmpty(status) {
		var contentType string
		body, contentType = e.errorBody(status, message)
		h.Header.Set(consts.HeaderContentType, contentType)
		h.Header.Set(consts.HeaderContentLength, strconv.Itoa(len(body)))
	}
	headOnly := req.IsHead() || len(body) == 0

	e.failing = true
	f := e.WriteHeaders(id, h, headOnly, false)
	if !headOnly && f.IsSuccess() {
		f = e.WriteData(id, body, true)
	}
	e.failing = false

	e.updateClosedID(id)
	return f.AddListener(func(*Future) { e.closeTransport() })
}

func (e *Encoder) errorBody(status int, message string) ([]byte, string) {
	reason := consts.StatusMessage(status)
	if e.cfg.ErrorBodyFormat == config.ErrorBodyJSON {
		b, err := json.Marshal(errorBody{Status: status, Reason: reason, Message: message})
		if err == nil {
			return b, consts.MIMEApplicationJSONUTF8
		}
		hlog.SystemLogger().Warnf("错误响应正文编码失败，改用纯文本: %v", err)
	}
	text := fmt.Sprintf("%d %s", status, reason)
	if message != "" {
		text += "\n" + message
	}
	return []byte(text), consts.MIMETextPlainUTF8
}
