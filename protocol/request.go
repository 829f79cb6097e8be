package protocol

import (
	"bytes"

	"github.com/favbox/h1wire/common/utils"
	"github.com/favbox/h1wire/protocol/consts"
)

// RequestHeaders 是与协议无关的请求描述，编码器只在错误响应路径上读取它。
type RequestHeaders struct {
	Method string
	Path   string
	Proto  string
	Header Header
}

// IsHead 报告请求方法是否为 HEAD。
func (r *RequestHeaders) IsHead() bool {
	return r != nil && r.Method == consts.MethodHead
}

// ConnectionClose 报告客户端是否要求在本次响应后关闭连接。
//
// HTTP/1.1 默认保活，除非带有 connection: close；HTTP/1.0 默认关闭，除非带有 connection: keep-alive。
func (r *RequestHeaders) ConnectionClose() bool {
	if r == nil {
		return false
	}
	if r.Proto == consts.HTTP10 {
		return !r.hasConnectionToken(consts.HeaderValueKeepAlive)
	}
	return r.hasConnectionToken(consts.HeaderValueClose)
}

func (r *RequestHeaders) hasConnectionToken(token string) bool {
	for _, v := range r.Header.PeekAll(consts.HeaderConnection) {
		for _, t := range bytes.Split(v, []byte{','}) {
			if utils.CaseInsensitiveCompare(bytes.TrimSpace(t), []byte(token)) {
				return true
			}
		}
	}
	return false
}
