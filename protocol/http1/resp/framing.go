package resp

import (
	"bytes"

	"github.com/favbox/h1wire/common/hlog"
	"github.com/favbox/h1wire/internal/bytesconv"
	"github.com/favbox/h1wire/protocol/consts"
)

// Framing 表示接收方判定正文结束位置的方式。
type Framing int

const (
	// FramingEmpty 没有正文。
	FramingEmpty Framing = iota
	// FramingFixed 由 content-length 限定正文长度。
	FramingFixed
	// FramingChunked 分块传输编码。
	FramingChunked
)

func (f Framing) String() string {
	switch f {
	case FramingEmpty:
		return "empty"
	case FramingFixed:
		return "fixed"
	case FramingChunked:
		return "chunked"
	}
	return "unknown"
}

// selectFraming 为流式（头块之后还有正文）的最终响应选择分帧方式。
//
// 有合法的 content-length 时按定长发送，调用方须恰好写入这么多字节；
// 否则使用分块编码，并清除残留的 content-length。
func selectFraming(b *HeaderBlock) Framing {
	if n, ok := contentLength(b); ok {
		b.Framing = FramingFixed
		b.ContentLength = n
		return b.Framing
	}
	b.Header.Del(consts.HeaderContentLength)
	b.Header.Set(consts.HeaderTransferEncoding, consts.HeaderValueChunked)
	b.Framing = FramingChunked
	b.ContentLength = -1
	return b.Framing
}

func contentLength(b *HeaderBlock) (int, bool) {
	values := b.Header.PeekAll(consts.HeaderContentLength)
	if len(values) == 0 {
		return 0, false
	}
	for _, v := range values[1:] {
		if !bytes.Equal(v, values[0]) {
			hlog.SystemLogger().Warnf("content-length 取值冲突 %q 与 %q，改用分块编码", values[0], v)
			return 0, false
		}
	}
	n, err := bytesconv.ParseUint(values[0])
	if err != nil {
		hlog.SystemLogger().Warnf("无法解析 content-length %q，改用分块编码: %v", values[0], err)
		return 0, false
	}
	if len(values) > 1 {
		b.Header.Set(consts.HeaderContentLength, bytesconv.B2s(values[0]))
	}
	return n, true
}
