package resp

import (
	"github.com/favbox/h1wire/common/hlog"
	"github.com/favbox/h1wire/internal/bytesconv"
	"github.com/favbox/h1wire/protocol"
	"github.com/favbox/h1wire/protocol/consts"
	"github.com/favbox/h1wire/protocol/http1/ext"
	"golang.org/x/net/http/httpguts"
)

// HeaderBlock 是即将写上线路的一个响应头块，由调用方的 ResponseHeaders 复制而来。
type HeaderBlock struct {
	Status int
	Header protocol.Header

	// Framing 与 ContentLength 由分帧选择器填写。
	Framing       Framing
	ContentLength int
}

func (b *HeaderBlock) informational() bool {
	return consts.IsInformational(b.Status)
}

// translate 把抽象响应头转换为线路标头块，调用方的 h 不会被修改。
//
// 处理顺序：
//  1. 校验全部字段，非法字段使写入失败，不产生任何字节；
//  2. 丢弃调用方提供的 transfer-encoding，分帧只由编码器决定；
//  3. 1xx 响应去掉 content-length 后原样返回，不追加 Server/Date；
//  4. 声明了挂车且头不是结尾时去掉 content-length，迫使后续选择分块编码；
//     头即结尾时不会再有正文和挂车，挂车声明被忽略，content-length 按第 6 步处理；
//  5. 按配置追加 Server 和 Date；
//  6. 头即结尾时：永远无正文的状态去掉 content-length（304 保留），
//     其余状态在调用方未给出长度时补 content-length: 0。
func (e *Encoder) translate(h *protocol.ResponseHeaders, endStream, hasTrailers bool) (*HeaderBlock, error) {
	if h.Status < 100 || h.Status > 999 {
		return nil, ext.FieldError("状态码", bytesconv.AppendUint(nil, h.Status), nil)
	}
	if err := validateFields(&h.Header, "标头"); err != nil {
		return nil, err
	}

	b := &HeaderBlock{Status: h.Status}
	h.Header.CopyTo(&b.Header)

	if b.Header.Has(consts.HeaderTransferEncoding) {
		b.Header.Del(consts.HeaderTransferEncoding)
		hlog.SystemLogger().Debugf("忽略调用方提供的 transfer-encoding 标头, status=%d", h.Status)
	}

	if b.informational() {
		b.Header.Del(consts.HeaderContentLength)
		b.Framing = FramingEmpty
		return b, nil
	}

	if hasTrailers && !endStream && b.Header.Has(consts.HeaderContentLength) {
		b.Header.Del(consts.HeaderContentLength)
		hlog.SystemLogger().Debugf("响应声明了挂车，移除 content-length 改用分块编码, status=%d", h.Status)
	}

	if e.cfg.EnableServerHeader && !b.Header.Has(consts.HeaderServer) {
		b.Header.Add(consts.HeaderServer, e.cfg.ServerName)
	}
	if e.cfg.EnableDateHeader && !b.Header.Has(consts.HeaderDate) {
		b.Header.Add(consts.HeaderDate, bytesconv.B2s(e.cfg.Date.CurrentHTTPDate()))
	}

	if endStream {
		b.Framing = FramingEmpty
		if consts.IsContentAlwaysEmpty(h.Status) {
			// 304 可以携带条件 GET 对应实体的 content-length
			if h.Status != consts.StatusNotModified {
				b.Header.Del(consts.HeaderContentLength)
			}
		} else if !h.Header.Has(consts.HeaderContentLength) {
			// 只在调用方未给出长度时补 0：HEAD 响应可以声明非零长度而不带正文。
			// 代价是调用方漏给长度的非 HEAD 响应也会得到 0。
			b.Header.Set(consts.HeaderContentLength, "0")
		}
	}
	return b, nil
}

// 校验字段名与字段值，拒绝含 CR/LF 等会导致响应拆分的字节。
func validateFields(h *protocol.Header, kind string) (err error) {
	h.VisitAll(func(k, v []byte) {
		if err != nil {
			return
		}
		if !httpguts.ValidHeaderFieldName(bytesconv.B2s(k)) {
			err = ext.FieldError(kind+"名", k, v)
			return
		}
		if !httpguts.ValidHeaderFieldValue(bytesconv.B2s(v)) {
			err = ext.FieldError(kind+"值", k, v)
		}
	})
	return err
}
