// Package req 从连接中切分 HTTP/1 请求头。
//
// 只识别请求行和标头行，请求正文不在处理范围内。
package req

import (
	"bytes"
	"errors"
	"io"

	errs "github.com/favbox/h1wire/common/errors"
	"github.com/favbox/h1wire/common/utils"
	"github.com/favbox/h1wire/network"
	"github.com/favbox/h1wire/protocol"
	"github.com/favbox/h1wire/protocol/http1/ext"
)

// DefaultMaxHeaderSize 是请求头的默认最大字节数。
const DefaultMaxHeaderSize = 8 * 1024

var (
	// ErrHeaderTooLarge 请求头超过允许的大小。
	ErrHeaderTooLarge = errors.New("请求头过大")
	// ErrMalformed 请求头格式错误。
	ErrMalformed = errors.New("请求头格式错误")
)

var headerEnd = []byte("\r\n\r\n")

// ReadHeader 从 r 读取一个完整的请求头（到空行为止）并解析。
//
// 连接上没有任何数据时返回 io.EOF；读到一半断开返回 io.ErrUnexpectedEOF。
func ReadHeader(r network.Reader, maxSize int) (*protocol.RequestHeaders, error) {
	if maxSize <= 0 {
		maxSize = DefaultMaxHeaderSize
	}
	n := 1
	for {
		b, err := r.Peek(n)
		if len(b) < n {
			if n == 1 {
				if err == nil || errors.Is(err, io.EOF) {
					return nil, io.EOF
				}
				return nil, err
			}
			if err == nil || errors.Is(err, io.EOF) {
				return nil, io.ErrUnexpectedEOF
			}
			return nil, err
		}

		// 取出已缓冲的全部数据
		if l := r.Len(); l > n {
			if b, err = r.Peek(l); err != nil {
				return nil, err
			}
		}
		if end := bytes.Index(b, headerEnd); end >= 0 && end+len(headerEnd) <= maxSize {
			h, err := parse(b[:end+2])
			if err != nil {
				return nil, err
			}
			return h, r.Skip(end + len(headerEnd))
		}
		if len(b) >= maxSize {
			return nil, errs.New(ErrHeaderTooLarge, errs.ErrorTypePublic, map[string]any{"limit": maxSize})
		}
		n = len(b) + 1
	}
}

func parse(buf []byte) (*protocol.RequestHeaders, error) {
	line, rest, err := utils.NextLine(buf)
	if err != nil {
		return nil, malformed(buf)
	}
	h, err := parseFirstLine(line)
	if err != nil {
		return nil, err
	}
	for len(rest) > 0 {
		if line, rest, err = utils.NextLine(rest); err != nil {
			return nil, malformed(rest)
		}
		i := bytes.IndexByte(line, ':')
		if i <= 0 {
			return nil, malformed(line)
		}
		key := bytes.TrimSpace(line[:i])
		if len(key) != i {
			// 名称与冒号之间不允许有空白
			return nil, malformed(line)
		}
		h.Header.Add(string(key), string(bytes.TrimSpace(line[i+1:])))
	}
	return h, nil
}

// 请求行形如 "GET /path HTTP/1.1"。
func parseFirstLine(line []byte) (*protocol.RequestHeaders, error) {
	parts := bytes.Split(line, []byte{' '})
	if len(parts) != 3 || len(parts[0]) == 0 || len(parts[1]) == 0 || !bytes.HasPrefix(parts[2], []byte("HTTP/1.")) {
		return nil, malformed(line)
	}
	return &protocol.RequestHeaders{
		Method: string(parts[0]),
		Path:   string(parts[1]),
		Proto:  string(parts[2]),
	}, nil
}

func malformed(b []byte) error {
	return errs.New(ErrMalformed, errs.ErrorTypePublic, ext.BufferSnippet(b))
}
