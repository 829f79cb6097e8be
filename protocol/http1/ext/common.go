package ext

import (
	"fmt"

	"github.com/favbox/h1wire/internal/bytesconv"
	"github.com/favbox/h1wire/internal/bytestr"
	"github.com/favbox/h1wire/network"
)

// BufferSnippet 返回字节切片的片段，用于日志和错误信息。
//
// 形如: <前缀 20 位>...<后缀 20 位>
//
// 若长度不足 40 字节，则直接返回完整内容。
func BufferSnippet(b []byte) string {
	n := len(b)
	start := 20
	end := n - start
	if start >= end {
		return fmt.Sprintf("%q", b)
	}
	return fmt.Sprintf("%q...%q", b[:start], b[end:])
}

// WriteChunk 向 w 写入一个数据块：十六进制长度行 + 数据 + CRLF。
//
// 空数据块会被忽略，因为长度为 0 的块即是结束块，须通过 WriteLastChunk 写入。
func WriteChunk(w network.Writer, b []byte) error {
	if len(b) == 0 {
		return nil
	}
	if err := bytesconv.WriteHexInt(w, len(b)); err != nil {
		return err
	}
	if _, err := w.WriteBinary(bytestr.StrCRLF); err != nil {
		return err
	}
	if _, err := w.WriteBinary(b); err != nil {
		return err
	}
	_, err := w.WriteBinary(bytestr.StrCRLF)
	return err
}

// WriteLastChunk 写入结束块 "0\r\n"。
//
// 调用方随后需写入挂车字段（可为空），并以 WriteCRLF 结束整个消息。
func WriteLastChunk(w network.Writer) error {
	_, err := w.WriteBinary(bytestr.StrLastChunk)
	return err
}

// WriteField 写入一行 "name: value\r\n"。
func WriteField(w network.Writer, name, value []byte) error {
	if _, err := w.WriteBinary(name); err != nil {
		return err
	}
	if _, err := w.WriteBinary(bytestr.StrColonSpace); err != nil {
		return err
	}
	if _, err := w.WriteBinary(value); err != nil {
		return err
	}
	_, err := w.WriteBinary(bytestr.StrCRLF)
	return err
}

// WriteCRLF 写入空行，用于结束标头块或挂车块。
func WriteCRLF(w network.Writer) error {
	_, err := w.WriteBinary(bytestr.StrCRLF)
	return err
}
