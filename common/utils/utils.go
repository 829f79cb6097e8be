package utils

import (
	"bytes"
	"errors"

	"github.com/favbox/h1wire/internal/bytesconv"
)

// ErrNeedMore 表示缓冲区中尚无完整的一行。
var ErrNeedMore = errors.New("无法找到换行符")

// CaseInsensitiveCompare 不分大小写，高效比较两者是否相同。
func CaseInsensitiveCompare(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i]|0x20 != b[i]|0x20 {
			return false
		}
	}
	return true
}

// NormalizeHeaderKey 将标头名原地改写为传统拼写：首字母及破折号后的字母大写，其余小写。
//
// 如 content-length 改写为 Content-Length。
func NormalizeHeaderKey(b []byte) {
	upper := true
	for i, c := range b {
		switch {
		case c == '-':
			upper = true
			continue
		case upper:
			b[i] = bytesconv.ToUpperTable[c]
		default:
			b[i] = bytesconv.ToLowerTable[c]
		}
		upper = false
	}
}

// NextLine 返回 b 中第一行（不含行尾的 CRLF 或 LF）及剩余部分。
func NextLine(b []byte) ([]byte, []byte, error) {
	nNext := bytes.IndexByte(b, '\n')
	if nNext < 0 {
		return nil, nil, ErrNeedMore
	}
	n := nNext
	if n > 0 && b[n-1] == '\r' {
		n--
	}
	return b[:n], b[nNext+1:], nil
}
