package bytesconv

import (
	"net/http"
	"sync"
	"time"
	"unsafe"

	"github.com/favbox/h1wire/network"
)

const (
	lowerHex       = "0123456789abcdef" // 小写的十六进制字符
	maxHexIntChars = 16                 // 64 位整数的十六进制最大长度
	toLower        = 'a' - 'A'
)

var hexIntBufPool sync.Pool

// ToLowerTable 和 ToUpperTable 为 ASCII 大小写转换表。
var (
	ToLowerTable [256]byte
	ToUpperTable [256]byte
)

func init() {
	for i := 0; i < 256; i++ {
		c := byte(i)
		ToLowerTable[i] = c
		ToUpperTable[i] = c
		if c >= 'A' && c <= 'Z' {
			ToLowerTable[i] = c + toLower
		}
		if c >= 'a' && c <= 'z' {
			ToUpperTable[i] = c - toLower
		}
	}
}

// LowercaseBytes 原地将 b 转为小写。
func LowercaseBytes(b []byte) {
	for i, n := 0, len(b); i < n; i++ {
		p := &b[i]
		*p = ToLowerTable[*p]
	}
}

// B2s 将字节切片转为字符串，且不分配内存。
//
// 注意：返回的字符串与 b 共享内存，b 被修改后字符串随之改变。
func B2s(b []byte) string {
	return unsafe.String(unsafe.SliceData(b), len(b))
}

// S2b 将字符串转为字节切片，且不分配内存。返回的切片禁止修改。
func S2b(s string) []byte {
	return unsafe.Slice(unsafe.StringData(s), len(s))
}

// AppendUint 向 dst 追加正整数 n 并返回。
func AppendUint(dst []byte, n int) []byte {
	if n < 0 {
		panic("BUG：int 必须为正整数")
	}

	var b [20]byte
	buf := b[:]
	i := len(buf)
	var q int
	for n >= 10 {
		i--
		q = n / 10
		buf[i] = '0' + byte(n-q*10)
		n = q
	}
	i--
	buf[i] = '0' + byte(n)

	dst = append(dst, buf[i:]...)
	return dst
}

// AppendHTTPDate 向 dst 追加 HTTP 兼容时间（IMF-fixdate）并返回。
func AppendHTTPDate(dst []byte, date time.Time) []byte {
	return date.UTC().AppendFormat(dst, http.TimeFormat)
}

// ParseHTTPDate 解析 b 中的 HTTP 兼容时间。
func ParseHTTPDate(b []byte) (time.Time, error) {
	return time.Parse(http.TimeFormat, B2s(b))
}

// ParseUintBuf 解析 b 开头的十进制整数，返回值及消耗的字节数。
func ParseUintBuf(b []byte) (v, n int, err error) {
	n = len(b)
	if n == 0 {
		return -1, 0, errEmptyInt
	}
	for i := 0; i < n; i++ {
		c := b[i]
		k := c - '0'
		if k > 9 {
			if i == 0 {
				return -1, i, errUnexpectedFirstChar
			}
			return v, i, nil
		}
		vNew := 10*v + int(k)
		// 测试溢出
		if vNew < v {
			return -1, i, errTooLongInt
		}
		v = vNew
	}
	return
}

// ParseUint 解析 b 中的十进制整数，不允许尾随字符。
func ParseUint(b []byte) (int, error) {
	v, n, err := ParseUintBuf(b)
	if err != nil {
		return -1, err
	}
	if n != len(b) {
		return -1, errUnexpectedTrailingChar
	}
	return v, nil
}

// WriteHexInt 向 w 写入十六进制整数值 n。
func WriteHexInt(w network.Writer, n int) error {
	if n < 0 {
		panic("BUG: int 必须为正整数")
	}

	v := hexIntBufPool.Get()
	if v == nil {
		v = make([]byte, maxHexIntChars+1)
	}
	buf := v.([]byte)

	i := len(buf) - 1
	for {
		buf[i] = lowerHex[n&0xf]
		n >>= 4
		if n == 0 {
			break
		}
		i--
	}
	safeBuf, err := w.Malloc(maxHexIntChars + 1 - i)
	copy(safeBuf, buf[i:])
	hexIntBufPool.Put(v)
	return err
}
