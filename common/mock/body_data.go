package mock

import "fmt"

// CreateFixedBody 模拟创建从 0-bodySize 的定长数字正文。
func CreateFixedBody(bodySize int) []byte {
	b := make([]byte, 0, bodySize)
	for i := 0; i < bodySize; i++ {
		b = append(b, byte(i%10)+'0')
	}
	return b
}

// ChunkedBody 返回按给定块依次编码、并以结束块和挂车收尾的分块正文。
// trailers 为成对的 name、value。
func ChunkedBody(chunks []string, trailers ...string) string {
	var b []byte
	for _, c := range chunks {
		if len(c) == 0 {
			continue
		}
		b = fmt.Appendf(b, "%x\r\n%s\r\n", len(c), c)
	}
	b = append(b, "0\r\n"...)
	for i := 0; i+1 < len(trailers); i += 2 {
		b = fmt.Appendf(b, "%s: %s\r\n", trailers[i], trailers[i+1])
	}
	b = append(b, "\r\n"...)
	return string(b)
}
