// Package bytestr 定义线路编码时常用的字节切片常量。
package bytestr

var (
	StrCRLF       = []byte("\r\n")
	StrColonSpace = []byte(": ")
	StrLastChunk  = []byte("0\r\n")
)
