package network

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

const size1K = 1024

func TestConvertNetworkWriter(t *testing.T) {
	iw := &mockIOWriter{}
	w := NewWriter(iw)
	nw, _ := w.(*networkWriter)

	// 测试内存分配
	buf, _ := w.Malloc(size1K)
	assert.Equal(t, len(buf), size1K)
	assert.Equal(t, len(nw.caches), 1)
	assert.Equal(t, size1K, nw.Buffered())
	err := w.Flush()
	assert.Nil(t, err)
	assert.Equal(t, size1K, iw.WriteNum)
	assert.Equal(t, len(nw.caches), 0)
	assert.Equal(t, 0, nw.Buffered())

	// 小切片拷贝进可写节点
	w.WriteBinary([]byte("HTTP/1.1 200 OK\r\n"))
	w.WriteBinary([]byte("\r\n"))
	assert.Equal(t, len(nw.caches), 1)
	assert.False(t, nw.caches[0].readOnly)

	// 大切片直接引用
	b := make([]byte, size1K*4)
	w.WriteBinary(b)
	assert.Equal(t, len(nw.caches), 2)
	assert.True(t, nw.caches[1].readOnly)
	assert.Equal(t, 19+size1K*4, nw.Buffered())
	assert.Nil(t, w.Flush())
	assert.Equal(t, size1K+19+size1K*4, iw.WriteNum)
}

func TestNetworkWriterFlushError(t *testing.T) {
	iw := &mockIOWriter{err: errors.New("broken pipe")}
	w := NewWriter(iw)
	nw, _ := w.(*networkWriter)

	w.WriteBinary([]byte("0\r\n\r\n"))
	assert.NotNil(t, w.Flush())
	// 出错后缓存同样被释放
	assert.Equal(t, 0, len(nw.caches))
	assert.Equal(t, 0, nw.Buffered())
}

type mockIOWriter struct {
	WriteNum int
	err      error
}

// 记录已写入字节切片的总长度，并返回当前写入切片的长度。
func (iw *mockIOWriter) Write(p []byte) (n int, err error) {
	if iw.err != nil {
		return 0, iw.err
	}
	iw.WriteNum += len(p)
	return len(p), nil
}
