package network

import (
	"io"
	"sync"

	"github.com/bytedance/gopkg/lang/mcache"
)

const size4K = 4 * 1024

// 表示一个写入器的缓存节点。
type node struct {
	data     []byte
	readOnly bool
}

var nodePool = sync.Pool{
	New: func() any {
		return &node{}
	},
}

// 带缓存节点的写入器。
//
// 一条响应（状态行、标头块、正文分块）先按节点暂存，Flush 时一次性交付给底层 io.Writer。
type networkWriter struct {
	caches   []*node
	buffered int
	w        io.Writer
}

func (w *networkWriter) Malloc(length int) (buf []byte, err error) {
	w.buffered += length

	idx := len(w.caches)
	if idx > 0 {
		idx -= 1
		inUse := len(w.caches[idx].data)
		// 末尾节点可写且有余量，则原地扩展
		if !w.caches[idx].readOnly && cap(w.caches[idx].data)-inUse >= length {
			end := inUse + length
			w.caches[idx].data = w.caches[idx].data[:end]
			return w.caches[idx].data[inUse:end], nil
		}
	}

	buf = mcache.Malloc(length)
	n := nodePool.Get().(*node)
	n.data = buf
	w.caches = append(w.caches, n)
	return
}

// WriteBinary 写入数据至缓存。小于 4K 的切片会被拷贝，大切片则直接引用，刷新前不得修改。
func (w *networkWriter) WriteBinary(b []byte) (length int, err error) {
	length = len(b)

	if length < size4K {
		buf, _ := w.Malloc(length)
		copy(buf, b)
		return
	}

	w.buffered += length
	n := nodePool.Get().(*node)
	n.readOnly = true
	n.data = b
	w.caches = append(w.caches, n)
	return
}

// Flush 将所有缓存节点的数据按序写入底层数据流。
func (w *networkWriter) Flush() (err error) {
	for _, n := range w.caches {
		_, err = w.w.Write(n.data)
		if err != nil {
			break
		}
	}
	// 出错时也丢弃剩余缓存，半截响应不可重发。
	w.release()
	return
}

// Buffered 返回尚未刷新的字节数。
func (w *networkWriter) Buffered() int {
	return w.buffered
}

func (w *networkWriter) release() {
	for _, n := range w.caches {
		if !n.readOnly {
			mcache.Free(n.data)
		}
		n.data = nil
		n.readOnly = false
		nodePool.Put(n)
	}
	w.caches = w.caches[:0]
	w.buffered = 0
}

// NewWriter 将 io.Writer 转为缓冲写入器。
func NewWriter(w io.Writer) Writer {
	return &networkWriter{
		w: w,
	}
}
