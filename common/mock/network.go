package mock

import (
	"bytes"
	"io"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/cloudwego/netpoll"
	errs "github.com/favbox/h1wire/common/errors"
	"github.com/favbox/h1wire/common/utils"
	"github.com/favbox/h1wire/network"
)

var _ network.Conn = (*Conn)(nil)

// Conn 是基于 netpoll 缓冲区的模拟连接。
//
// 读取端回放构造时给定的原始请求，写入端记录已刷新到"线路"上的字节和关闭次数。
type Conn struct {
	readTimeout time.Duration
	zr          netpoll.Reader
	zw          netpoll.Writer

	mu       sync.Mutex
	out      *bytes.Buffer
	wroteLen int
	flushes  int
	closes   int
	flushErr error
}

// NewConn 创建指定原始请求字符串的连接。
func NewConn(source string) *Conn {
	out := &bytes.Buffer{}
	return &Conn{
		zr:  netpoll.NewReader(strings.NewReader(source)),
		zw:  netpoll.NewWriter(out),
		out: out,
	}
}

// NewBrokenConn 创建刷新总是失败的连接，模拟对端已断开。
func NewBrokenConn(source string) *Conn {
	c := NewConn(source)
	c.flushErr = errs.ErrConnectionClosed
	return c
}

// --- 实现 network.Reader ---

// Peek 在数据不足时立即返回 io.EOF，模拟对端已发完数据。
func (m *Conn) Peek(n int) ([]byte, error) {
	b, err := m.zr.Peek(n)
	if err != nil || len(b) != n {
		return nil, io.EOF
	}
	return b, nil
}

func (m *Conn) Skip(n int) error                       { return m.zr.Skip(n) }
func (m *Conn) Release() error                         { return nil }
func (m *Conn) Len() int                               { return m.zr.Len() }
func (m *Conn) ReadByte() (byte, error)                { return m.zr.ReadByte() }
func (m *Conn) ReadBinary(n int) (p []byte, err error) { return m.zr.ReadBinary(n) }

// --- 实现 network.Writer ---

func (m *Conn) Malloc(n int) (buf []byte, err error) {
	m.mu.Lock()
	m.wroteLen += n
	m.mu.Unlock()
	return m.zw.Malloc(n)
}

func (m *Conn) WriteBinary(b []byte) (n int, err error) {
	n, err = m.zw.WriteBinary(b)
	m.mu.Lock()
	m.wroteLen += n
	m.mu.Unlock()
	return n, err
}

// Flush 将缓冲数据写到记录区，连接已关闭或被设为故障时返回错误。
func (m *Conn) Flush() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closes > 0 || m.flushErr != nil {
		if m.flushErr != nil {
			return m.flushErr
		}
		return errs.ErrConnectionClosed
	}
	m.flushes++
	return m.zw.Flush()
}

// --- 实现 net.Conn ---

func (m *Conn) Read(b []byte) (n int, err error) {
	return netpoll.NewIOReader(m.zr).Read(b)
}

func (m *Conn) Write(b []byte) (n int, err error) {
	if n, err = m.WriteBinary(b); err != nil {
		return n, err
	}
	return n, m.Flush()
}

// Close 记录关闭次数，重复关闭不报错。
func (m *Conn) Close() error {
	m.mu.Lock()
	m.closes++
	m.mu.Unlock()
	return nil
}

func (m *Conn) LocalAddr() net.Addr  { return utils.NewNetAddr("tcp", "127.0.0.1:8888") }
func (m *Conn) RemoteAddr() net.Addr { return utils.NewNetAddr("tcp", "127.0.0.1:50000") }

func (m *Conn) SetDeadline(t time.Time) error {
	return m.SetReadDeadline(t)
}

func (m *Conn) SetReadDeadline(t time.Time) error {
	m.readTimeout = time.Until(t)
	return nil
}

func (m *Conn) SetWriteDeadline(time.Time) error { return nil }

func (m *Conn) SetReadTimeout(t time.Duration) error {
	m.readTimeout = t
	return nil
}

func (m *Conn) SetWriteTimeout(time.Duration) error { return nil }

// ReadTimeout 返回最近一次设置的读取超时。
func (m *Conn) ReadTimeout() time.Duration { return m.readTimeout }

// --- 观测 ---

// Flushed 返回已刷新到线路上的全部字节。
func (m *Conn) Flushed() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.out.String()
}

// WroteLen 返回写入缓冲区的字节数，含尚未刷新的部分。
func (m *Conn) WroteLen() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.wroteLen
}

// Flushes 返回成功刷新的次数。
func (m *Conn) Flushes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.flushes
}

// Closed 报告连接是否被关闭过。
func (m *Conn) Closed() bool {
	return m.CloseCount() > 0
}

// CloseCount 返回 Close 的调用次数。
func (m *Conn) CloseCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closes
}
