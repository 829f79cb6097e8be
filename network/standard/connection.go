package standard

import (
	"bufio"
	"errors"
	"io"
	"net"
	"syscall"
	"time"

	errs "github.com/favbox/h1wire/common/errors"
	"github.com/favbox/h1wire/common/hlog"
	"github.com/favbox/h1wire/network"
)

// 读缓冲的大小，同时是 Peek 一次能看到的最大字节数。
const defaultReadBufferSize = 16 * 1024

var (
	_ network.Conn                = (*Conn)(nil)
	_ network.ErrorNormalization  = (*Conn)(nil)
	_ network.HandleSpecificError = (*Conn)(nil)
)

// Conn 实现基于标准库 net 的网络连接。
//
// 读取经由 bufio 缓冲，写入先暂存在 network.NewWriter 的缓存节点中，Flush 时一次性写出。
type Conn struct {
	c net.Conn
	r *bufio.Reader
	w network.Writer

	readTimeout  time.Duration
	writeTimeout time.Duration
}

func newConn(c net.Conn, readBufferSize int) *Conn {
	if readBufferSize <= 0 {
		readBufferSize = defaultReadBufferSize
	}
	return &Conn{
		c: c,
		r: bufio.NewReaderSize(c, readBufferSize),
		w: network.NewWriter(c),
	}
}

// --- 实现 network.ErrorNormalization ---

// ToH1Error 将标准库的错误转为本库的错误。
func (c *Conn) ToH1Error(err error) error {
	if errors.Is(err, syscall.EPIPE) || errors.Is(err, syscall.ENOTCONN) || errors.Is(err, net.ErrClosed) {
		return errs.ErrConnectionClosed
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return errs.ErrTimeout
	}
	return err
}

// --- 实现 network.HandleSpecificError ---

// HandleSpecificError 判断特定错误是否需要忽略。
func (c *Conn) HandleSpecificError(err error, rip string) (needIgnore bool) {
	if errors.Is(err, errs.ErrConnectionClosed) || errors.Is(err, syscall.EPIPE) || errors.Is(err, syscall.ECONNRESET) {
		hlog.SystemLogger().Debugf("Go net library error=%s, remoteAddr=%s", err.Error(), rip)
		return true
	}
	return false
}

// --- 实现 network.Reader ---

// 缓冲区为空时才会真正读网络，此时按读超时设置截止时间。
func (c *Conn) armRead(n int) {
	if c.readTimeout > 0 && c.r.Buffered() < n {
		_ = c.c.SetReadDeadline(time.Now().Add(c.readTimeout))
	}
}

func (c *Conn) Len() int {
	return c.r.Buffered()
}

func (c *Conn) Peek(n int) ([]byte, error) {
	c.armRead(n)
	b, err := c.r.Peek(n)
	return b, c.normalizeReadErr(err)
}

func (c *Conn) Skip(n int) error {
	_, err := c.r.Discard(n)
	return c.normalizeReadErr(err)
}

func (c *Conn) ReadByte() (byte, error) {
	c.armRead(1)
	b, err := c.r.ReadByte()
	return b, c.normalizeReadErr(err)
}

func (c *Conn) ReadBinary(n int) ([]byte, error) {
	c.armRead(n)
	p := make([]byte, n)
	_, err := io.ReadFull(c.r, p)
	if err != nil {
		return nil, c.normalizeReadErr(err)
	}
	return p, nil
}

// Release 在 bufio 下无事可做，Peek 得到的切片在下次读取前有效。
func (c *Conn) Release() error {
	return nil
}

// 读取侧只统一超时，io.EOF 原样返回。
func (c *Conn) normalizeReadErr(err error) error {
	if err == nil || errors.Is(err, io.EOF) {
		return err
	}
	return c.ToH1Error(err)
}

// --- 实现 network.Writer ---

func (c *Conn) Malloc(n int) ([]byte, error) {
	return c.w.Malloc(n)
}

func (c *Conn) WriteBinary(b []byte) (int, error) {
	return c.w.WriteBinary(b)
}

func (c *Conn) Flush() error {
	if c.writeTimeout > 0 {
		_ = c.c.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	}
	return c.w.Flush()
}

// --- 实现 net.Conn ---

func (c *Conn) Read(b []byte) (int, error) {
	c.armRead(1)
	return c.r.Read(b)
}

func (c *Conn) Write(b []byte) (int, error) {
	if _, err := c.w.WriteBinary(b); err != nil {
		return 0, err
	}
	return len(b), c.Flush()
}

func (c *Conn) Close() error {
	return c.c.Close()
}

func (c *Conn) LocalAddr() net.Addr  { return c.c.LocalAddr() }
func (c *Conn) RemoteAddr() net.Addr { return c.c.RemoteAddr() }

func (c *Conn) SetDeadline(t time.Time) error      { return c.c.SetDeadline(t) }
func (c *Conn) SetReadDeadline(t time.Time) error  { return c.c.SetReadDeadline(t) }
func (c *Conn) SetWriteDeadline(t time.Time) error { return c.c.SetWriteDeadline(t) }

// SetReadTimeout 设置每次阻塞读取的超时时长，0 表示不限。
func (c *Conn) SetReadTimeout(t time.Duration) error {
	c.readTimeout = t
	if t == 0 {
		return c.c.SetReadDeadline(time.Time{})
	}
	return nil
}

// SetWriteTimeout 设置每次刷新的超时时长，0 表示不限。
func (c *Conn) SetWriteTimeout(t time.Duration) error {
	c.writeTimeout = t
	if t == 0 {
		return c.c.SetWriteDeadline(time.Time{})
	}
	return nil
}
