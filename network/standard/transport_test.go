package standard

import (
	"context"
	"errors"
	"io"
	"net"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/favbox/h1wire/common/config"
	errs "github.com/favbox/h1wire/common/errors"
	"github.com/favbox/h1wire/network"
	"github.com/favbox/h1wire/protocol"
	"github.com/favbox/h1wire/protocol/consts"
	"github.com/favbox/h1wire/protocol/http1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransportServesHTTP1(t *testing.T) {
	const addr = "127.0.0.1:10104"
	opts := config.NewOptions([]config.Option{
		config.WithHostPorts(addr),
		config.WithServerHeader(false),
		config.WithDateHeader(false),
		config.WithTransport(config.TransportStandard),
	})
	srv := http1.NewServer(opts, func(_ context.Context, w *http1.ResponseWriter, r *protocol.RequestHeaders) {
		w.WriteHeaders(protocol.NewResponseHeaders(consts.StatusOK), false, false)
		w.WriteData([]byte(r.Path), true)
	})
	transporter := NewTransporter(opts)
	errCh := make(chan error, 1)
	go func() { errCh <- transporter.ListenAndServe(srv.Serve) }()
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, addr, transporter.(*transport).Addr().String())

	conn, err := net.DialTimeout("tcp", addr, time.Second)
	require.Nil(t, err)
	_ = conn.SetDeadline(time.Now().Add(3 * time.Second))

	_, err = conn.Write([]byte("GET /abc HTTP/1.1\r\n\r\n"))
	require.Nil(t, err)
	want := "HTTP/1.1 200 OK\r\ntransfer-encoding: chunked\r\n\r\n4\r\n/abc\r\n0\r\n\r\n"
	got := make([]byte, len(want))
	_, err = io.ReadFull(conn, got)
	require.Nil(t, err)
	assert.Equal(t, want, string(got))

	// 客户端断开后连接协程退出，Shutdown 无需等到截止时间
	require.Nil(t, conn.Close())
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	assert.Nil(t, transporter.Shutdown(ctx))
	assert.Nil(t, <-errCh)
}

func TestTransportShutdownDeadline(t *testing.T) {
	const addr = "127.0.0.1:10105"
	opts := config.NewOptions([]config.Option{config.WithHostPorts(addr)})
	transporter := NewTransporter(opts)
	served := make(chan struct{})
	go transporter.ListenAndServe(func(ctx context.Context, c network.Conn) error {
		close(served)
		_, err := c.Peek(1)
		return err
	})
	time.Sleep(100 * time.Millisecond)

	conn, err := net.DialTimeout("tcp", addr, time.Second)
	require.Nil(t, err)
	defer conn.Close()
	<-served

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.Equal(t, context.DeadlineExceeded, transporter.Shutdown(ctx))
}

func TestTransportListenError(t *testing.T) {
	transporter := NewTransporter(config.NewOptions([]config.Option{config.WithNetwork("未指定网络类型")}))
	err := transporter.ListenAndServe(func(context.Context, network.Conn) error { return nil })
	assert.NotNil(t, err)
	assert.Nil(t, transporter.Close())
}

func TestConnReadWrite(t *testing.T) {
	server, client := net.Pipe()
	c := newConn(server, 0)
	defer c.Close()

	go func() {
		_, _ = client.Write([]byte("GET / HTTP/1.1\r\n\r\n"))
	}()
	b, err := c.Peek(3)
	require.Nil(t, err)
	assert.Equal(t, "GET", string(b))
	require.Nil(t, c.Skip(4))
	p, err := c.ReadBinary(1)
	require.Nil(t, err)
	assert.Equal(t, "/", string(p))
	by, err := c.ReadByte()
	require.Nil(t, err)
	assert.Equal(t, byte(' '), by)
	assert.Equal(t, len("HTTP/1.1\r\n\r\n"), c.Len())
	assert.Nil(t, c.Release())

	done := make(chan string)
	go func() {
		buf := make([]byte, 5)
		_, _ = io.ReadFull(client, buf)
		done <- string(buf)
	}()
	_, _ = c.WriteBinary([]byte("he"))
	buf, _ := c.Malloc(3)
	copy(buf, "llo")
	require.Nil(t, c.Flush())
	assert.Equal(t, "hello", <-done)
}

func TestConnReadTimeout(t *testing.T) {
	server, client := net.Pipe()
	defer client.Close()
	c := newConn(server, 0)
	defer c.Close()

	require.Nil(t, c.SetReadTimeout(20*time.Millisecond))
	_, err := c.Peek(1)
	assert.Equal(t, errs.ErrTimeout, err)

	require.Nil(t, c.SetReadTimeout(0))
	require.Nil(t, client.Close())
	_, err = c.Peek(1)
	assert.Equal(t, io.EOF, err)
}

func TestConnErrorNormalization(t *testing.T) {
	c := &Conn{}
	assert.Equal(t, errs.ErrConnectionClosed, c.ToH1Error(syscall.EPIPE))
	assert.Equal(t, errs.ErrConnectionClosed, c.ToH1Error(net.ErrClosed))
	assert.Equal(t, errs.ErrTimeout, c.ToH1Error(os.ErrDeadlineExceeded))
	other := errors.New("other")
	assert.Equal(t, other, c.ToH1Error(other))

	assert.True(t, c.HandleSpecificError(syscall.ECONNRESET, "127.0.0.1:1"))
	assert.False(t, c.HandleSpecificError(other, "127.0.0.1:1"))
}
