package netpoll

import (
	"context"
	"errors"
	"io"
	"net"
	"syscall"
	"testing"
	"time"

	"github.com/cloudwego/netpoll"
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
	const addr = "127.0.0.1:10103"
	opts := config.NewOptions([]config.Option{
		config.WithHostPorts(addr),
		config.WithServerHeader(false),
		config.WithDateHeader(false),
	})
	srv := http1.NewServer(opts, func(_ context.Context, w *http1.ResponseWriter, r *protocol.RequestHeaders) {
		w.WriteHeaders(protocol.NewResponseHeaders(consts.StatusOK, "content-length", "4"), false, false)
		w.WriteData([]byte("pong"), true)
	})
	transporter := NewTransporter(opts)
	go transporter.ListenAndServe(srv.Serve)
	defer transporter.Close()
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, addr, transporter.(*transport).Addr().String())

	conn, err := net.DialTimeout("tcp", addr, time.Second)
	require.Nil(t, err)
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(3 * time.Second))

	want := "HTTP/1.1 200 OK\r\ncontent-length: 4\r\n\r\npong"
	for i := 0; i < 2; i++ {
		_, err = conn.Write([]byte("GET /ping HTTP/1.1\r\nHost: localhost\r\n\r\n"))
		require.Nil(t, err)
		got := make([]byte, len(want))
		_, err = io.ReadFull(conn, got)
		require.Nil(t, err)
		assert.Equal(t, want, string(got))
	}
}

func TestTransportListenError(t *testing.T) {
	transporter := NewTransporter(config.NewOptions([]config.Option{config.WithNetwork("未指定网络类型")}))
	err := transporter.ListenAndServe(func(context.Context, network.Conn) error { return nil })
	assert.NotNil(t, err)
	assert.Nil(t, transporter.(*transport).Addr())
	assert.Nil(t, transporter.Close())
}

func TestErrorNormalization(t *testing.T) {
	c := &Conn{}
	assert.Equal(t, errs.ErrConnectionClosed, c.ToH1Error(netpoll.ErrConnClosed))
	assert.Equal(t, errs.ErrConnectionClosed, c.ToH1Error(syscall.EPIPE))
	assert.Equal(t, errs.ErrTimeout, c.ToH1Error(netpoll.ErrReadTimeout))
	other := errors.New("other")
	assert.Equal(t, other, c.ToH1Error(other))

	assert.Equal(t, io.EOF, normalizeErr(netpoll.ErrEOF))
	assert.Equal(t, errs.ErrTimeout, normalizeErr(netpoll.ErrReadTimeout))
	assert.Nil(t, normalizeErr(nil))

	assert.True(t, c.HandleSpecificError(syscall.ECONNRESET, "127.0.0.1:1"))
	assert.False(t, c.HandleSpecificError(other, "127.0.0.1:1"))
}
