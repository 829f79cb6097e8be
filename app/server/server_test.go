package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/favbox/h1wire/common/config"
	"github.com/favbox/h1wire/protocol"
	"github.com/favbox/h1wire/protocol/consts"
	"github.com/favbox/h1wire/protocol/http1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pathHandler(delay time.Duration) http1.Handler {
	return func(_ context.Context, w *http1.ResponseWriter, r *protocol.RequestHeaders) {
		time.Sleep(delay)
		w.WriteHeaders(protocol.NewResponseHeaders(consts.StatusOK, "content-type", consts.MIMETextPlainUTF8), false, false)
		w.WriteData([]byte(r.Path), true)
	}
}

func newTestServer(addr string, delay time.Duration) *Server {
	return New(pathHandler(delay),
		config.WithHostPorts(addr),
		config.WithTransport(config.TransportStandard),
	)
}

func TestServerRun(t *testing.T) {
	s := newTestServer("127.0.0.1:10110", 0)
	var ran int32
	s.OnRun = append(s.OnRun, func(context.Context) error {
		atomic.StoreInt32(&ran, 1)
		return nil
	})
	go s.Run()
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&ran))
	assert.Equal(t, errAlreadyRunning, s.Run())

	resp, err := http.Get("http://127.0.0.1:10110/hello")
	require.Nil(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "/hello", string(body))
	assert.Equal(t, consts.DefaultServerName, resp.Header.Get("Server"))
	assert.NotEmpty(t, resp.Header.Get("Date"))
	assert.Equal(t, []string{"chunked"}, resp.TransferEncoding)

	assert.Nil(t, s.Close())
	time.Sleep(50 * time.Millisecond)
	_, err = http.Get("http://127.0.0.1:10110/hello")
	assert.NotNil(t, err)
}

func TestServerOnRunError(t *testing.T) {
	s := newTestServer("127.0.0.1:10111", 0)
	boom := errors.New("boom")
	s.OnRun = append(s.OnRun, func(context.Context) error { return boom })
	assert.Equal(t, boom, s.Run())
	assert.Equal(t, errStatusNotRunning, s.Shutdown(context.Background()))
}

func TestServerGracefulShutdown(t *testing.T) {
	s := newTestServer("127.0.0.1:10112", 300*time.Millisecond)
	var hooks int32
	s.OnShutdown = append(s.OnShutdown,
		func(context.Context) { atomic.AddInt32(&hooks, 1) },
		func(context.Context) { atomic.AddInt32(&hooks, 1) },
	)
	go s.Run()
	time.Sleep(100 * time.Millisecond)

	type result struct {
		resp *http.Response
		body string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		resp, err := http.Get("http://127.0.0.1:10112/slow")
		if err != nil {
			ch <- result{err: err}
			return
		}
		b, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		ch <- result{resp: resp, body: string(b)}
	}()
	time.Sleep(100 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	start := time.Now()
	assert.Nil(t, s.Shutdown(ctx))
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hooks))

	r := <-ch
	require.Nil(t, r.err)
	assert.Equal(t, "/slow", r.body)
	// 排空期间的响应带上 connection: close
	assert.True(t, r.resp.Close)
}

func TestServerSpinCustomSignal(t *testing.T) {
	s := newTestServer("127.0.0.1:10113", 0)
	s.SetCustomSignalWaiter(func(errCh chan error) error {
		time.Sleep(100 * time.Millisecond)
		return errors.New("立即退出")
	})
	done := make(chan struct{})
	go func() {
		s.Spin()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Spin 未退出")
	}
	_, err := http.Get("http://127.0.0.1:10113/")
	assert.NotNil(t, err)
}
