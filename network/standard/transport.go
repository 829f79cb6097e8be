package standard

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/favbox/h1wire/common/config"
	"github.com/favbox/h1wire/common/hlog"
	"github.com/favbox/h1wire/network"
)

var _ network.Transporter = (*transport)(nil)

// 每个连接一个协程的传输器。
type transport struct {
	network      string
	addr         string
	writeTimeout time.Duration
	listenConfig *net.ListenConfig

	mu     sync.Mutex
	ln     net.Listener
	conns  map[*Conn]struct{}
	closed bool
	wg     sync.WaitGroup
}

func (t *transport) ListenAndServe(onData network.OnData) error {
	_ = network.UnlinkUdsFile(t.network, t.addr)
	ln, err := t.listenConfig.Listen(context.Background(), t.network, t.addr)
	if err != nil {
		return err
	}
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return ln.Close()
	}
	t.ln = ln
	t.mu.Unlock()

	hlog.SystemLogger().Infof("HTTP服务器监听地址=%s", ln.Addr().String())
	for {
		conn, err := ln.Accept()
		if err != nil {
			if t.isClosed() && errors.Is(err, net.ErrClosed) {
				return nil
			}
			hlog.SystemLogger().Errorf("接受连接出错：%v", err)
			return err
		}

		c := newConn(conn, 0)
		if t.writeTimeout > 0 {
			_ = c.SetWriteTimeout(t.writeTimeout)
		}
		if !t.track(c) {
			_ = c.Close()
			continue
		}
		go func() {
			defer t.untrack(c)
			_ = onData(context.Background(), c)
		}()
	}
}

func (t *transport) isClosed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

func (t *transport) track(c *Conn) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return false
	}
	t.conns[c] = struct{}{}
	t.wg.Add(1)
	return true
}

func (t *transport) untrack(c *Conn) {
	_ = c.Close()
	t.mu.Lock()
	delete(t.conns, c)
	t.mu.Unlock()
	t.wg.Done()
}

// Addr 返回实际监听的地址，尚未监听时返回 nil。
func (t *transport) Addr() net.Addr {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.ln == nil {
		return nil
	}
	return t.ln.Addr()
}

// stopAccepting 关闭监听器，之后接受的连接会被立即关闭。
func (t *transport) stopAccepting() {
	t.mu.Lock()
	t.closed = true
	if t.ln != nil {
		_ = t.ln.Close()
	}
	t.mu.Unlock()
}

// Close 关闭监听器和全部存量连接。
func (t *transport) Close() error {
	defer func() {
		_ = network.UnlinkUdsFile(t.network, t.addr)
	}()
	t.stopAccepting()
	t.mu.Lock()
	for c := range t.conns {
		_ = c.Close()
	}
	t.mu.Unlock()
	return nil
}

// Shutdown 关闭监听器，等待存量连接自行结束；ctx 截止时强制关闭剩余连接。
func (t *transport) Shutdown(ctx context.Context) error {
	t.stopAccepting()
	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		_ = network.UnlinkUdsFile(t.network, t.addr)
		return nil
	case <-ctx.Done():
		_ = t.Close()
		return ctx.Err()
	}
}

// NewTransporter 创建标准库网络传输器。
func NewTransporter(options *config.Options) network.Transporter {
	return &transport{
		network:      options.Network,
		addr:         options.Addr,
		writeTimeout: options.WriteTimeout,
		listenConfig: network.NewListenConfig(options.ReusePort),
		conns:        make(map[*Conn]struct{}),
	}
}
