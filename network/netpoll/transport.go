package netpoll

import (
	"context"
	"io"
	"net"
	"sync"
	"time"

	"github.com/cloudwego/netpoll"
	"github.com/favbox/h1wire/common/config"
	"github.com/favbox/h1wire/common/hlog"
	"github.com/favbox/h1wire/network"
)

var _ network.Transporter = (*transport)(nil)

func init() {
	// 禁用 netpoll 的日志
	netpoll.SetLoggerOutput(io.Discard)
}

type transport struct {
	mu           sync.RWMutex
	network      string
	addr         string
	idleTimeout  time.Duration
	writeTimeout time.Duration
	listenConfig *net.ListenConfig
	listener     net.Listener
	eventLoop    netpoll.EventLoop
}

// ListenAndServe 绑定监听地址并持续服务，除非出现错误或传输器关闭。
func (t *transport) ListenAndServe(onData network.OnData) (err error) {
	_ = network.UnlinkUdsFile(t.network, t.addr)
	ln, err := t.listenConfig.Listen(context.Background(), t.network, t.addr)
	if err != nil {
		return err
	}

	opts := []netpoll.Option{
		netpoll.WithIdleTimeout(t.idleTimeout),
		netpoll.WithOnPrepare(func(conn netpoll.Connection) context.Context {
			if t.writeTimeout > 0 {
				_ = conn.SetWriteTimeout(t.writeTimeout)
			}
			return context.Background()
		}),
	}

	t.mu.Lock()
	t.listener = ln
	t.eventLoop, err = netpoll.NewEventLoop(func(ctx context.Context, connection netpoll.Connection) error {
		return onData(ctx, newConn(connection))
	}, opts...)
	el := t.eventLoop
	t.mu.Unlock()
	if err != nil {
		_ = ln.Close()
		return err
	}

	hlog.SystemLogger().Infof("HTTP服务器监听地址=%s", ln.Addr().String())
	return el.Serve(ln)
}

// Addr 返回实际监听的地址，尚未监听时返回 nil。
func (t *transport) Addr() net.Addr {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.listener == nil {
		return nil
	}
	return t.listener.Addr()
}

// Close 强制传输器立即关闭（无超时等待）。
func (t *transport) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 0)
	defer cancel()
	return t.Shutdown(ctx)
}

// Shutdown 停止监听器并优雅关闭，等待所有连接关闭，直到触达截止时间。
func (t *transport) Shutdown(ctx context.Context) error {
	defer func() {
		_ = network.UnlinkUdsFile(t.network, t.addr)
	}()
	t.mu.RLock()
	el := t.eventLoop
	t.mu.RUnlock()
	if el == nil {
		return nil
	}
	return el.Shutdown(ctx)
}

// NewTransporter 创建 netpoll 网络传输器。
func NewTransporter(options *config.Options) network.Transporter {
	return &transport{
		network:      options.Network,
		addr:         options.Addr,
		idleTimeout:  options.IdleTimeout,
		writeTimeout: options.WriteTimeout,
		listenConfig: network.NewListenConfig(options.ReusePort),
	}
}
