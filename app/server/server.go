// Package server 组合网络传输器与 HTTP/1.1 连接驱动，提供运行和优雅退出。
package server

import (
	"context"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/favbox/h1wire/common/config"
	errs "github.com/favbox/h1wire/common/errors"
	"github.com/favbox/h1wire/common/hlog"
	"github.com/favbox/h1wire/network"
	"github.com/favbox/h1wire/network/netpoll"
	"github.com/favbox/h1wire/network/standard"
	"github.com/favbox/h1wire/protocol/http1"
)

const (
	statusInitialized uint32 = iota
	statusRunning
	statusShutdown
	statusClosed
)

var (
	errAlreadyRunning   = errs.NewPublic("服务器已在运行中")
	errStatusNotRunning = errs.NewPublic("服务器不在运行中")
)

// CtxCallback 是启动和退出钩子的函数签名。
type CtxCallback func(ctx context.Context)

// CtxErrCallback 是可中断启动的钩子函数签名。
type CtxErrCallback func(ctx context.Context) error

// Server 是 h1wire 的服务器。
//
// 组合了连接驱动 http1.Server、网络传输器和优雅退出函数。
type Server struct {
	*http1.Server

	transport network.Transporter
	status    uint32

	// OnRun 在开始监听前依次执行，任一钩子出错则放弃启动。
	OnRun []CtxErrCallback

	// OnShutdown 在优雅退出时并行执行。
	OnShutdown []CtxCallback

	// 用于接收信号实现优雅退出
	signalWaiter func(err chan error) error
}

// New 创建服务器，h 处理每一个请求。
func New(h http1.Handler, opts ...config.Option) *Server {
	options := config.NewOptions(opts)
	return &Server{
		Server:    http1.NewServer(options, h),
		transport: newTransporter(options),
	}
}

func newTransporter(o *config.Options) network.Transporter {
	if o.Transport == config.TransportStandard {
		return standard.NewTransporter(o)
	}
	return netpoll.NewTransporter(o)
}

// Run 执行启动钩子，然后由传输器监听连接并提供服务，直到传输器关闭。
func (s *Server) Run() (err error) {
	if !atomic.CompareAndSwapUint32(&s.status, statusInitialized, statusRunning) {
		return errAlreadyRunning
	}
	defer atomic.StoreUint32(&s.status, statusClosed)

	ctx := context.Background()
	for i := range s.OnRun {
		if err = s.OnRun[i](ctx); err != nil {
			return err
		}
	}

	hlog.SystemLogger().Infof("使用网络库=%s", s.Options.Transport)
	return s.transport.ListenAndServe(s.onData)
}

func (s *Server) onData(ctx context.Context, conn network.Conn) (err error) {
	defer func() {
		errProcess(conn, err)
	}()
	return s.Serve(ctx, conn)
}

func errProcess(conn network.Conn, err error) {
	if err == nil {
		return
	}

	rip := ""
	if addr := conn.RemoteAddr(); addr != nil {
		rip = addr.String()
	}

	// 处理特定错误
	if hse, ok := conn.(network.HandleSpecificError); ok {
		if hse.HandleSpecificError(err, rip) {
			return
		}
	}

	hlog.SystemLogger().Errorf(hlog.ConnErrorFormat, err.Error(), rip)
}

// Shutdown 优雅退出服务器，步骤如下：
//
//  1. 通知全部存量连接在下一个响应后关闭；
//  2. 并行触发 OnShutdown 钩子函数，直至完成或超时；
//  3. 关闭网络监听器，不再接受新连接；
//  4. 等待存量连接关闭，直到 ctx 截止。
func (s *Server) Shutdown(ctx context.Context) (err error) {
	if !atomic.CompareAndSwapUint32(&s.status, statusRunning, statusShutdown) {
		return errStatusNotRunning
	}

	s.Server.InitiateShutdown()

	ch := make(chan struct{})
	go s.executeOnShutdownHooks(ctx, ch)
	defer func() {
		// 确保钩子执行完成或超时
		select {
		case <-ctx.Done():
			hlog.SystemLogger().Infof("执行 OnShutdown 钩子超时：错误=%v", ctx.Err())
		case <-ch:
			hlog.SystemLogger().Info("执行 OnShutdown 钩子完成")
		}
	}()

	if err = s.transport.Shutdown(ctx); err != ctx.Err() {
		return err
	}
	return nil
}

func (s *Server) executeOnShutdownHooks(ctx context.Context, ch chan struct{}) {
	done := make(chan struct{}, len(s.OnShutdown))
	for i := range s.OnShutdown {
		go func(hook CtxCallback) {
			hook(ctx)
			done <- struct{}{}
		}(s.OnShutdown[i])
	}
	for range s.OnShutdown {
		<-done
	}
	close(ch)
}

// Close 立即关闭传输器。
func (s *Server) Close() error {
	return s.transport.Close()
}

// Spin 运行服务器直至捕获 os.Signal 或 Run 返回错误。
// 支持优雅退出。
func (s *Server) Spin() {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Run()
	}()

	signalWaiter := defaultSignalWaiter
	if s.signalWaiter != nil {
		signalWaiter = s.signalWaiter
	}

	if err := signalWaiter(errCh); err != nil {
		hlog.SystemLogger().Errorf("收到退出信号：错误=%v", err)
		if err = s.Close(); err != nil {
			hlog.SystemLogger().Errorf("退出错误：%v", err)
		}
		return
	}

	hlog.SystemLogger().Infof("开始优雅退出，最多等待 %d 秒...", s.Options.ExitWaitTimeout/time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), s.Options.ExitWaitTimeout)
	defer cancel()

	if err := s.Shutdown(ctx); err != nil {
		hlog.SystemLogger().Errorf("退出错误：%v", err)
	}
}

// SetCustomSignalWaiter 设置自定义的信号等待者。
// f 返回错误时服务器立即退出，否则优雅退出。
func (s *Server) SetCustomSignalWaiter(f func(err chan error) error) {
	s.signalWaiter = f
}

// 信号等待者的默认实现。
// SIGTERM 立即退出。
// SIGHUP|SIGINT 触发优雅退出。
func defaultSignalWaiter(errCh chan error) error {
	signalToNotify := []os.Signal{
		syscall.SIGINT,
		syscall.SIGHUP,
		syscall.SIGTERM,
	}
	if signal.Ignored(syscall.SIGHUP) {
		signalToNotify = []os.Signal{
			syscall.SIGINT,
			syscall.SIGTERM,
		}
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, signalToNotify...)
	defer signal.Stop(signals)

	select {
	case sig := <-signals:
		switch sig {
		case syscall.SIGTERM:
			// 强制退出
			return errs.NewPublic(sig.String())
		case syscall.SIGHUP, syscall.SIGINT:
			hlog.SystemLogger().Infof("收到退出信号：%s", sig)
			// 优雅退出
			return nil
		}
	case err := <-errCh:
		// 出现错误，立即退出
		return err
	}
	return nil
}
