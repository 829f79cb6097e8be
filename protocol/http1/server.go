package http1

import (
	"context"
	"errors"
	"io"
	"strconv"
	"sync"

	"github.com/favbox/h1wire/common/config"
	errs "github.com/favbox/h1wire/common/errors"
	"github.com/favbox/h1wire/common/hlog"
	"github.com/favbox/h1wire/network"
	"github.com/favbox/h1wire/protocol"
	"github.com/favbox/h1wire/protocol/consts"
	"github.com/favbox/h1wire/protocol/http1/keepalive"
	"github.com/favbox/h1wire/protocol/http1/req"
	"github.com/favbox/h1wire/protocol/http1/resp"
)

// Handler 处理一个请求，并通过 w 写出完整的响应。
//
// Handler 返回时响应应已写完；返回前未结束的响应会被当作错误，连接随之关闭。
type Handler func(ctx context.Context, w *ResponseWriter, r *protocol.RequestHeaders)

// ResponseWriter 绑定某个交换编号的会话写入器。
type ResponseWriter struct {
	s  *Session
	id int
	r  *protocol.RequestHeaders
}

// ID 返回交换编号。
func (w *ResponseWriter) ID() int { return w.id }

func (w *ResponseWriter) WriteHeaders(h protocol.ResponseHeaders, endStream, hasTrailers bool) *resp.Future {
	return w.s.WriteHeaders(w.id, h, endStream, hasTrailers)
}

func (w *ResponseWriter) WriteData(data []byte, endStream bool) *resp.Future {
	return w.s.WriteData(w.id, data, endStream)
}

func (w *ResponseWriter) WriteTrailers(trailers protocol.Header) *resp.Future {
	return w.s.WriteTrailers(w.id, trailers)
}

// WriteError 写出错误响应，连接将在写完后关闭。
func (w *ResponseWriter) WriteError(status int, message string, cause error) *resp.Future {
	return w.s.WriteErrorResponse(w.id, w.r, status, message, cause)
}

// Server 在一个连接上依次读取请求头、分配交换编号并调用 Handler。
//
// 请求正文不受支持：带正文的请求得到 501 错误响应。
type Server struct {
	Options *config.Options
	Handler Handler

	// MaxHeaderSize 请求头的最大字节数，默认 req.DefaultMaxHeaderSize。
	MaxHeaderSize int

	mu       sync.Mutex
	sessions map[*Session]struct{}
	draining bool
}

// NewServer 创建 HTTP/1.1 服务器。
func NewServer(options *config.Options, h Handler) *Server {
	return &Server{Options: options, Handler: h}
}

// Serve 提供连接服务，直到对端断开或连接被判定需要关闭。可直接作为 network.OnData 的实现。
func (s *Server) Serve(ctx context.Context, conn network.Conn) (err error) {
	cfg, err := resp.NewConfig(s.Options)
	if err != nil {
		return err
	}
	ka := keepalive.NewHandler(keepalive.Config{
		IdleTimeout: s.Options.IdleTimeout,
		MaxRequests: s.Options.MaxRequestsPerConnection,
		MaxAge:      s.Options.MaxConnectionAge,
	})
	defer ka.Destroy()
	if s.Options.WriteTimeout > 0 {
		_ = conn.SetWriteTimeout(s.Options.WriteTimeout)
	}
	if s.Options.IdleTimeout > 0 {
		_ = conn.SetReadTimeout(s.Options.IdleTimeout)
	}

	sess := NewSession(resp.NewEncoder(conn, ka, cfg), s.Options.SessionQueueSize)
	s.track(sess)
	defer s.untrack(sess)
	defer func() {
		if closeErr := sess.Close(); err == nil && closeErr != nil && !errors.Is(closeErr, errs.ErrConnectionClosed) {
			err = closeErr
		}
	}()

	for id := 1; ; id++ {
		r, err := req.ReadHeader(conn, s.MaxHeaderSize)
		_ = conn.Release()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			if errors.Is(err, errs.ErrTimeout) {
				hlog.SystemLogger().Debugf("连接闲置超时, remoteAddr=%s", conn.RemoteAddr())
				return nil
			}
			if errors.Is(err, req.ErrHeaderTooLarge) || errors.Is(err, req.ErrMalformed) {
				status := consts.StatusBadRequest
				if errors.Is(err, req.ErrHeaderTooLarge) {
					status = consts.StatusRequestHeaderFieldsTooLarge
				}
				_ = sess.WriteErrorResponse(id, nil, status, "", err).Wait(ctx)
			}
			return err
		}
		ka.OnRequest()
		if r.ConnectionClose() {
			ka.Destroy()
		}

		if hasBody(r) {
			_ = sess.WriteErrorResponse(id, r, consts.StatusNotImplemented, "请求正文不受支持", nil).Wait(ctx)
			return nil
		}

		s.Handler(ctx, &ResponseWriter{s: sess, id: id, r: r}, r)

		if !sess.IsResponseHeadersSent(id) {
			hlog.SystemLogger().Warnf("exchange=%d 的处理器未写出响应", id)
			_ = sess.WriteErrorResponse(id, r, consts.StatusInternalServerError, "", nil).Wait(ctx)
			return nil
		}
		if sess.IsResponseInFlight(id) {
			// 不再读取下一个请求，会话关闭时连接随之断开，对端据此得知响应不完整
			hlog.SystemLogger().Warnf("exchange=%d 的处理器返回时响应尚未结束，关闭连接", id)
			return nil
		}
		if sess.ConnectionCloseSent() {
			return nil
		}
		ka.OnRequestDone()
	}
}

// InitiateShutdown 让全部存量连接在各自的下一个最终响应后关闭，此后建立的连接同样如此。可重复调用。
func (s *Server) InitiateShutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draining = true
	for sess := range s.sessions {
		sess.InitiateShutdown()
	}
}

// ActiveSessions 返回正在服务的连接数。
func (s *Server) ActiveSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Server) track(sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sessions == nil {
		s.sessions = make(map[*Session]struct{})
	}
	s.sessions[sess] = struct{}{}
	if s.draining {
		sess.InitiateShutdown()
	}
}

func (s *Server) untrack(sess *Session) {
	s.mu.Lock()
	delete(s.sessions, sess)
	s.mu.Unlock()
}

func hasBody(r *protocol.RequestHeaders) bool {
	if r.Header.Has(consts.HeaderTransferEncoding) {
		return true
	}
	if v := r.Header.Peek(consts.HeaderContentLength); v != nil {
		n, err := strconv.Atoi(string(v))
		return err != nil || n > 0
	}
	return false
}
