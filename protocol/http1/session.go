package http1

import (
	"sync"

	errs "github.com/favbox/h1wire/common/errors"
	"github.com/favbox/h1wire/internal/nocopy"
	"github.com/favbox/h1wire/protocol"
	"github.com/favbox/h1wire/protocol/http1/keepalive"
	"github.com/favbox/h1wire/protocol/http1/resp"
)

type task func(e *resp.Encoder)

// Session 以消息传递的方式独占一个连接的响应编码器。
//
// 编码器只在会话协程中运行；各方法把操作投递到队列后立即返回 *resp.Future，
// 操作按投递顺序串行执行。可在任意协程中调用。
type Session struct {
	noCopy nocopy.NoCopy

	enc  *resp.Encoder
	ops  chan task
	done chan struct{}

	mu       sync.RWMutex
	closed   bool
	closeErr error
}

// NewSession 创建会话并启动会话协程。queueSize 为操作队列容量。
func NewSession(enc *resp.Encoder, queueSize int) *Session {
	if queueSize < 0 {
		queueSize = 0
	}
	s := &Session{
		enc:  enc,
		ops:  make(chan task, queueSize),
		done: make(chan struct{}),
	}
	go s.loop()
	return s
}

func (s *Session) loop() {
	for t := range s.ops {
		t(s.enc)
	}
	s.closeErr = s.enc.Close()
	close(s.done)
}

// exec 投递一个操作，会话已关闭时返回 false。
func (s *Session) exec(t task) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return false
	}
	s.ops <- t
	return true
}

func (s *Session) submit(fn func(e *resp.Encoder) *resp.Future) *resp.Future {
	f := resp.NewFuture()
	ok := s.exec(func(e *resp.Encoder) {
		fn(e).AddListener(func(r *resp.Future) {
			f.Complete(r.Err())
		})
	})
	if !ok {
		f.Complete(errs.New(errs.ErrSessionClosed, errs.ErrorTypeProtocol, nil))
	}
	return f
}

// WriteHeaders 见 resp.Encoder.WriteHeaders。
func (s *Session) WriteHeaders(id int, h protocol.ResponseHeaders, endStream, hasTrailers bool) *resp.Future {
	return s.submit(func(e *resp.Encoder) *resp.Future {
		return e.WriteHeaders(id, h, endStream, hasTrailers)
	})
}

// WriteData 见 resp.Encoder.WriteData。data 在 Future 完成前不得修改。
func (s *Session) WriteData(id int, data []byte, endStream bool) *resp.Future {
	return s.submit(func(e *resp.Encoder) *resp.Future {
		return e.WriteData(id, data, endStream)
	})
}

// WriteTrailers 见 resp.Encoder.WriteTrailers。
func (s *Session) WriteTrailers(id int, trailers protocol.Header) *resp.Future {
	return s.submit(func(e *resp.Encoder) *resp.Future {
		return e.WriteTrailers(id, trailers)
	})
}

// WriteErrorResponse 见 resp.Encoder.WriteErrorResponse。
func (s *Session) WriteErrorResponse(id int, req *protocol.RequestHeaders, status int, message string, cause error) *resp.Future {
	return s.submit(func(e *resp.Encoder) *resp.Future {
		return e.WriteErrorResponse(id, req, status, message, cause)
	})
}

// InitiateShutdown 请求在下一个最终响应后关闭连接。可重复调用。
func (s *Session) InitiateShutdown() {
	s.exec(func(e *resp.Encoder) { e.InitiateShutdown() })
}

// IsResponseHeadersSent 在会话协程中查询 id 的最终响应头是否已发送，会阻塞到排在前面的操作执行完毕。
func (s *Session) IsResponseHeadersSent(id int) bool {
	return s.query(func(e *resp.Encoder) bool { return e.IsResponseHeadersSent(id) })
}

// IsResponseInFlight 报告 id 的响应是否已开始但尚未结束，语义同 IsResponseHeadersSent。
func (s *Session) IsResponseInFlight(id int) bool {
	return s.query(func(e *resp.Encoder) bool { return e.IsResponseInFlight(id) })
}

// ConnectionCloseSent 报告是否已发出 connection: close，语义同 IsResponseHeadersSent。
func (s *Session) ConnectionCloseSent() bool {
	return s.query((*resp.Encoder).ConnectionCloseSent)
}

func (s *Session) query(q func(e *resp.Encoder) bool) bool {
	reply := make(chan bool, 1)
	if s.exec(func(e *resp.Encoder) { reply <- q(e) }) {
		return <-reply
	}
	// 会话协程已退出或即将退出，等它结束后编码器不再有其他持有者
	<-s.done
	return q(s.enc)
}

// KeepAlive 返回连接的保活策略，策略本身是并发安全的。
func (s *Session) KeepAlive() keepalive.Policy {
	return s.enc.KeepAlive()
}

// Done 返回会话协程退出时关闭的通道。
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Close 停止接收新操作，执行完已排队的操作后关闭连接。可重复调用。
func (s *Session) Close() error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.ops)
	}
	s.mu.Unlock()
	<-s.done
	return s.closeErr
}
