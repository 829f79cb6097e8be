// Package resp 实现服务端 HTTP/1.x 响应编码器。
//
// 每个连接一个 Encoder，它是该连接响应流唯一的写入者：把与协议无关的响应描述
// 翻译为线路标头块，选择分帧方式，决定响应后是否关闭连接，并保证响应按交换顺序写出。
//
// Encoder 不做任何加锁，必须由单个协程持有，见 http1.Session。
package resp

import (
	"io"

	"github.com/favbox/h1wire/common/config"
	errs "github.com/favbox/h1wire/common/errors"
	"github.com/favbox/h1wire/common/hlog"
	"github.com/favbox/h1wire/internal/bytesconv"
	"github.com/favbox/h1wire/internal/nocopy"
	"github.com/favbox/h1wire/network"
	"github.com/favbox/h1wire/protocol"
	"github.com/favbox/h1wire/protocol/consts"
	"github.com/favbox/h1wire/protocol/http1/ext"
	"github.com/favbox/h1wire/protocol/http1/keepalive"
)

// Conn 是编码器需要的传输能力：缓冲写入、刷新和关闭。
type Conn interface {
	network.Writer
	io.Closer
}

// Config 是编码器的配置。
type Config struct {
	Naming             HeaderNaming
	Date               DateSource
	ServerName         string
	EnableServerHeader bool
	EnableDateHeader   bool
	ErrorBodyFormat    string
}

// NewConfig 根据全局配置项生成编码器配置。
func NewConfig(o *config.Options) (Config, error) {
	naming, err := NamingByName(o.HeaderNaming)
	if err != nil {
		return Config{}, err
	}
	return Config{
		Naming:             naming,
		Date:               SystemDate(),
		ServerName:         o.ServerName,
		EnableServerHeader: o.EnableServerHeader,
		EnableDateHeader:   o.EnableDateHeader,
		ErrorBodyFormat:    o.ErrorBodyFormat,
	}, nil
}

// 进行中的（已写头、未结束的）最终响应。
type response struct {
	id         int
	framing    Framing
	length     int
	written    int
	closeAfter bool
	active     bool
}

// Encoder 是单个连接的响应编码器。交换编号从 1 开始，在连接内严格递增。
type Encoder struct {
	noCopy nocopy.NoCopy

	conn      Conn
	cfg       Config
	keepAlive keepalive.Policy

	lastWrittenID       int
	closedID            int
	shutdownRequested   bool
	connectionCloseSent bool
	failing             bool
	transportClosed     bool

	cur response
}

// NewEncoder 创建编码器。policy 为空时使用 keepalive.Noop。
func NewEncoder(conn Conn, policy keepalive.Policy, cfg Config) *Encoder {
	if policy == nil {
		policy = &keepalive.Noop{}
	}
	if cfg.Naming == nil {
		cfg.Naming = DefaultNaming()
	}
	if cfg.Date == nil {
		cfg.Date = SystemDate()
	}
	if cfg.ServerName == "" {
		cfg.ServerName = consts.DefaultServerName
	}
	return &Encoder{
		conn:      conn,
		cfg:       cfg,
		keepAlive: policy,
		closedID:  noCloseBoundary,
	}
}

// KeepAlive 返回该连接的保活策略。
func (e *Encoder) KeepAlive() keepalive.Policy {
	return e.keepAlive
}

// WriteHeaders 写出交换 id 的响应头。
//
// endStream 表示响应到此结束、没有正文；hasTrailers 表示正文之后会有挂车。
// 1xx 响应可在最终响应之前写出任意多次。
func (e *Encoder) WriteHeaders(id int, h protocol.ResponseHeaders, endStream, hasTrailers bool) *Future {
	if !e.canWrite(id) {
		return e.sessionClosed(id)
	}
	if err := e.checkOrder(id); err != nil {
		return failed(err)
	}
	b, err := e.translate(&h, endStream, hasTrailers)
	if err != nil {
		return failed(err)
	}
	if b.informational() {
		return e.writeInformational(id, b)
	}
	return e.writeFinalHeaders(id, b, endStream)
}

// writeInformational 写出 1xx 响应。它不占用交换的最终响应位置，lastWrittenID 保持不变。
func (e *Encoder) writeInformational(id int, b *HeaderBlock) *Future {
	return e.flush(id, e.writeBlock(b))
}

func (e *Encoder) writeFinalHeaders(id int, b *HeaderBlock, endStream bool) *Future {
	e.lastWrittenID = id
	closeAfter := e.stampConnection(id, b)
	if !endStream {
		selectFraming(b)
	}

	err := e.writeBlock(b)
	e.cur = response{
		id:         id,
		framing:    b.Framing,
		length:     b.ContentLength,
		closeAfter: closeAfter,
		active:     true,
	}
	f := e.flush(id, err)
	if endStream && f.IsSuccess() {
		e.finish(id)
	}
	return f
}

func (e *Encoder) writeBlock(b *HeaderBlock) error {
	if _, err := e.conn.WriteBinary(consts.StatusLine(b.Status)); err != nil {
		return err
	}
	if err := e.writeFields(&b.Header); err != nil {
		return err
	}
	return ext.WriteCRLF(e.conn)
}

func (e *Encoder) writeFields(h *protocol.Header) (err error) {
	h.VisitAll(func(k, v []byte) {
		if err != nil {
			return
		}
		name := e.cfg.Naming.NameFor(bytesconv.B2s(k))
		err = ext.WriteField(e.conn, bytesconv.S2b(name), v)
	})
	return err
}

// flush 把缓冲的字节交给对端。写入失败时连接在 id 处封闭，不做重试。
func (e *Encoder) flush(id int, err error) *Future {
	if err == nil {
		err = e.conn.Flush()
	}
	if err != nil {
		if en, ok := e.conn.(network.ErrorNormalization); ok {
			err = en.ToH1Error(err)
		}
		hlog.SystemLogger().Errorf(hlog.TransportErrorFormat, id, err)
		e.updateClosedID(id)
		e.closeTransport()
		return failed(errs.Transport(err))
	}
	return succeeded()
}

// finish 结束进行中的响应，带 connection: close 的响应结束后关闭连接。
func (e *Encoder) finish(id int) {
	closeAfter := e.cur.closeAfter
	e.cur = response{}
	if closeAfter {
		e.updateClosedID(id)
		e.closeTransport()
	}
}

// Close 立即关闭连接，之后的写入全部以 ErrSessionClosed 失败。
func (e *Encoder) Close() error {
	if e.transportClosed {
		return nil
	}
	e.transportClosed = true
	e.cur = response{}
	return e.conn.Close()
}
