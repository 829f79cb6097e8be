package config

import (
	"time"

	"github.com/favbox/h1wire/protocol/consts"
)

// 标头命名策略的名称。
const (
	HeaderNamingDefault     = "default"
	HeaderNamingTraditional = "traditional"
)

// 网络传输器的名称。
const (
	TransportNetpoll  = "netpoll"
	TransportStandard = "standard"
)

// 错误响应正文的格式。
const (
	ErrorBodyText = "text"
	ErrorBodyJSON = "json"
)

// Option 是用于配置 Options 唯一结构体。
type Option struct {
	F func(o *Options)
}

// Options 是配置项的结构体。
type Options struct {
	// EnableServerHeader 调用方未提供 Server 标头时自动追加，默认开启。
	EnableServerHeader bool

	// EnableDateHeader 调用方未提供 Date 标头时自动追加，默认开启。
	EnableDateHeader bool

	// ServerName 是自动追加的 Server 标头取值，默认 "h1wire"。
	ServerName string

	// HeaderNaming 线路上的标头名拼写，可选 "default"（小写原样）和 "traditional"（如 Content-Length）。
	HeaderNaming string

	// ErrorBodyFormat 错误响应的正文格式，可选 "text" 和 "json"，默认 "text"。
	ErrorBodyFormat string

	// IdleTimeout 长连接的闲置超时，超时后下一个响应会带上 connection: close。默认 1 分钟，0 代表永不超时。
	IdleTimeout time.Duration

	// MaxRequestsPerConnection 单连接处理的最大请求数，默认 0 即不限制。
	MaxRequestsPerConnection int

	// MaxConnectionAge 连接的最长存活时间，默认 0 即不限制。
	MaxConnectionAge time.Duration

	// WriteTimeout 是网络库写入的超时时间，默认 10 秒。
	WriteTimeout time.Duration

	Network          string // 网络协议，可选 "tcp", "unix"(unix domain socket)，默认 "tcp"
	Addr             string // 监听地址，默认 ":8888"
	ReusePort        bool   // 监听时是否设置 SO_REUSEPORT，默认否
	SessionQueueSize int    // 每个会话的操作队列容量，默认 64

	// Transport 网络传输器，可选 "netpoll" 和 "standard"（标准库 net），默认 "netpoll"。
	Transport string

	// ExitWaitTimeout 优雅退出时等待存量连接写完响应的最长时间，默认 5 秒。
	ExitWaitTimeout time.Duration
}

// Apply 将指定的一组配置方法 opts 应用到配置项上。
func (o *Options) Apply(opts []Option) {
	for _, opt := range opts {
		opt.F(o)
	}
}

// NewOptions 创建基于给定配置函数的配置项。
func NewOptions(opts []Option) *Options {
	options := &Options{
		EnableServerHeader: true,
		EnableDateHeader:   true,
		ServerName:         consts.DefaultServerName,
		HeaderNaming:       HeaderNamingDefault,
		ErrorBodyFormat:    ErrorBodyText,
		IdleTimeout:        consts.DefaultIdleTimeout,
		WriteTimeout:       consts.DefaultWriteTimeout,
		Network:            consts.DefaultNetwork,
		Addr:               consts.DefaultAddr,
		SessionQueueSize:   consts.DefaultSessionQueueSize,
		Transport:          TransportNetpoll,
		ExitWaitTimeout:    consts.DefaultExitWaitTimeout,
	}
	options.Apply(opts)
	return options
}
