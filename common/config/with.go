package config

import "time"

// WithServerHeader 设置是否自动追加 Server 标头。默认开启。
func WithServerHeader(enable bool) Option {
	return Option{F: func(o *Options) {
		o.EnableServerHeader = enable
	}}
}

// WithDateHeader 设置是否自动追加 Date 标头。默认开启。
func WithDateHeader(enable bool) Option {
	return Option{F: func(o *Options) {
		o.EnableDateHeader = enable
	}}
}

// WithServerName 设置 Server 标头的取值。
func WithServerName(name string) Option {
	return Option{F: func(o *Options) {
		o.ServerName = name
	}}
}

// WithHeaderNaming 设置标头命名策略："default" 或 "traditional"。
func WithHeaderNaming(naming string) Option {
	return Option{F: func(o *Options) {
		o.HeaderNaming = naming
	}}
}

// WithErrorBodyFormat 设置错误响应的正文格式："text" 或 "json"。
func WithErrorBodyFormat(format string) Option {
	return Option{F: func(o *Options) {
		o.ErrorBodyFormat = format
	}}
}

// WithIdleTimeout 设置长连接闲置的超时时间。默认值 1 分钟。
func WithIdleTimeout(t time.Duration) Option {
	return Option{F: func(o *Options) {
		o.IdleTimeout = t
	}}
}

// WithMaxRequestsPerConnection 设置单连接最大请求数，达到后最后一个响应会要求关闭连接。
func WithMaxRequestsPerConnection(n int) Option {
	return Option{F: func(o *Options) {
		o.MaxRequestsPerConnection = n
	}}
}

// WithMaxConnectionAge 设置连接的最长存活时间。
func WithMaxConnectionAge(t time.Duration) Option {
	return Option{F: func(o *Options) {
		o.MaxConnectionAge = t
	}}
}

// WithWriteTimeout 设置网络库写入数据超时时间。
//
// 当写超时时连接将关闭。
func WithWriteTimeout(t time.Duration) Option {
	return Option{F: func(o *Options) {
		o.WriteTimeout = t
	}}
}

// WithNetwork 设置网络协议。默认值："tcp"。
func WithNetwork(network string) Option {
	return Option{F: func(o *Options) {
		o.Network = network
	}}
}

// WithHostPorts 指定监听的地址和端口。默认值：":8888"。
func WithHostPorts(addr string) Option {
	return Option{F: func(o *Options) {
		o.Addr = addr
	}}
}

// WithReusePort 设置监听时是否开启 SO_REUSEPORT。
func WithReusePort(enable bool) Option {
	return Option{F: func(o *Options) {
		o.ReusePort = enable
	}}
}

// WithSessionQueueSize 设置每个会话的操作队列容量。
func WithSessionQueueSize(n int) Option {
	return Option{F: func(o *Options) {
		o.SessionQueueSize = n
	}}
}

// WithTransport 设置网络传输器。默认值："netpoll"。
func WithTransport(name string) Option {
	return Option{F: func(o *Options) {
		o.Transport = name
	}}
}

// WithExitWaitTime 设置优雅退出的最长等待时间。默认值：5 秒。
func WithExitWaitTime(t time.Duration) Option {
	return Option{F: func(o *Options) {
		o.ExitWaitTimeout = t
	}}
}
