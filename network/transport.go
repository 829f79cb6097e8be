package network

import "context"

// Transporter 表示网络传输层接口。
type Transporter interface {
	// ListenAndServe 监听并为每个连接调用 onData，直到传输器关闭。
	ListenAndServe(onData OnData) error

	// Close 立即关闭传输器。
	Close() error

	// Shutdown 平滑关闭传输器：不再接受新连接，等待存量连接结束直到 ctx 截止。
	Shutdown(ctx context.Context) error
}

// OnData 连接数据(如客户端请求数据)准备完毕时的回调函数。
type OnData func(ctx context.Context, conn Conn) error
