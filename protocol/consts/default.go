package consts

import "time"

const (
	// DefaultServerName 是 Server 标头的默认取值。
	DefaultServerName = "h1wire"

	// DefaultIdleTimeout 长连接闲置超过此时长后会被标记为需要关闭。
	DefaultIdleTimeout = 60 * time.Second

	// DefaultWriteTimeout 单次写入刷新的默认超时时间。
	DefaultWriteTimeout = 10 * time.Second

	// DefaultSessionQueueSize 会话操作队列的默认容量。
	DefaultSessionQueueSize = 64

	// DefaultAddr 示例服务默认监听的地址。
	DefaultAddr = ":8888"

	// DefaultNetwork 默认网络类型。
	DefaultNetwork = "tcp"

	// DefaultExitWaitTimeout 优雅退出的默认最长等待时间。
	DefaultExitWaitTimeout = 5 * time.Second
)
