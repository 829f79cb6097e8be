package network

import "net"

// NewListenConfig 返回监听配置。Windows 不支持 SO_REUSEPORT，reusePort 被忽略。
func NewListenConfig(reusePort bool) *net.ListenConfig {
	return &net.ListenConfig{}
}
