//go:build !windows

package network

import (
	"net"
	"syscall"

	"golang.org/x/sys/unix"
)

// NewListenConfig 返回监听配置，reusePort 为真时为套接字开启 SO_REUSEPORT，
// 以便多个进程同时监听同一端口。
func NewListenConfig(reusePort bool) *net.ListenConfig {
	if !reusePort {
		return &net.ListenConfig{}
	}
	return &net.ListenConfig{
		Control: func(network, address string, c syscall.RawConn) error {
			var opErr error
			err := c.Control(func(fd uintptr) {
				opErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 1)
			})
			if err != nil {
				return err
			}
			return opErr
		},
	}
}
