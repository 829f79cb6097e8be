// Package network 定义响应编码器所依赖的传输层抽象。
//
// 编码器只通过 Writer 交付字节并通过 io.Closer 关闭连接。
// 传输器的实现见 network/netpoll 与 network/standard。
package network
