package errors

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	ErrSessionClosed      = errors.New("会话已关闭")
	ErrTransportFailure   = errors.New("传输层写入失败")
	ErrInvalidHeader      = errors.New("非法的标头字段")
	ErrExchangeSuperseded = errors.New("交换已被后续响应取代")
	ErrResponseStarted    = errors.New("响应头已发送，无法再写入错误响应")
	ErrNoResponseInFlight = errors.New("该交换没有进行中的响应")
	ErrResponseInFlight   = errors.New("上一个交换的响应尚未结束")
	ErrConnectionClosed   = errors.New("连接已关闭")
	ErrTimeout            = errors.New("timeout")
)

type ErrorType uint64

// Error 表示一个带有错误类型和元信息的错误规范。
type Error struct {
	Err  error
	Type ErrorType
	Meta any
}

// 返回错误的消息字符串。
func (msg *Error) Error() string {
	return msg.Err.Error()
}

// JSON 返回可序列化的错误描述，Meta 为结构体时原样返回。
func (msg *Error) JSON() any {
	jsonData := make(map[string]any)
	if msg.Meta != nil {
		value := reflect.ValueOf(msg.Meta)
		switch value.Kind() {
		case reflect.Struct:
			return msg.Meta
		case reflect.Map:
			for _, key := range value.MapKeys() {
				jsonData[key.String()] = value.MapIndex(key).Interface()
			}
		default:
			jsonData["meta"] = msg.Meta
		}
	}
	if _, ok := jsonData["error"]; !ok {
		jsonData["error"] = msg.Error()
	}
	return jsonData
}

func (msg *Error) Unwrap() error {
	return msg.Err
}

func (msg *Error) IsType(flags ErrorType) bool {
	return (msg.Type & flags) > 0
}

func (msg *Error) SetType(flags ErrorType) *Error {
	msg.Type = flags
	return msg
}

func (msg *Error) SetMeta(data any) *Error {
	msg.Meta = data
	return msg
}

const (
	// ErrorTypeTransport 表示传输层失败，连接不可再用。
	ErrorTypeTransport ErrorType = 1 << iota
	// ErrorTypeProtocol 表示调用方违反了响应编码的协议约束。
	ErrorTypeProtocol
	// ErrorTypePrivate 表示一个私有的错误。
	ErrorTypePrivate
	// ErrorTypePublic 表示一个公开的错误。
	ErrorTypePublic
	// ErrorTypeAny 表示任何其他错误。
	ErrorTypeAny
)

var _ error = (*Error)(nil)

// New 新建一个指定错误和错误类型及元数据的自定义错误。
func New(err error, t ErrorType, meta any) *Error {
	return &Error{
		Err:  err,
		Type: t,
		Meta: meta,
	}
}

func NewPublic(err string) *Error {
	return New(errors.New(err), ErrorTypePublic, nil)
}

func NewPrivate(err string) *Error {
	return New(errors.New(err), ErrorTypePrivate, nil)
}

func Newf(t ErrorType, meta any, format string, v ...any) *Error {
	return New(fmt.Errorf(format, v...), t, meta)
}

func NewPublicf(format string, v ...any) *Error {
	return New(fmt.Errorf(format, v...), ErrorTypePublic, nil)
}

func NewPrivatef(format string, v ...any) *Error {
	return New(fmt.Errorf(format, v...), ErrorTypePrivate, nil)
}

// Transport 将底层写入错误包装为 ErrTransportFailure，errors.Is 对两者均成立。
func Transport(cause error) *Error {
	return New(fmt.Errorf("%w: %w", ErrTransportFailure, cause), ErrorTypeTransport, nil)
}

// Protocol 包装一个协议约束错误，并附带交换编号作为元信息。
func Protocol(err error, id int) *Error {
	return New(err, ErrorTypeProtocol, map[string]any{"exchange": id})
}
