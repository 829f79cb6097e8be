package protocol

// ResponseHeaders 是与协议无关的响应描述：状态码和有序标头。
//
// 调用方持有该值，编码器只读取并复制到线路标头块中，从不修改调用方的副本。
type ResponseHeaders struct {
	Status int
	Header Header
}

// NewResponseHeaders 创建给定状态码与成对键值标头的响应描述。
func NewResponseHeaders(status int, kv ...string) ResponseHeaders {
	return ResponseHeaders{Status: status, Header: NewHeader(kv...)}
}
