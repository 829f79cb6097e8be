package consts

// 协议版本。响应状态行总是使用 HTTP11。
const (
	HTTP10 = "HTTP/1.0"
	HTTP11 = "HTTP/1.1"
)

// 标头名称均为小写规范形式，线路上的拼写由命名策略决定。
const (
	HeaderContentLength    = "content-length"
	HeaderTransferEncoding = "transfer-encoding"
	HeaderConnection       = "connection"
	HeaderServer           = "server"
	HeaderDate             = "date"
	HeaderContentType      = "content-type"
	HeaderTrailer          = "trailer"
	HeaderKeepAlive        = "keep-alive"
	HeaderUpgrade          = "upgrade"
)

// 标头取值。
const (
	HeaderValueClose     = "close"
	HeaderValueChunked   = "chunked"
	HeaderValueKeepAlive = "keep-alive"

	MIMETextPlainUTF8       = "text/plain; charset=utf-8"
	MIMEApplicationJSONUTF8 = "application/json; charset=utf-8"
)

// 请求方法。
const (
	MethodGet  = "GET"
	MethodHead = "HEAD"
	MethodPost = "POST"
)
