package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// EnvPrefix 是环境变量配置项的前缀，如 H1WIRE_IDLE_TIMEOUT。
const EnvPrefix = "H1WIRE_"

// File 是 TOML 配置文件的结构。未出现的字段保持默认值。
type File struct {
	Response  ResponseSection  `toml:"response"`
	KeepAlive KeepAliveSection `toml:"keepalive"`
	Server    ServerSection    `toml:"server"`
}

type ResponseSection struct {
	EnableServerHeader *bool   `toml:"enable_server_header,omitempty"`
	EnableDateHeader   *bool   `toml:"enable_date_header,omitempty"`
	ServerName         *string `toml:"server_name,omitempty"`
	HeaderNaming       *string `toml:"header_naming,omitempty"`
	ErrorBodyFormat    *string `toml:"error_body_format,omitempty"`
}

type KeepAliveSection struct {
	IdleTimeout *string `toml:"idle_timeout,omitempty"` // 如 "60s"
	MaxRequests *int    `toml:"max_requests,omitempty"`
	MaxAge      *string `toml:"max_age,omitempty"`
}

type ServerSection struct {
	Network          *string `toml:"network,omitempty"`
	Addr             *string `toml:"addr,omitempty"`
	ReusePort        *bool   `toml:"reuse_port,omitempty"`
	WriteTimeout     *string `toml:"write_timeout,omitempty"`
	SessionQueueSize *int    `toml:"session_queue_size,omitempty"`
	Transport        *string `toml:"transport,omitempty"`
	ExitWaitTimeout  *string `toml:"exit_wait_timeout,omitempty"`
}

// LoadFile 读取 TOML 配置文件，返回与其内容等价的配置函数。
func LoadFile(path string) ([]Option, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件 %s 失败: %w", path, err)
	}
	return ParseTOML(data)
}

// ParseTOML 解析 TOML 配置内容。
func ParseTOML(data []byte) ([]Option, error) {
	var f File
	md, err := toml.Decode(string(data), &f)
	if err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("未知的配置项: %v", undecoded)
	}
	return f.options()
}

func (f *File) options() ([]Option, error) {
	var opts []Option
	r, k, s := f.Response, f.KeepAlive, f.Server

	if r.EnableServerHeader != nil {
		opts = append(opts, WithServerHeader(*r.EnableServerHeader))
	}
	if r.EnableDateHeader != nil {
		opts = append(opts, WithDateHeader(*r.EnableDateHeader))
	}
	if r.ServerName != nil {
		opts = append(opts, WithServerName(*r.ServerName))
	}
	if r.HeaderNaming != nil {
		if err := checkOneOf("response.header_naming", *r.HeaderNaming, HeaderNamingDefault, HeaderNamingTraditional); err != nil {
			return nil, err
		}
		opts = append(opts, WithHeaderNaming(*r.HeaderNaming))
	}
	if r.ErrorBodyFormat != nil {
		if err := checkOneOf("response.error_body_format", *r.ErrorBodyFormat, ErrorBodyText, ErrorBodyJSON); err != nil {
			return nil, err
		}
		opts = append(opts, WithErrorBodyFormat(*r.ErrorBodyFormat))
	}

	durations := []struct {
		name string
		v    *string
		with func(time.Duration) Option
	}{
		{"keepalive.idle_timeout", k.IdleTimeout, WithIdleTimeout},
		{"keepalive.max_age", k.MaxAge, WithMaxConnectionAge},
		{"server.write_timeout", s.WriteTimeout, WithWriteTimeout},
		{"server.exit_wait_timeout", s.ExitWaitTimeout, WithExitWaitTime},
	}
	for _, d := range durations {
		if d.v == nil {
			continue
		}
		v, err := parseDuration(d.name, *d.v)
		if err != nil {
			return nil, err
		}
		opts = append(opts, d.with(v))
	}

	if k.MaxRequests != nil {
		opts = append(opts, WithMaxRequestsPerConnection(*k.MaxRequests))
	}
	if s.Network != nil {
		opts = append(opts, WithNetwork(*s.Network))
	}
	if s.Addr != nil {
		opts = append(opts, WithHostPorts(*s.Addr))
	}
	if s.ReusePort != nil {
		opts = append(opts, WithReusePort(*s.ReusePort))
	}
	if s.SessionQueueSize != nil {
		opts = append(opts, WithSessionQueueSize(*s.SessionQueueSize))
	}
	if s.Transport != nil {
		if err := checkOneOf("server.transport", *s.Transport, TransportNetpoll, TransportStandard); err != nil {
			return nil, err
		}
		opts = append(opts, WithTransport(*s.Transport))
	}
	return opts, nil
}

// LoadEnv 先用 godotenv 加载给定的 .env 文件（不存在的文件被跳过，不覆盖已有变量），
// 再把 H1WIRE_* 环境变量转换为配置函数。
func LoadEnv(files ...string) ([]Option, error) {
	var existing []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) > 0 {
		if err := godotenv.Load(existing...); err != nil {
			return nil, fmt.Errorf("加载环境变量文件失败: %w", err)
		}
	}

	var opts []Option
	for _, e := range envOptions {
		raw, ok := os.LookupEnv(EnvPrefix + e.key)
		if !ok || raw == "" {
			continue
		}
		opt, err := e.parse(raw)
		if err != nil {
			return nil, fmt.Errorf("环境变量 %s%s 取值无效: %w", EnvPrefix, e.key, err)
		}
		opts = append(opts, opt)
	}
	return opts, nil
}

var envOptions = []struct {
	key   string
	parse func(string) (Option, error)
}{
	{"ENABLE_SERVER_HEADER", boolEnv(WithServerHeader)},
	{"ENABLE_DATE_HEADER", boolEnv(WithDateHeader)},
	{"SERVER_NAME", stringEnv(WithServerName)},
	{"HEADER_NAMING", func(s string) (Option, error) {
		return WithHeaderNaming(s), checkOneOf("HEADER_NAMING", s, HeaderNamingDefault, HeaderNamingTraditional)
	}},
	{"ERROR_BODY_FORMAT", func(s string) (Option, error) {
		return WithErrorBodyFormat(s), checkOneOf("ERROR_BODY_FORMAT", s, ErrorBodyText, ErrorBodyJSON)
	}},
	{"IDLE_TIMEOUT", durationEnv(WithIdleTimeout)},
	{"MAX_REQUESTS", intEnv(WithMaxRequestsPerConnection)},
	{"MAX_CONNECTION_AGE", durationEnv(WithMaxConnectionAge)},
	{"WRITE_TIMEOUT", durationEnv(WithWriteTimeout)},
	{"NETWORK", stringEnv(WithNetwork)},
	{"ADDR", stringEnv(WithHostPorts)},
	{"REUSE_PORT", boolEnv(WithReusePort)},
	{"SESSION_QUEUE_SIZE", intEnv(WithSessionQueueSize)},
	{"TRANSPORT", func(s string) (Option, error) {
		return WithTransport(s), checkOneOf("TRANSPORT", s, TransportNetpoll, TransportStandard)
	}},
	{"EXIT_WAIT_TIMEOUT", durationEnv(WithExitWaitTime)},
}

func stringEnv(with func(string) Option) func(string) (Option, error) {
	return func(s string) (Option, error) { return with(s), nil }
}

func boolEnv(with func(bool) Option) func(string) (Option, error) {
	return func(s string) (Option, error) {
		v, err := strconv.ParseBool(s)
		return with(v), err
	}
}

func intEnv(with func(int) Option) func(string) (Option, error) {
	return func(s string) (Option, error) {
		v, err := strconv.Atoi(s)
		return with(v), err
	}
}

func durationEnv(with func(time.Duration) Option) func(string) (Option, error) {
	return func(s string) (Option, error) {
		v, err := time.ParseDuration(s)
		return with(v), err
	}
}

func parseDuration(name, s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s 取值无效: %w", name, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s 不能为负数: %s", name, s)
	}
	return d, nil
}

func checkOneOf(name, v string, allowed ...string) error {
	for _, a := range allowed {
		if v == a {
			return nil
		}
	}
	return fmt.Errorf("%s 取值 %q 无效，可选值: %s", name, v, strings.Join(allowed, ", "))
}
