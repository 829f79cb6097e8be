package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/favbox/h1wire/protocol/consts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDefaultOptions 使用默认值测试配置项
func TestDefaultOptions(t *testing.T) {
	options := NewOptions([]Option{})

	assert.True(t, options.EnableServerHeader)
	assert.True(t, options.EnableDateHeader)
	assert.Equal(t, consts.DefaultServerName, options.ServerName)
	assert.Equal(t, HeaderNamingDefault, options.HeaderNaming)
	assert.Equal(t, ErrorBodyText, options.ErrorBodyFormat)
	assert.Equal(t, consts.DefaultIdleTimeout, options.IdleTimeout)
	assert.Equal(t, 0, options.MaxRequestsPerConnection)
	assert.Equal(t, time.Duration(0), options.MaxConnectionAge)
	assert.Equal(t, consts.DefaultWriteTimeout, options.WriteTimeout)
	assert.Equal(t, "tcp", options.Network)
	assert.Equal(t, ":8888", options.Addr)
	assert.False(t, options.ReusePort)
	assert.Equal(t, consts.DefaultSessionQueueSize, options.SessionQueueSize)
	assert.Equal(t, TransportNetpoll, options.Transport)
	assert.Equal(t, consts.DefaultExitWaitTimeout, options.ExitWaitTimeout)
}

// TestApplyCustomOptions 测试应用自定义配置项
func TestApplyCustomOptions(t *testing.T) {
	options := NewOptions([]Option{
		WithServerHeader(false),
		WithDateHeader(false),
		WithServerName("edge"),
		WithHeaderNaming(HeaderNamingTraditional),
		WithErrorBodyFormat(ErrorBodyJSON),
		WithIdleTimeout(time.Second),
		WithMaxRequestsPerConnection(100),
		WithMaxConnectionAge(time.Hour),
		WithWriteTimeout(2 * time.Second),
		WithNetwork("unix"),
		WithHostPorts("/tmp/h1wire.sock"),
		WithReusePort(true),
		WithSessionQueueSize(8),
		WithTransport(TransportStandard),
		WithExitWaitTime(time.Minute),
	})

	assert.False(t, options.EnableServerHeader)
	assert.False(t, options.EnableDateHeader)
	assert.Equal(t, "edge", options.ServerName)
	assert.Equal(t, HeaderNamingTraditional, options.HeaderNaming)
	assert.Equal(t, ErrorBodyJSON, options.ErrorBodyFormat)
	assert.Equal(t, time.Second, options.IdleTimeout)
	assert.Equal(t, 100, options.MaxRequestsPerConnection)
	assert.Equal(t, time.Hour, options.MaxConnectionAge)
	assert.Equal(t, 2*time.Second, options.WriteTimeout)
	assert.Equal(t, "unix", options.Network)
	assert.Equal(t, "/tmp/h1wire.sock", options.Addr)
	assert.True(t, options.ReusePort)
	assert.Equal(t, 8, options.SessionQueueSize)
	assert.Equal(t, TransportStandard, options.Transport)
	assert.Equal(t, time.Minute, options.ExitWaitTimeout)
}

func TestParseTOML(t *testing.T) {
	opts, err := ParseTOML([]byte(`
[response]
enable_date_header = false
server_name = "edge"
header_naming = "traditional"
error_body_format = "json"

[keepalive]
idle_timeout = "5s"
max_requests = 10
max_age = "1h"

[server]
addr = ":9000"
reuse_port = true
write_timeout = "3s"
session_queue_size = 16
transport = "standard"
exit_wait_timeout = "30s"
`))
	require.Nil(t, err)

	o := NewOptions(opts)
	assert.True(t, o.EnableServerHeader)
	assert.False(t, o.EnableDateHeader)
	assert.Equal(t, "edge", o.ServerName)
	assert.Equal(t, HeaderNamingTraditional, o.HeaderNaming)
	assert.Equal(t, ErrorBodyJSON, o.ErrorBodyFormat)
	assert.Equal(t, 5*time.Second, o.IdleTimeout)
	assert.Equal(t, 10, o.MaxRequestsPerConnection)
	assert.Equal(t, time.Hour, o.MaxConnectionAge)
	assert.Equal(t, ":9000", o.Addr)
	assert.Equal(t, "tcp", o.Network)
	assert.True(t, o.ReusePort)
	assert.Equal(t, 3*time.Second, o.WriteTimeout)
	assert.Equal(t, 16, o.SessionQueueSize)
	assert.Equal(t, TransportStandard, o.Transport)
	assert.Equal(t, 30*time.Second, o.ExitWaitTimeout)
}

func TestParseTOMLErrors(t *testing.T) {
	cases := map[string]string{
		"语法错误":   "[response\n",
		"未知字段":   "[response]\nunknown = 1\n",
		"非法时长":   "[keepalive]\nidle_timeout = \"soon\"\n",
		"负数时长":   "[keepalive]\nmax_age = \"-1s\"\n",
		"非法命名":   "[response]\nheader_naming = \"camel\"\n",
		"非法正文格式": "[response]\nerror_body_format = \"xml\"\n",
		"非法传输器":  "[server]\ntransport = \"epoll\"\n",
	}
	for name, input := range cases {
		_, err := ParseTOML([]byte(input))
		assert.NotNil(t, err, name)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "h1wire.toml")
	require.Nil(t, os.WriteFile(path, []byte("[server]\naddr = \":7000\"\n"), 0o644))

	opts, err := LoadFile(path)
	require.Nil(t, err)
	assert.Equal(t, ":7000", NewOptions(opts).Addr)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.toml"))
	assert.NotNil(t, err)
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("H1WIRE_IDLE_TIMEOUT", "2s")
	t.Setenv("H1WIRE_REUSE_PORT", "true")
	t.Setenv("H1WIRE_MAX_REQUESTS", "3")

	envFile := filepath.Join(t.TempDir(), ".env")
	require.Nil(t, os.WriteFile(envFile, []byte("H1WIRE_SERVER_NAME=from-dotenv\nH1WIRE_IDLE_TIMEOUT=9s\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("H1WIRE_SERVER_NAME") })

	opts, err := LoadEnv(envFile, filepath.Join(t.TempDir(), "absent.env"))
	require.Nil(t, err)

	o := NewOptions(opts)
	// 已存在的环境变量不被 .env 覆盖
	assert.Equal(t, 2*time.Second, o.IdleTimeout)
	assert.True(t, o.ReusePort)
	assert.Equal(t, 3, o.MaxRequestsPerConnection)
	assert.Equal(t, "from-dotenv", o.ServerName)
}

func TestLoadEnvInvalid(t *testing.T) {
	t.Setenv("H1WIRE_WRITE_TIMEOUT", "forever")
	_, err := LoadEnv()
	assert.NotNil(t, err)
}

func TestWatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "h1wire.toml")
	require.Nil(t, os.WriteFile(path, []byte("[server]\naddr = \":7000\"\n"), 0o644))

	changed := make(chan *Options, 4)
	w, err := Watch(path, func(opts []Option) {
		select {
		case changed <- NewOptions(opts):
		default:
		}
	})
	require.Nil(t, err)
	defer w.Close()

	require.Nil(t, os.WriteFile(path, []byte("[server]\naddr = \":7001\"\n"), 0o644))

	// 写入过程可能触发多次事件，等到读到新内容为止
	timeout := time.After(3 * time.Second)
	for {
		select {
		case o := <-changed:
			if o.Addr == ":7001" {
				return
			}
		case <-timeout:
			t.Fatal("配置变更未被察觉")
		}
	}
}
