package resp

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/favbox/h1wire/internal/bytesconv"
)

// DateSource 提供 Date 标头的取值，格式必须是 RFC 7231 规定的 IMF-fixdate，
// 如 "Wed, 21 Oct 2015 07:28:00 GMT"。
type DateSource interface {
	CurrentHTTPDate() []byte
}

// 每秒刷新一次的服务器时间，首次使用时启动刷新协程。
type serverDate struct {
	once  sync.Once
	value atomic.Value
}

var systemDate = &serverDate{}

// SystemDate 返回全局共享的系统时间源。
func SystemDate() DateSource {
	return systemDate
}

func (d *serverDate) CurrentHTTPDate() []byte {
	d.once.Do(d.start)
	return d.value.Load().([]byte)
}

func (d *serverDate) start() {
	d.refresh()
	go func() {
		for {
			time.Sleep(time.Second)
			d.refresh()
		}
	}()
}

func (d *serverDate) refresh() {
	b := bytesconv.AppendHTTPDate(make([]byte, 0, len(http.TimeFormat)), time.Now())
	d.value.Store(b)
}

type fixedDate []byte

func (d fixedDate) CurrentHTTPDate() []byte { return d }

// FixedDate 返回始终报告时刻 t 的时间源。
func FixedDate(t time.Time) DateSource {
	return fixedDate(bytesconv.AppendHTTPDate(nil, t))
}
