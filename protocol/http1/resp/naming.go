package resp

import (
	"fmt"
	"sync"

	"github.com/favbox/h1wire/common/config"
	"github.com/favbox/h1wire/common/utils"
)

// HeaderNaming 把小写规范标头名映射为线路上的拼写。实现必须是无副作用的纯函数。
type HeaderNaming interface {
	NameFor(canonical string) string
}

// NamingFunc 将普通函数适配为 HeaderNaming。
type NamingFunc func(canonical string) string

func (f NamingFunc) NameFor(canonical string) string { return f(canonical) }

var defaultNaming = NamingFunc(func(canonical string) string { return canonical })

// DefaultNaming 返回原样输出小写规范名的策略。
func DefaultNaming() HeaderNaming {
	return defaultNaming
}

// 传统拼写：content-length -> Content-Length，结果按名称缓存。
type traditionalNaming struct {
	cache sync.Map
}

var traditional = &traditionalNaming{}

// TraditionalNaming 返回首字母及破折号后字母大写的传统拼写策略，兼容对大小写敏感的老旧客户端。
func TraditionalNaming() HeaderNaming {
	return traditional
}

func (n *traditionalNaming) NameFor(canonical string) string {
	if v, ok := n.cache.Load(canonical); ok {
		return v.(string)
	}
	b := []byte(canonical)
	utils.NormalizeHeaderKey(b)
	name := string(b)
	n.cache.Store(string([]byte(canonical)), name)
	return name
}

// NamingByName 按配置名称返回命名策略。
func NamingByName(name string) (HeaderNaming, error) {
	switch name {
	case "", config.HeaderNamingDefault:
		return DefaultNaming(), nil
	case config.HeaderNamingTraditional:
		return TraditionalNaming(), nil
	}
	return nil, fmt.Errorf("未知的标头命名策略: %q", name)
}
