package protocol

import (
	"strings"

	"github.com/favbox/h1wire/internal/bytesconv"
)

type headerField struct {
	key   []byte
	value []byte
}

// Header 是按添加顺序保存的标头多值映射。
//
// 标头名以小写规范形式保存，查询时不区分大小写。
// 同名标头可出现多次，序列化时按添加顺序逐行输出。
type Header struct {
	fields []headerField
}

// Add 追加一个标头，不影响已有的同名标头。
func (h *Header) Add(key, value string) {
	h.fields = append(h.fields, headerField{
		key:   canonicalKey(nil, key),
		value: cloneValue(nil, value),
	})
}

// Set 设置标头，替换全部同名标头。
func (h *Header) Set(key, value string) {
	k := canonicalKey(nil, key)
	for i := range h.fields {
		if string(h.fields[i].key) == string(k) {
			h.fields[i].value = cloneValue(h.fields[i].value[:0], value)
			h.fields = delFields(h.fields, i+1, k)
			return
		}
	}
	h.fields = append(h.fields, headerField{key: k, value: cloneValue(nil, value)})
}

// Peek 返回首个同名标头的值，不存在时返回 nil，值为空时返回非 nil 的空切片。
//
// 返回值在标头被修改前有效，请勿保留其引用。
func (h *Header) Peek(key string) []byte {
	var buf [64]byte
	k := canonicalKey(buf[:0], key)
	for i := range h.fields {
		if string(h.fields[i].key) == string(k) {
			return h.fields[i].value
		}
	}
	return nil
}

// PeekAll 返回全部同名标头的值。
func (h *Header) PeekAll(key string) [][]byte {
	var buf [64]byte
	k := canonicalKey(buf[:0], key)
	var values [][]byte
	for i := range h.fields {
		if string(h.fields[i].key) == string(k) {
			values = append(values, h.fields[i].value)
		}
	}
	return values
}

// Get 返回首个同名标头值的字符串副本。
func (h *Header) Get(key string) string {
	return string(h.Peek(key))
}

// Has 报告是否存在同名标头，值为空的标头同样算作存在。
func (h *Header) Has(key string) bool {
	var buf [64]byte
	k := canonicalKey(buf[:0], key)
	for i := range h.fields {
		if string(h.fields[i].key) == string(k) {
			return true
		}
	}
	return false
}

// Del 删除全部同名标头。
func (h *Header) Del(key string) {
	var buf [64]byte
	h.fields = delFields(h.fields, 0, canonicalKey(buf[:0], key))
}

// VisitAll 按添加顺序遍历全部标头。
func (h *Header) VisitAll(f func(key, value []byte)) {
	for i := range h.fields {
		f(h.fields[i].key, h.fields[i].value)
	}
}

// Len 返回标头个数，同名标头分别计数。
func (h *Header) Len() int {
	return len(h.fields)
}

// Reset 清空标头，保留底层存储。
func (h *Header) Reset() {
	h.fields = h.fields[:0]
}

// CopyTo 将全部标头深拷贝至 dst，dst 原有内容被清除。
func (h *Header) CopyTo(dst *Header) {
	dst.Reset()
	for i := range h.fields {
		dst.fields = append(dst.fields, headerField{
			key:   append([]byte(nil), h.fields[i].key...),
			value: cloneValue(nil, bytesconv.B2s(h.fields[i].value)),
		})
	}
}

// String 以 "name: value" 逐行的形式返回标头，仅用于调试。
func (h *Header) String() string {
	var sb strings.Builder
	for i := range h.fields {
		sb.Write(h.fields[i].key)
		sb.WriteString(": ")
		sb.Write(h.fields[i].value)
		sb.WriteString("\r\n")
	}
	return sb.String()
}

// 空值也保存为非 nil 切片，使 Peek 能区分"值为空"与"不存在"。
func cloneValue(dst []byte, value string) []byte {
	if dst == nil {
		dst = make([]byte, 0, len(value))
	}
	return append(dst, value...)
}

func canonicalKey(dst []byte, key string) []byte {
	dst = append(dst, key...)
	bytesconv.LowercaseBytes(dst)
	return dst
}

// 删除 from 之后（含）所有键为 key 的字段。
func delFields(fields []headerField, from int, key []byte) []headerField {
	n := from
	for i := from; i < len(fields); i++ {
		if string(fields[i].key) == string(key) {
			continue
		}
		fields[n] = fields[i]
		n++
	}
	for i := n; i < len(fields); i++ {
		fields[i] = headerField{}
	}
	return fields[:n]
}

// NewHeader 使用成对的键值创建标头，如 NewHeader("content-type", "text/plain")。
// 落单的键被忽略。
func NewHeader(kv ...string) Header {
	var h Header
	for i := 0; i+1 < len(kv); i += 2 {
		h.Add(kv[i], kv[i+1])
	}
	return h
}
