package ext

import (
	"fmt"

	errs "github.com/favbox/h1wire/common/errors"
)

// FieldError 返回描述非法标头字段的错误，可用 errors.Is(err, errs.ErrInvalidHeader) 判断。
func FieldError(kind string, name, value []byte) error {
	return errs.New(
		fmt.Errorf("%w: %s %s: %s", errs.ErrInvalidHeader, kind, BufferSnippet(name), BufferSnippet(value)),
		errs.ErrorTypeProtocol,
		nil,
	)
}
