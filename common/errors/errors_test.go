package errors

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError(t *testing.T) {
	baseError := errors.New("test error")
	err := &Error{
		Err:  baseError,
		Type: ErrorTypePrivate,
	}
	assert.Equal(t, err.Error(), baseError.Error())
	assert.Equal(t, map[string]any{"error": baseError.Error()}, err.JSON())

	assert.Equal(t, err.SetType(ErrorTypePublic), err)
	assert.Equal(t, ErrorTypePublic, err.Type)

	assert.Equal(t, err.SetMeta("some data"), err)
	assert.Equal(t, "some data", err.Meta)
	assert.Equal(t, map[string]any{
		"error": baseError.Error(),
		"meta":  "some data",
	}, err.JSON())

	err.SetMeta(map[string]any{
		"error":  "custom error",
		"status": 500,
	})
	assert.Equal(t, map[string]any{
		"error":  "custom error",
		"status": 500,
	}, err.JSON())
}

func TestTransport(t *testing.T) {
	err := Transport(io.ErrClosedPipe)
	assert.True(t, errors.Is(err, ErrTransportFailure))
	assert.True(t, errors.Is(err, io.ErrClosedPipe))
	assert.True(t, err.IsType(ErrorTypeTransport))
	assert.False(t, err.IsType(ErrorTypeProtocol))
}

func TestProtocol(t *testing.T) {
	err := Protocol(ErrExchangeSuperseded, 3)
	assert.True(t, errors.Is(err, ErrExchangeSuperseded))
	assert.True(t, err.IsType(ErrorTypeProtocol))
	assert.Equal(t, map[string]any{"exchange": 3, "error": ErrExchangeSuperseded.Error()}, err.JSON())
}

func TestNewf(t *testing.T) {
	err := Newf(ErrorTypePublic, nil, "status %d", 503)
	assert.Equal(t, "status 503", err.Error())
	assert.True(t, err.IsType(ErrorTypePublic|ErrorTypePrivate))
	assert.Equal(t, "boom", NewPrivate("boom").Error())
	assert.Equal(t, "x=1", NewPublicf("x=%d", 1).Error())
	assert.True(t, NewPublic("p").IsType(ErrorTypePublic))
}
