package req

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/favbox/h1wire/common/mock"
	"github.com/stretchr/testify/assert"
)

func TestReadHeader(t *testing.T) {
	conn := mock.NewConn("GET /hello HTTP/1.1\r\nHost: example.com\r\nX-Id:  7 \r\n\r\n" +
		"HEAD / HTTP/1.1\r\n\r\n")

	h, err := ReadHeader(conn, 0)
	assert.Nil(t, err)
	assert.Equal(t, "GET", h.Method)
	assert.Equal(t, "/hello", h.Path)
	assert.Equal(t, "HTTP/1.1", h.Proto)
	assert.Equal(t, "example.com", h.Header.Get("host"))
	assert.Equal(t, "7", h.Header.Get("x-id"))

	h, err = ReadHeader(conn, 0)
	assert.Nil(t, err)
	assert.True(t, h.IsHead())
	assert.Equal(t, 0, h.Header.Len())

	_, err = ReadHeader(conn, 0)
	assert.Equal(t, io.EOF, err)
}

func TestReadHeaderTruncated(t *testing.T) {
	_, err := ReadHeader(mock.NewConn("GET / HTTP/1.1\r\nHost: a\r\n"), 0)
	assert.Equal(t, io.ErrUnexpectedEOF, err)
}

func TestReadHeaderTooLarge(t *testing.T) {
	conn := mock.NewConn("GET / HTTP/1.1\r\nX-Big: " + strings.Repeat("a", 100) + "\r\n\r\n")
	_, err := ReadHeader(conn, 32)
	assert.True(t, errors.Is(err, ErrHeaderTooLarge))
}

func TestReadHeaderMalformed(t *testing.T) {
	for _, s := range []string{
		"GET /\r\n\r\n",
		"GET / SPDY/3\r\n\r\n",
		"GET / HTTP/1.1\r\nno-colon\r\n\r\n",
		"GET / HTTP/1.1\r\nX-A : 1\r\n\r\n",
	} {
		_, err := ReadHeader(mock.NewConn(s), 0)
		assert.True(t, errors.Is(err, ErrMalformed), s)
	}
}
