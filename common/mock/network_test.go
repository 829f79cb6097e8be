package mock

import (
	"errors"
	"io"
	"testing"

	errs "github.com/favbox/h1wire/common/errors"
	"github.com/stretchr/testify/assert"
)

func TestConnReader(t *testing.T) {
	s := "GET / HTTP/1.1\r\n\r\n"
	conn := NewConn(s)

	b, err := conn.Peek(3)
	assert.Nil(t, err)
	assert.Equal(t, "GET", string(b))
	assert.Nil(t, conn.Skip(4))

	c, _ := conn.ReadByte()
	assert.Equal(t, byte('/'), c)

	p, err := conn.ReadBinary(conn.Len())
	assert.Nil(t, err)
	assert.Equal(t, s[5:], string(p))

	_, err = conn.Peek(1)
	assert.Equal(t, io.EOF, err)
}

func TestConnWriter(t *testing.T) {
	conn := NewConn("")

	n, err := conn.WriteBinary([]byte("HTTP/1.1 200 OK\r\n"))
	assert.Nil(t, err)
	assert.Equal(t, 17, n)
	assert.Equal(t, 17, conn.WroteLen())
	assert.Equal(t, "", conn.Flushed())

	assert.Nil(t, conn.Flush())
	assert.Equal(t, "HTTP/1.1 200 OK\r\n", conn.Flushed())
	assert.Equal(t, 1, conn.Flushes())

	assert.Nil(t, conn.Close())
	assert.Nil(t, conn.Close())
	assert.True(t, conn.Closed())
	assert.Equal(t, 2, conn.CloseCount())
	assert.True(t, errors.Is(conn.Flush(), errs.ErrConnectionClosed))
}

func TestBrokenConn(t *testing.T) {
	conn := NewBrokenConn("")
	_, err := conn.WriteBinary([]byte("x"))
	assert.Nil(t, err)
	assert.True(t, errors.Is(conn.Flush(), errs.ErrConnectionClosed))
	assert.Equal(t, "", conn.Flushed())
}

func TestChunkedBody(t *testing.T) {
	assert.Equal(t, "5\r\nhello\r\n0\r\n\r\n", ChunkedBody([]string{"hello", ""}))
	assert.Equal(t, "0\r\nx-sum: 1\r\n\r\n", ChunkedBody(nil, "x-sum", "1"))
	assert.Equal(t, "0123", string(CreateFixedBody(4)))
}
