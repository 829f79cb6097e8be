//go:build !windows

package network

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewListenConfigReusePort(t *testing.T) {
	ctx := context.Background()
	ln, err := NewListenConfig(true).Listen(ctx, "tcp", "127.0.0.1:0")
	require.Nil(t, err)
	defer ln.Close()
	addr := ln.Addr().String()

	ln2, err := NewListenConfig(true).Listen(ctx, "tcp", addr)
	require.Nil(t, err)
	ln2.Close()

	_, err = NewListenConfig(false).Listen(ctx, "tcp", addr)
	assert.NotNil(t, err)
}
