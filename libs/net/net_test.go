package net

import (
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetFreePort(t *testing.T) {
	port, err := GetFreePort()
	require.NoError(t, err)
	require.Greater(t, port, 0)
}

func TestFreeAddress(t *testing.T) {
	addr, err := FreeAddress("127.0.0.1")
	require.NoError(t, err)

	l, err := net.Listen("tcp", addr)
	require.NoError(t, err)
	require.NoError(t, l.Close())
}
