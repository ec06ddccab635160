package ipc

import (
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSocketPath(t *testing.T) {
	const lock = "/home/u/.config/cliplog/cliplog.lock"

	t.Setenv("CLIPLOG_SOCKET", "/custom/cliplog.sock")
	require.Equal(t, "/custom/cliplog.sock", SocketPath(lock))

	t.Setenv("CLIPLOG_SOCKET", "")
	t.Setenv("XDG_RUNTIME_DIR", "/run/user/1000")
	require.Equal(t, filepath.Join("/run/user/1000", SocketName(lock)), SocketPath(lock))

	t.Setenv("XDG_RUNTIME_DIR", "")
	require.Equal(t, filepath.Join(os.TempDir(), SocketName(lock)), SocketPath(lock))
}

func TestSocketName_ScopedToLock(t *testing.T) {
	a := SocketName("/data/a/cliplog.lock")
	b := SocketName("/data/b/cliplog.lock")
	require.NotEqual(t, a, b, "different data dirs get different sockets")
	require.Equal(t, a, SocketName("/data/a/../a/cliplog.lock"))
	require.True(t, strings.HasPrefix(a, "cliplog-"))
	require.True(t, strings.HasSuffix(a, ".sock"))
}

func acceptAll(ln net.Listener) {
	for {
		c, err := ln.Accept()
		if err != nil {
			return
		}
		_ = c.Close()
	}
}

func TestListen_ReplacesStaleSocket(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.sock")
	require.False(t, IsRunning(path))

	// A leftover file from a crashed run.
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	ln, err := Listen(path)
	require.NoError(t, err)
	go acceptAll(ln)
	require.True(t, IsRunning(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	require.NoError(t, ln.Close())
	require.False(t, IsRunning(path))
}

func TestListen_LiveSocketUntouched(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.sock")
	ln, err := Listen(path)
	require.NoError(t, err)
	defer ln.Close()
	go acceptAll(ln)

	_, err = Listen(path)
	require.ErrorIs(t, err, ErrInUse)
	require.True(t, IsRunning(path), "first listener still answers")
}
