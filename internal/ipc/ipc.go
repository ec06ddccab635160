// Package ipc provides helpers for the local Unix-socket IPC channel used by
// CLI commands (list/search/recopy/...) to talk to a running cliplog daemon
// instead of opening the history file themselves.
//
// The daemon listens on the socket; CLI sub-commands probe for it and fall
// back to working on the history file directly if it is absent. Windows 10 and
// later support AF_UNIX sockets, so one implementation serves every platform.
//
// A socket belongs to exactly one single-instance lock: its default name is
// derived from the lock path, so daemons for different data dirs never share
// a socket.
package ipc

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/cespare/xxhash/v2"
)

const dialTimeout = 2 * time.Second

// ErrInUse means a live daemon already answers on the socket path.
var ErrInUse = errors.New("ipc socket in use by a running daemon")

// SocketPath returns the socket for the daemon holding lockPath.
//
//   - $CLIPLOG_SOCKET if set
//   - $XDG_RUNTIME_DIR/cliplog-<id>.sock on Linux desktops
//   - $TMPDIR/cliplog-<id>.sock otherwise
//
// <id> is a hash of the absolute lock path, which keeps the name short enough
// for sun_path wherever the data dir lives.
func SocketPath(lockPath string) string {
	if s := os.Getenv("CLIPLOG_SOCKET"); s != "" {
		return s
	}
	name := SocketName(lockPath)
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, name)
	}
	return filepath.Join(os.TempDir(), name)
}

// SocketName is the file name SocketPath uses for lockPath.
func SocketName(lockPath string) string {
	if abs, err := filepath.Abs(lockPath); err == nil {
		lockPath = abs
	}
	return fmt.Sprintf("cliplog-%012x.sock", xxhash.Sum64String(filepath.Clean(lockPath))&0xffffffffffff)
}

// IsRunning reports whether a cliplog daemon appears to be listening on path.
// It does a cheap dial-and-close; no data is exchanged.
func IsRunning(path string) bool {
	c, err := Dial(path)
	if err != nil {
		return false
	}
	_ = c.Close()
	return true
}

// Dial connects to the daemon socket at path.
func Dial(path string) (net.Conn, error) {
	return net.DialTimeout("unix", path, dialTimeout)
}

// Listen creates a listener on path. A socket file left by a crashed run is
// removed first; one that still answers is never touched and yields ErrInUse.
func Listen(path string) (net.Listener, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("ipc dir: %w", err)
	}
	if IsRunning(path) {
		return nil, fmt.Errorf("%w: %s", ErrInUse, path)
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("remove stale socket: %w", err)
	}
	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("ipc listen %s: %w", path, err)
	}
	if err := os.Chmod(path, 0o600); err != nil {
		_ = ln.Close()
		return nil, fmt.Errorf("ipc chmod %s: %w", path, err)
	}
	return ln, nil
}
