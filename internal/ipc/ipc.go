// Package ipc provides the local IPC channel used by CLI sub-commands
// (history/search/copy/status) to talk to a running cathist daemon instead
// of opening the database themselves.
//
// The channel is plain HTTP+JSON served over a Unix domain socket. The
// daemon listens on the socket; CLI sub-commands probe for it and, for the
// copy command, fall back to writing the clipboard directly if it is absent.
package ipc

import (
	"net"
	"os"
)

// SocketPath returns the platform-appropriate IPC endpoint.
//
//   - Linux:   $XDG_RUNTIME_DIR/cathist.sock, else $TMPDIR/cathist.sock
//   - macOS:   $TMPDIR/cathist.sock
//   - Windows: a loopback TCP address
//
// $CATHIST_SOCKET overrides the default everywhere.
func SocketPath() string {
	if s := os.Getenv("CATHIST_SOCKET"); s != "" {
		return s
	}
	return socketPath()
}

// IsRunning reports whether a cathist daemon appears to be listening on the
// IPC endpoint. It does a cheap dial-and-close; no data is exchanged.
func IsRunning() bool {
	c, err := Dial()
	if err != nil {
		return false
	}
	_ = c.Close()
	return true
}

// Listen creates and returns a net.Listener on the IPC endpoint, removing
// any stale socket file first.
func Listen() (net.Listener, error) {
	return listenIPC(SocketPath())
}

// Dial connects to the IPC endpoint.
func Dial() (net.Conn, error) {
	return dialIPC(SocketPath())
}
