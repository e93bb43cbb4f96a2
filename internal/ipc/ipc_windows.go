//go:build windows

package ipc

import "net"

// Named pipes need an extra dependency; a loopback TCP listener covers the
// same single-machine use without one. CATHIST_SOCKET can move the port.
const loopbackAddr = "127.0.0.1:7628"

func socketPath() string { return loopbackAddr }

func listenIPC(addr string) (net.Listener, error) {
	return net.Listen("tcp", addr)
}

func dialIPC(addr string) (net.Conn, error) {
	return net.Dial("tcp", addr)
}
