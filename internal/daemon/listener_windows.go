//go:build windows

package daemon

import (
	"net"
	"os"
	"path/filepath"

	"github.com/Microsoft/go-winio"
)

// Listen opens addr.SocketPath as a named pipe, Windows's stand-in for a
// Unix-domain socket.
func Listen(addr Addr) (net.Listener, error) {
	if err := os.MkdirAll(filepath.Dir(addr.MetaPath), 0o700); err != nil {
		return nil, err
	}
	return winio.ListenPipe(addr.SocketPath, nil)
}

// Dial connects to a running daemon's named pipe at addr.SocketPath.
func Dial(addr Addr) (net.Conn, error) {
	return winio.DialPipe(addr.SocketPath, nil)
}
