// Package listener abstracts the network the RPC endpoint binds, so the
// bridge can serve over tcp or a unix socket with a one-line config change.
package listener

import (
	"net"
	"net/http"
)

// Serve serves h on a listener configured by config.
func Serve(config Config, h http.Handler) error {
	l, err := net.Listen(config.Net, config.Addr)
	if err != nil {
		return err
	}
	return http.Serve(l, h)
}
