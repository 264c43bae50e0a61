package port

import (
	"net"
	"strconv"
)

// Probe checks whether a TCP port is free on the local machine.
type Probe interface {
	Available(port int) bool
}

// TCPProbe tests availability by binding a listener on the loopback
// interface and closing it again. The check is advisory: another process
// can grab the port between the probe and the eventual bind by the
// project's own services.
type TCPProbe struct{}

// Available reports whether the port could be bound on 127.0.0.1.
func (TCPProbe) Available(port int) bool {
	ln, err := net.Listen("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(port)))
	if err != nil {
		return false
	}
	ln.Close()
	return true
}
