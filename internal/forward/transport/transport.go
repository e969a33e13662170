package transport

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/evlog/forwarder/internal/forward"
)

const (
	ProtocolUDP = "udp"
	ProtocolTCP = "tcp"

	dialTimeout  = 5 * time.Second
	writeTimeout = 5 * time.Second
)

// New builds the sender for the configured protocol. The address is
// resolved lazily on the first send, so a collector that is down at
// startup only costs failed sends, not a failed start.
func New(protocol, server string, port int) (forward.Sender, error) {
	addr := net.JoinHostPort(server, strconv.Itoa(port))

	switch protocol {
	case ProtocolUDP:
		return NewUDPSender(addr), nil
	case ProtocolTCP:
		return NewTCPSender(addr), nil
	default:
		return nil, fmt.Errorf("unknown protocol %q", protocol)
	}
}
