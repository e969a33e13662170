package transport

import (
	"fmt"
	"net"
	"sync"
)

// UDPSender sends each line as one datagram, no framing, no
// acknowledgment. The socket is connected once and reused.
type UDPSender struct {
	addr string
	mu   sync.Mutex
	conn net.Conn
}

func NewUDPSender(addr string) *UDPSender {
	return &UDPSender{addr: addr}
}

func (s *UDPSender) Send(line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		conn, err := net.DialTimeout("udp", s.addr, dialTimeout)
		if err != nil {
			return fmt.Errorf("failed to dial %s: %w", s.addr, err)
		}
		s.conn = conn
	}

	if _, err := s.conn.Write([]byte(line)); err != nil {
		s.conn.Close()
		s.conn = nil
		return fmt.Errorf("failed to send datagram to %s: %w", s.addr, err)
	}
	return nil
}

func (s *UDPSender) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}
