package transport

import (
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"
)

// Frame applies octet-counted framing: the ASCII decimal byte length of
// the line, a single space, then the bytes. No terminator.
func Frame(line string) []byte {
	buf := make([]byte, 0, len(line)+8)
	buf = strconv.AppendInt(buf, int64(len(line)), 10)
	buf = append(buf, ' ')
	buf = append(buf, line...)
	return buf
}

// TCPSender writes octet-counted frames over one long-lived connection,
// dialing lazily and redialing once when a write fails. Per-connection
// message order matches call order.
type TCPSender struct {
	addr string
	mu   sync.Mutex
	conn net.Conn
}

func NewTCPSender(addr string) *TCPSender {
	return &TCPSender{addr: addr}
}

func (s *TCPSender) Send(line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	frame := Frame(line)

	err := s.write(frame)
	if err == nil {
		return nil
	}

	// The old connection may have died since the last send; one
	// reconnect attempt, then the line is dropped by the caller.
	s.dropConn()
	if err = s.write(frame); err != nil {
		s.dropConn()
		return fmt.Errorf("failed to send to %s: %w", s.addr, err)
	}
	return nil
}

func (s *TCPSender) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}

func (s *TCPSender) write(frame []byte) error {
	if s.conn == nil {
		conn, err := net.DialTimeout("tcp", s.addr, dialTimeout)
		if err != nil {
			return err
		}
		s.conn = conn
	}

	if err := s.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	_, err := s.conn.Write(frame)
	return err
}

func (s *TCPSender) dropConn() {
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
}
