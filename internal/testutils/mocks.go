package testutils

import (
	"fmt"
	"sync"
	"time"

	"github.com/evlog/forwarder/internal/eventlog"
)

// MockSender collects sent lines in memory.
type MockSender struct {
	Lines      []string
	mu         sync.Mutex
	ShouldFail bool
	SendCalls  int
}

func (m *MockSender) Send(line string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SendCalls++
	if m.ShouldFail {
		return fmt.Errorf("mock send failed")
	}
	m.Lines = append(m.Lines, line)
	return nil
}

func (m *MockSender) GetLines() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Lines...)
}

// MockFormatter renders records as "<channel>/<record id>", or fails
// for every record whose channel is in FailChannels.
type MockFormatter struct {
	FailChannels map[string]bool
}

func (m *MockFormatter) Format(record *eventlog.Record) (string, error) {
	if m.FailChannels[record.Channel] {
		return "", fmt.Errorf("mock format failed for %s", record.Channel)
	}
	return fmt.Sprintf("%s/%d", record.Channel, record.RecordID), nil
}

// MockSource is a scripted log source. Subscribe fails for channels in
// FailChannels; Emit delivers one record to an open subscription.
type MockSource struct {
	FailChannels map[string]bool

	mu     sync.Mutex
	subs   map[string]*MockSubscription
	Tokens map[string]string
}

func NewMockSource() *MockSource {
	return &MockSource{
		FailChannels: make(map[string]bool),
		subs:         make(map[string]*MockSubscription),
		Tokens:       make(map[string]string),
	}
}

func (s *MockSource) Subscribe(channel, resumeToken string, cb eventlog.Callback) (eventlog.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailChannels[channel] {
		return nil, fmt.Errorf("mock subscription failure for %s", channel)
	}

	s.Tokens[channel] = resumeToken
	sub := &MockSubscription{cb: cb}
	s.subs[channel] = sub
	return sub, nil
}

// Emit delivers a record on the named channel. Returns false when no
// live subscription exists.
func (s *MockSource) Emit(channel string, record *eventlog.Record, resumeToken string) bool {
	s.mu.Lock()
	sub, ok := s.subs[channel]
	s.mu.Unlock()

	if !ok || sub.Closed() {
		return false
	}
	sub.cb(record, resumeToken)
	return true
}

type MockSubscription struct {
	mu     sync.Mutex
	cb     eventlog.Callback
	closed bool
}

func (m *MockSubscription) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *MockSubscription) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// NewRecord builds a populated record for tests.
func NewRecord(channel string, recordID uint64) *eventlog.Record {
	return &eventlog.Record{
		Channel:      channel,
		Provider:     "Test-Provider",
		Level:        4,
		LevelDisplay: "Information",
		EventID:      int(recordID),
		RecordID:     recordID,
		ProcessID:    100,
		ThreadID:     4,
		Machine:      "testhost",
		Created:      time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC),
		Message:      fmt.Sprintf("record %d", recordID),
	}
}
