package eventlog

import (
	"time"
)

// Record is one log record delivered by a Source. It is read-only once
// delivered; the agent never mutates it.
type Record struct {
	Channel      string
	Provider     string
	Level        int
	LevelDisplay string
	EventID      int
	RecordID     uint64
	ProcessID    int
	ThreadID     int
	UserID       string
	Machine      string
	Opcode       string
	Task         string
	Keywords     []string
	Created      time.Time
	Message      string
}

// Callback receives one record together with the resume token that
// replays the channel from just after this record. Invocations are
// serial per channel; the implementation must not block for an
// unbounded time.
type Callback func(record *Record, resumeToken string)

// Source is the host log facility. Subscribe opens one subscription for
// the named channel, replaying from resumeToken when it is non-empty.
// Records are delivered in per-channel arrival order.
type Source interface {
	Subscribe(channel string, resumeToken string, cb Callback) (Subscription, error)
}

// Subscription is one live channel subscription. Close stops delivery;
// it is safe to call more than once.
type Subscription interface {
	Close() error
}
