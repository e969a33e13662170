package forward

import (
	"time"

	"github.com/evlog/forwarder/internal/eventlog"
)

// Formatter maps one record to one output line. Implementations are
// pure and must not fail on missing optional fields; those render as
// empty strings.
type Formatter interface {
	Format(record *eventlog.Record) (string, error)
}

// Sender delivers one encoded line to the remote collector. A returned
// error means the line was dropped; there is no retry.
type Sender interface {
	Send(line string) error
}

type Config struct {
	MaxQueue      int
	SendBatchSize int
	SendInterval  time.Duration
}
