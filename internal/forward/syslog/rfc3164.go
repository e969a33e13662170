package syslog

import (
	"fmt"

	"github.com/evlog/forwarder/internal/eventlog"
)

// RFC3164Formatter renders the legacy BSD syslog format:
// <PRI>Mon dd HH:mm:ss hostname tag: message. The timestamp is local
// time with no year and no zone, as the old format requires.
type RFC3164Formatter struct {
	opts Options
}

func (f *RFC3164Formatter) Format(record *eventlog.Record) (string, error) {
	pri := Priority(f.opts.FacilityMap, record.Channel, record.Level)
	ts := record.Created.Local().Format("Jan 02 15:04:05")

	tag := f.opts.appName(record)
	if tag == "" {
		tag = "eventlog"
	}

	return fmt.Sprintf("<%d>%s %s %s: %s", pri, ts, f.opts.Hostname, tag, record.Message), nil
}
