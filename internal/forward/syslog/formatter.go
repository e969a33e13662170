package syslog

import (
	"fmt"
	"os"

	"github.com/evlog/forwarder/internal/eventlog"
	"github.com/evlog/forwarder/internal/forward"
)

// Output modes recognized by New.
const (
	ModeRFC3164 = "rfc3164"
	ModeRFC5424 = "rfc5424"
	ModeCustom  = "custom"
)

// Options carries the formatter-relevant slice of the agent
// configuration. Hostname and AppName are overrides; when empty the
// formatter falls back to the local hostname and the record's provider
// name respectively.
type Options struct {
	Hostname       string
	AppName        string
	FacilityMap    map[string]int
	CustomTemplate string
}

// New selects one of the three formatter variants by mode string,
// applied once at startup.
func New(mode string, opts Options) (forward.Formatter, error) {
	if opts.Hostname == "" {
		opts.Hostname, _ = os.Hostname()
	}

	switch mode {
	case ModeRFC3164:
		return &RFC3164Formatter{opts: opts}, nil
	case ModeRFC5424:
		return &RFC5424Formatter{opts: opts}, nil
	case ModeCustom:
		return &CustomFormatter{opts: opts}, nil
	default:
		return nil, fmt.Errorf("unknown output mode %q", mode)
	}
}

// appName picks the configured override, then the record's provider.
func (o Options) appName(record *eventlog.Record) string {
	if o.AppName != "" {
		return o.AppName
	}
	return record.Provider
}
