package syslog

import (
	"strconv"
	"strings"
	"time"

	"github.com/evlog/forwarder/internal/eventlog"
)

// CustomFormatter renders a token-templated line. Tokens are written as
// {name} or {name:fmt}; literal text passes through unchanged, an
// unknown token name resolves to the empty string, and an unterminated
// "{" causes the rest of the template to be emitted literally.
type CustomFormatter struct {
	opts Options
}

func (f *CustomFormatter) Format(record *eventlog.Record) (string, error) {
	tmpl := f.opts.CustomTemplate

	var b strings.Builder
	for {
		open := strings.IndexByte(tmpl, '{')
		if open < 0 {
			b.WriteString(tmpl)
			break
		}
		b.WriteString(tmpl[:open])

		rest := tmpl[open+1:]
		closing := strings.IndexByte(rest, '}')
		if closing < 0 {
			// Unterminated token: the remainder after the brace is literal.
			b.WriteString(rest)
			break
		}

		name, format := rest[:closing], ""
		if colon := strings.IndexByte(name, ':'); colon >= 0 {
			name, format = name[:colon], name[colon+1:]
		}
		b.WriteString(f.resolve(record, name, format))

		tmpl = rest[closing+1:]
	}
	return b.String(), nil
}

func (f *CustomFormatter) resolve(record *eventlog.Record, name, format string) string {
	switch name {
	case "timestamp":
		if format == "" {
			return record.Created.UTC().Format(time.RFC3339)
		}
		return record.Created.Format(format)
	case "hostname":
		return f.opts.Hostname
	case "computer":
		return record.Machine
	case "channel":
		return record.Channel
	case "provider":
		return record.Provider
	case "event_id":
		return strconv.Itoa(record.EventID)
	case "level":
		return record.LevelDisplay
	case "opcode":
		return record.Opcode
	case "task":
		return record.Task
	case "keywords":
		return strings.Join(record.Keywords, ",")
	case "user":
		return record.UserID
	case "record_id":
		return strconv.FormatUint(record.RecordID, 10)
	case "process_id":
		return strconv.Itoa(record.ProcessID)
	case "thread_id":
		return strconv.Itoa(record.ThreadID)
	case "message":
		return record.Message
	default:
		return ""
	}
}
