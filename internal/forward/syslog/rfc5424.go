package syslog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/evlog/forwarder/internal/eventlog"
)

// sdID is the structured-data element identifier carrying the event
// log metadata. 48577 is the private enterprise number of the original
// collector family.
const sdID = "win@48577"

// RFC5424Formatter renders the structured IETF syslog format with one
// structured-data element carrying channel/provider/level/record
// metadata.
type RFC5424Formatter struct {
	opts Options
}

func (f *RFC5424Formatter) Format(record *eventlog.Record) (string, error) {
	pri := Priority(f.opts.FacilityMap, record.Channel, record.Level)

	// 7-digit fractional second, always UTC. The "Z" is appended as a
	// literal so the layout cannot be misread as a zone directive.
	ts := record.Created.UTC().Format("2006-01-02T15:04:05.0000000") + "Z"

	hostname := orDash(f.opts.Hostname)
	appName := orDash(f.opts.appName(record))

	procID := "-"
	if record.ProcessID > 0 {
		procID = strconv.Itoa(record.ProcessID)
	}

	return fmt.Sprintf("<%d>1 %s %s %s %s %d %s %s",
		pri, ts, hostname, appName, procID, record.EventID,
		f.structuredData(record), record.Message), nil
}

// structuredData builds the [win@48577 ...] element. Keys with empty
// values are omitted entirely.
func (f *RFC5424Formatter) structuredData(record *eventlog.Record) string {
	recordID := ""
	if record.RecordID > 0 {
		recordID = strconv.FormatUint(record.RecordID, 10)
	}

	pairs := []struct {
		key   string
		value string
	}{
		{"channel", record.Channel},
		{"provider", record.Provider},
		{"level", record.LevelDisplay},
		{"record_id", recordID},
		{"machine", record.Machine},
		{"user", record.UserID},
	}

	var b strings.Builder
	b.WriteByte('[')
	b.WriteString(sdID)
	for _, p := range pairs {
		if p.value == "" {
			continue
		}
		b.WriteByte(' ')
		b.WriteString(p.key)
		b.WriteString(`="`)
		b.WriteString(escapeSDValue(p.value))
		b.WriteByte('"')
	}
	b.WriteByte(']')
	return b.String()
}

func escapeSDValue(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `"`, `\"`)
	return v
}

func orDash(v string) string {
	if v == "" {
		return "-"
	}
	return v
}
