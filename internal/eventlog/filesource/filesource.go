// Package filesource implements eventlog.Source on top of JSON-lines
// log files, one file per channel, tailed with hpcloud/tail. The
// resume token is the byte offset just past the last delivered line.
package filesource

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/hpcloud/tail"

	"github.com/evlog/forwarder/internal/eventlog"
)

type Source struct {
	root string
}

func New(root string) *Source {
	return &Source{root: root}
}

// Subscribe tails <root>/<channel>.log from the offset encoded in
// resumeToken, or from the start when the token is empty. A missing
// file is a subscription-start failure for that channel only.
func (s *Source) Subscribe(channel, resumeToken string, cb eventlog.Callback) (eventlog.Subscription, error) {
	var offset int64
	if resumeToken != "" {
		parsed, err := strconv.ParseInt(resumeToken, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad resume token %q for channel %s: %w", resumeToken, channel, err)
		}
		offset = parsed
	}

	path := filepath.Join(s.root, channel+".log")
	t, err := tail.TailFile(path, tail.Config{
		Follow:    true,
		ReOpen:    true,
		Poll:      true,
		MustExist: true,
		Location:  &tail.SeekInfo{Offset: offset, Whence: io.SeekStart},
		Logger:    tail.DiscardingLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to tail %s: %w", path, err)
	}

	sub := &subscription{t: t}
	go sub.deliver(channel, resumeToken, cb)
	return sub, nil
}

type subscription struct {
	t    *tail.Tail
	once sync.Once
}

// deliver runs in its own goroutine, which keeps per-channel delivery
// serial. Records arrive in file order.
func (sub *subscription) deliver(channel, lastToken string, cb eventlog.Callback) {
	var recordID uint64
	for line := range sub.t.Lines {
		if line == nil {
			continue
		}
		if line.Err != nil {
			log.Printf("Error reading channel %s: %v", channel, line.Err)
			continue
		}

		recordID++
		record := parseLine(channel, line.Text, recordID)

		if offset, err := sub.t.Tell(); err == nil {
			lastToken = strconv.FormatInt(offset, 10)
		}
		cb(record, lastToken)
	}
}

func (sub *subscription) Close() error {
	var err error
	sub.once.Do(func() {
		err = sub.t.Stop()
		sub.t.Cleanup()
	})
	return err
}

// fileRecord is the JSON-lines shape of one record on disk.
type fileRecord struct {
	Provider     string    `json:"provider"`
	Level        int       `json:"level"`
	LevelDisplay string    `json:"level_display"`
	EventID      int       `json:"event_id"`
	RecordID     uint64    `json:"record_id"`
	ProcessID    int       `json:"process_id"`
	ThreadID     int       `json:"thread_id"`
	UserID       string    `json:"user"`
	Machine      string    `json:"machine"`
	Opcode       string    `json:"opcode"`
	Task         string    `json:"task"`
	Keywords     []string  `json:"keywords"`
	Created      time.Time `json:"created"`
	Message      string    `json:"message"`
}

// parseLine decodes one JSON line. A line that is not valid JSON still
// becomes a record, carrying the raw text as its message.
func parseLine(channel, text string, fallbackID uint64) *eventlog.Record {
	var fr fileRecord
	if err := json.Unmarshal([]byte(text), &fr); err != nil {
		return &eventlog.Record{
			Channel:  channel,
			RecordID: fallbackID,
			Created:  time.Now(),
			Message:  text,
		}
	}

	record := &eventlog.Record{
		Channel:      channel,
		Provider:     fr.Provider,
		Level:        fr.Level,
		LevelDisplay: fr.LevelDisplay,
		EventID:      fr.EventID,
		RecordID:     fr.RecordID,
		ProcessID:    fr.ProcessID,
		ThreadID:     fr.ThreadID,
		UserID:       fr.UserID,
		Machine:      fr.Machine,
		Opcode:       fr.Opcode,
		Task:         fr.Task,
		Keywords:     fr.Keywords,
		Created:      fr.Created,
		Message:      fr.Message,
	}
	if record.RecordID == 0 {
		record.RecordID = fallbackID
	}
	if record.Created.IsZero() {
		record.Created = time.Now()
	}
	return record
}
