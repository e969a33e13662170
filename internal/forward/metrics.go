package forward

import (
	"context"
	"log"
	"sync"
	"time"
)

// Metrics tracks the pipeline counters. All updates go through the
// mutex; GetMetricsStamp returns a consistent copy.
type Metrics struct {
	RecordsEnqueued int
	RecordsDropped  int
	RecordsSent     int
	SendErrors      int
	FormatErrors    int
	BookmarkErrors  int
	QueuedRecords   int
	QueueCapacity   int
	ChannelsActive  int
	ChannelsFailed  int
	mu              sync.RWMutex
}

func (m *Metrics) IncRecordsEnqueued() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RecordsEnqueued++
	m.QueuedRecords++
}

func (m *Metrics) IncRecordsDropped() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RecordsDropped++
}

func (m *Metrics) IncRecordsSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RecordsSent++
}

func (m *Metrics) IncSendErrors() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendErrors++
}

func (m *Metrics) IncFormatErrors() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FormatErrors++
}

func (m *Metrics) IncBookmarkErrors() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.BookmarkErrors++
}

func (m *Metrics) DecQueuedRecords(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.QueuedRecords -= n
}

func (m *Metrics) IncChannelsActive() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ChannelsActive++
}

func (m *Metrics) DecChannelsActive() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ChannelsActive--
}

func (m *Metrics) IncChannelsFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ChannelsFailed++
}

func (m *Metrics) GetMetricsStamp() Metrics {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Metrics{
		RecordsEnqueued: m.RecordsEnqueued,
		RecordsDropped:  m.RecordsDropped,
		RecordsSent:     m.RecordsSent,
		SendErrors:      m.SendErrors,
		FormatErrors:    m.FormatErrors,
		BookmarkErrors:  m.BookmarkErrors,
		QueuedRecords:   m.QueuedRecords,
		QueueCapacity:   m.QueueCapacity,
		ChannelsActive:  m.ChannelsActive,
		ChannelsFailed:  m.ChannelsFailed,
	}
}

// RunReporter logs a periodic summary line until the context is
// cancelled. Run it in its own goroutine.
func (m *Metrics) RunReporter(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			stamp := m.GetMetricsStamp()
			log.Printf(
				"Metrics: channels active=%d failed=%d, queue=%d/%d (%d%%), enqueued=%d dropped=%d sent=%d, errors send=%d format=%d bookmark=%d",
				stamp.ChannelsActive, stamp.ChannelsFailed,
				stamp.QueuedRecords, stamp.QueueCapacity, int(m.GetQueueUsage()*100),
				stamp.RecordsEnqueued, stamp.RecordsDropped, stamp.RecordsSent,
				stamp.SendErrors, stamp.FormatErrors, stamp.BookmarkErrors,
			)
		case <-ctx.Done():
			return
		}
	}
}

func (m *Metrics) GetQueueUsage() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.QueueCapacity == 0 {
		return 0
	}
	return float64(m.QueuedRecords) / float64(m.QueueCapacity)
}
