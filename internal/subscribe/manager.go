package subscribe

import (
	"context"
	"log"
	"sync"

	"github.com/evlog/forwarder/internal/bookmark"
	"github.com/evlog/forwarder/internal/eventlog"
	"github.com/evlog/forwarder/internal/forward"
)

// State is the lifecycle of one channel subscription.
type State int

const (
	Stopped State = iota
	Starting
	Active
	Stopping
)

func (s State) String() string {
	switch s {
	case Starting:
		return "starting"
	case Active:
		return "active"
	case Stopping:
		return "stopping"
	default:
		return "stopped"
	}
}

// Manager owns one subscription per configured channel. Each delivered
// record is enqueued onto the shared queue and the channel's bookmark
// is persisted immediately, ahead of the actual send. A channel whose
// subscription fails to start stays stopped until the process restarts;
// the other channels are unaffected.
type Manager struct {
	ctx      context.Context
	cancel   context.CancelFunc
	source   eventlog.Source
	store    *bookmark.Store
	queue    *forward.Queue
	metrics  *forward.Metrics
	channels []string

	mu   sync.Mutex
	subs map[string]*channelSub
}

type channelSub struct {
	state State
	sub   eventlog.Subscription
}

func NewManager(ctx context.Context, source eventlog.Source, store *bookmark.Store, queue *forward.Queue, metrics *forward.Metrics, channels []string) *Manager {
	nCtx, cancel := context.WithCancel(ctx)
	return &Manager{
		ctx:      nCtx,
		cancel:   cancel,
		source:   source,
		store:    store,
		queue:    queue,
		metrics:  metrics,
		channels: channels,
		subs:     make(map[string]*channelSub),
	}
}

// Start opens every configured channel. It never fails as a whole: a
// channel that cannot start is logged and left stopped.
func (m *Manager) Start() {
	for _, channel := range m.channels {
		m.startChannel(channel)
	}
}

func (m *Manager) startChannel(channel string) {
	cs := &channelSub{state: Starting}
	m.mu.Lock()
	m.subs[channel] = cs
	m.mu.Unlock()

	token := ""
	if bm, ok := m.store.Load(channel); ok {
		token = string(bm)
	}

	sub, err := m.source.Subscribe(channel, token, func(record *eventlog.Record, resumeToken string) {
		m.onRecord(channel, record, resumeToken)
	})
	if err != nil {
		log.Printf("Failed to subscribe to channel %s: %v", channel, err)
		m.metrics.IncChannelsFailed()
		m.mu.Lock()
		cs.state = Stopped
		m.mu.Unlock()
		return
	}

	m.mu.Lock()
	cs.sub = sub
	cs.state = Active
	m.mu.Unlock()
	m.metrics.IncChannelsActive()
	log.Printf("Subscribed to channel %s (resume token: %q)", channel, token)
}

// onRecord is the per-channel delivery callback. The bookmark advances
// on every delivered record, before the record is transmitted; a crash
// between here and the send loses the record rather than duplicating
// it on restart.
func (m *Manager) onRecord(channel string, record *eventlog.Record, resumeToken string) {
	select {
	case <-m.ctx.Done():
		return
	default:
	}

	if err := m.queue.Enqueue(record); err != nil {
		log.Printf("Queue full (%d/%d), dropping record %d from %s",
			m.queue.Len(), m.queue.Cap(), record.RecordID, channel)
		m.metrics.IncRecordsDropped()
	} else {
		m.metrics.IncRecordsEnqueued()
	}

	if err := m.store.Update(channel, bookmark.Bookmark(resumeToken)); err != nil {
		log.Printf("Failed to persist bookmark for %s: %v", channel, err)
		m.metrics.IncBookmarkErrors()
	}
}

// Stop disables every subscription so no further records are enqueued.
// It does not drain the queue; that is the dispatcher's loss window by
// design.
func (m *Manager) Stop() {
	m.cancel()

	m.mu.Lock()
	defer m.mu.Unlock()
	for channel, cs := range m.subs {
		if cs.state != Active {
			continue
		}
		cs.state = Stopping
		if err := cs.sub.Close(); err != nil {
			log.Printf("Failed to close subscription for %s: %v", channel, err)
		}
		cs.state = Stopped
		m.metrics.DecChannelsActive()
	}
}

// ChannelState reports the lifecycle state of one channel.
func (m *Manager) ChannelState(channel string) State {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cs, ok := m.subs[channel]; ok {
		return cs.state
	}
	return Stopped
}
