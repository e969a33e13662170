package dispatch

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/evlog/forwarder/internal/forward"
)

// Dispatcher is the single consumer of the shared queue. Each interval
// it drains up to SendBatchSize records, formats and sends each, and
// drops individual failures without halting the batch. There is no
// retry and no backpressure toward producers; delivery is best-effort.
type Dispatcher struct {
	ctx       context.Context
	cancel    context.CancelFunc
	queue     *forward.Queue
	formatter forward.Formatter
	sender    forward.Sender
	config    forward.Config
	metrics   *forward.Metrics
	wg        sync.WaitGroup
}

func NewDispatcher(ctx context.Context, queue *forward.Queue, formatter forward.Formatter, sender forward.Sender, config forward.Config, metrics *forward.Metrics) *Dispatcher {
	nCtx, cancel := context.WithCancel(ctx)
	return &Dispatcher{
		ctx:       nCtx,
		cancel:    cancel,
		queue:     queue,
		formatter: formatter,
		sender:    sender,
		config:    config,
		metrics:   metrics,
	}
}

func (d *Dispatcher) Start() {
	d.wg.Add(1)
	go d.run()
}

// Stop cancels the loop and waits for the current iteration to finish.
// Records still queued are not drained.
func (d *Dispatcher) Stop() {
	d.cancel()
	d.wg.Wait()
}

func (d *Dispatcher) run() {
	defer d.wg.Done()

	ticker := time.NewTicker(d.config.SendInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			d.DispatchBatch()
		case <-d.ctx.Done():
			return
		}
	}
}

// DispatchBatch processes one batch: pop up to SendBatchSize records,
// format and send each. Exported for tests driving iterations directly.
func (d *Dispatcher) DispatchBatch() int {
	batch := d.queue.PopBatch(d.config.SendBatchSize)
	if len(batch) == 0 {
		return 0
	}
	d.metrics.DecQueuedRecords(len(batch))

	for _, record := range batch {
		line, err := d.formatter.Format(record)
		if err != nil {
			log.Printf("Failed to format record %d from %s: %v", record.RecordID, record.Channel, err)
			d.metrics.IncFormatErrors()
			continue
		}

		if err := d.sender.Send(line); err != nil {
			log.Printf("Failed to send record %d from %s: %v", record.RecordID, record.Channel, err)
			d.metrics.IncSendErrors()
			continue
		}

		d.metrics.IncRecordsSent()
	}

	return len(batch)
}
