package sink

import (
	"context"
	"sync"
	"time"

	"FlowSight/internal/model"

	"github.com/sirupsen/logrus"
)

// rowWireSize approximates the columnar width of one canonical row, used for
// the byte-threshold trigger without serializing twice.
const rowWireSize = 70

// commitTimeout bounds a single commit attempt against the durable store.
const commitTimeout = 20 * time.Second

// Batcher buffers canonical rows and flushes them to a RowWriter when the
// row count, the estimated byte size or the flush period is reached. A final
// best-effort flush runs on Stop. A failed commit drops the batch and keeps
// ingestion live.
type Batcher struct {
	writer   model.RowWriter
	maxRows  int
	maxBytes int
	period   time.Duration

	mu   sync.Mutex
	rows []model.CanonicalRow

	flushMu sync.Mutex

	done chan struct{}
	wg   sync.WaitGroup
}

// NewBatcher creates a batcher in front of writer.
func NewBatcher(writer model.RowWriter, maxRows, maxBytes int, period time.Duration) *Batcher {
	return &Batcher{
		writer:   writer,
		maxRows:  maxRows,
		maxBytes: maxBytes,
		period:   period,
		done:     make(chan struct{}),
	}
}

// Start launches the periodic flush loop.
func (b *Batcher) Start() {
	b.wg.Add(1)
	go b.run()
}

// Stop flushes whatever is buffered and shuts the flush loop down.
func (b *Batcher) Stop() {
	close(b.done)
	b.wg.Wait()
}

func (b *Batcher) run() {
	defer b.wg.Done()

	ticker := time.NewTicker(b.period)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			b.Flush()
		case <-b.done:
			b.Flush()
			return
		}
	}
}

// Write appends one fully formed row to the buffer and flushes synchronously
// when a size threshold is reached.
func (b *Batcher) Write(row model.CanonicalRow) {
	b.mu.Lock()
	b.rows = append(b.rows, row)
	full := len(b.rows) >= b.maxRows || len(b.rows)*rowWireSize >= b.maxBytes
	b.mu.Unlock()

	if full {
		b.Flush()
	}
}

// Flush commits the buffered rows in write order. On commit failure the
// batch is dropped: losing a batch of flow telemetry is preferred over
// halting ingestion with unbounded backpressure.
func (b *Batcher) Flush() {
	b.flushMu.Lock()
	defer b.flushMu.Unlock()

	b.mu.Lock()
	rows := b.rows
	b.rows = nil
	b.mu.Unlock()

	if len(rows) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commitTimeout)
	defer cancel()

	if err := b.writer.Commit(ctx, rows); err != nil {
		logrus.Warnf("Dropping batch of %d rows after failed commit: %v", len(rows), err)
		return
	}
	logrus.Debugf("Committed %d rows", len(rows))
}

// Len reports the number of buffered rows.
func (b *Batcher) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.rows)
}
