package sink

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"FlowSight/internal/model"
)

// memWriter records every committed batch.
type memWriter struct {
	mu      sync.Mutex
	batches [][]model.CanonicalRow
	fail    bool
}

func (w *memWriter) Commit(_ context.Context, rows []model.CanonicalRow) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fail {
		return errors.New("store unavailable")
	}
	batch := make([]model.CanonicalRow, len(rows))
	copy(batch, rows)
	w.batches = append(w.batches, batch)
	return nil
}

func (w *memWriter) Close() error { return nil }

func (w *memWriter) snapshot() [][]model.CanonicalRow {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([][]model.CanonicalRow(nil), w.batches...)
}

func rowWithPort(port uint16) model.CanonicalRow {
	return model.CanonicalRow{ClientPort: port}
}

func TestFlushOnRowCount(t *testing.T) {
	writer := &memWriter{}
	b := NewBatcher(writer, 3, 1024*1024, time.Hour)

	// Writing exactly the row threshold triggers one flush of all 3 rows,
	// in write order.
	b.Write(rowWithPort(1))
	b.Write(rowWithPort(2))
	b.Write(rowWithPort(3))

	batches := writer.snapshot()
	if len(batches) != 1 {
		t.Fatalf("got %d flushes, want 1", len(batches))
	}
	if len(batches[0]) != 3 {
		t.Fatalf("flushed %d rows, want 3", len(batches[0]))
	}
	for i, row := range batches[0] {
		if row.ClientPort != uint16(i+1) {
			t.Errorf("row %d has port %d, write order not preserved", i, row.ClientPort)
		}
	}
	if b.Len() != 0 {
		t.Errorf("buffer holds %d rows after flush, want 0", b.Len())
	}
}

func TestFlushOnByteSize(t *testing.T) {
	writer := &memWriter{}
	b := NewBatcher(writer, 1000, 2*rowWireSize, time.Hour)

	b.Write(rowWithPort(1))
	if len(writer.snapshot()) != 0 {
		t.Fatal("flushed below the byte threshold")
	}
	b.Write(rowWithPort(2))

	batches := writer.snapshot()
	if len(batches) != 1 || len(batches[0]) != 2 {
		t.Fatalf("got %v flushes, want one flush of 2 rows", len(batches))
	}
}

func TestFlushOnPeriod(t *testing.T) {
	writer := &memWriter{}
	b := NewBatcher(writer, 1000, 1024*1024, 50*time.Millisecond)
	b.Start()
	defer b.Stop()

	b.Write(rowWithPort(1))
	b.Write(rowWithPort(2))

	deadline := time.After(500 * time.Millisecond)
	for {
		if batches := writer.snapshot(); len(batches) > 0 {
			if len(batches[0]) != 2 {
				t.Fatalf("periodic flush carried %d rows, want 2", len(batches[0]))
			}
			return
		}
		select {
		case <-deadline:
			t.Fatal("timed out waiting for periodic flush")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestStopFlushesRemainder(t *testing.T) {
	writer := &memWriter{}
	b := NewBatcher(writer, 1000, 1024*1024, time.Hour)
	b.Start()

	b.Write(rowWithPort(1))
	b.Stop()

	batches := writer.snapshot()
	if len(batches) != 1 || len(batches[0]) != 1 {
		t.Fatalf("final flush missing, got %d batches", len(batches))
	}
}

func TestFailedCommitDropsBatch(t *testing.T) {
	writer := &memWriter{fail: true}
	b := NewBatcher(writer, 2, 1024*1024, time.Hour)

	// 1. The first batch fails and is dropped.
	b.Write(rowWithPort(1))
	b.Write(rowWithPort(2))
	if b.Len() != 0 {
		t.Fatalf("buffer holds %d rows after failed flush, want 0", b.Len())
	}

	// 2. The store recovers; later rows commit without the lost batch.
	writer.mu.Lock()
	writer.fail = false
	writer.mu.Unlock()

	b.Write(rowWithPort(3))
	b.Write(rowWithPort(4))

	batches := writer.snapshot()
	if len(batches) != 1 {
		t.Fatalf("got %d successful flushes, want 1", len(batches))
	}
	if len(batches[0]) != 2 || batches[0][0].ClientPort != 3 {
		t.Errorf("recovered batch = %v, want rows 3 and 4 only", batches[0])
	}
}
