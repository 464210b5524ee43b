package watcher

import (
	"sync/atomic"
	"time"
)

type WatcherMetrics struct {
	ticks          int64
	batches        int64
	eventsByOp     [Renamed + 1]int64
	scanErrors     int64
	droppedErrors  int64
	entriesWatched int64
	lastTick       atomic.Int64
	lastScan       atomic.Int64
}

func NewWatcherMetrics() *WatcherMetrics {
	return &WatcherMetrics{}
}

func (m *WatcherMetrics) RecordScan(entries int, duration time.Duration) {
	atomic.StoreInt64(&m.entriesWatched, int64(entries))
	m.lastScan.Store(int64(duration))
}

func (m *WatcherMetrics) RecordTick() {
	atomic.AddInt64(&m.ticks, 1)
	m.lastTick.Store(time.Now().UnixNano())
}

func (m *WatcherMetrics) RecordBatch(batch Batch) {
	atomic.AddInt64(&m.batches, 1)
	for _, ev := range batch.Events {
		if ev.Op <= Renamed {
			atomic.AddInt64(&m.eventsByOp[ev.Op], int64(len(ev.Files)))
		}
	}
}

func (m *WatcherMetrics) RecordScanError() {
	atomic.AddInt64(&m.scanErrors, 1)
}

func (m *WatcherMetrics) RecordDroppedError() {
	atomic.AddInt64(&m.droppedErrors, 1)
}

func (m *WatcherMetrics) GetStats() map[string]interface{} {
	var lastTick time.Time
	if ns := m.lastTick.Load(); ns != 0 {
		lastTick = time.Unix(0, ns)
	}
	return map[string]interface{}{
		"ticks":           atomic.LoadInt64(&m.ticks),
		"batches":         atomic.LoadInt64(&m.batches),
		"created":         atomic.LoadInt64(&m.eventsByOp[Created]),
		"modified":        atomic.LoadInt64(&m.eventsByOp[Modified]),
		"deleted":         atomic.LoadInt64(&m.eventsByOp[Deleted]),
		"renamed":         atomic.LoadInt64(&m.eventsByOp[Renamed]),
		"scan_errors":     atomic.LoadInt64(&m.scanErrors),
		"dropped_errors":  atomic.LoadInt64(&m.droppedErrors),
		"entries_watched": atomic.LoadInt64(&m.entriesWatched),
		"last_scan":       time.Duration(m.lastScan.Load()),
		"last_tick_time":  lastTick,
	}
}
