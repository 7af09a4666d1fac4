package recstore

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordAppend is called after each Append. bytes is the number of bytes
	// written to the file, including the header when the store was created.
	RecordAppend(bytes int, duration time.Duration, err error)

	// RecordScan is called when a scan finishes. records is the number of
	// records yielded before it stopped.
	RecordScan(records int, duration time.Duration, err error)

	// RecordRepair is called after a Repair that truncated the store.
	RecordRepair(truncated int64)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordAppend(int, time.Duration, error) {}
func (NoopMetricsCollector) RecordScan(int, time.Duration, error)   {}
func (NoopMetricsCollector) RecordRepair(int64)                     {}

// BasicMetricsCollector provides simple in-memory metrics collection.
type BasicMetricsCollector struct {
	AppendCount      atomic.Int64
	AppendErrors     atomic.Int64
	AppendBytes      atomic.Int64
	AppendTotalNanos atomic.Int64
	ScanCount        atomic.Int64
	ScanErrors       atomic.Int64
	ScanCorrupt      atomic.Int64
	ScanRecords      atomic.Int64
	RepairCount      atomic.Int64
	RepairBytes      atomic.Int64
}

// RecordAppend implements MetricsCollector.
func (b *BasicMetricsCollector) RecordAppend(bytes int, duration time.Duration, err error) {
	b.AppendCount.Add(1)
	b.AppendBytes.Add(int64(bytes))
	b.AppendTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.AppendErrors.Add(1)
	}
}

// RecordScan implements MetricsCollector.
func (b *BasicMetricsCollector) RecordScan(records int, _ time.Duration, err error) {
	b.ScanCount.Add(1)
	b.ScanRecords.Add(int64(records))
	if err != nil {
		b.ScanErrors.Add(1)
		if isCorrupt(err) {
			b.ScanCorrupt.Add(1)
		}
	}
}

// RecordRepair implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRepair(truncated int64) {
	b.RepairCount.Add(1)
	b.RepairBytes.Add(truncated)
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	stats := BasicMetricsStats{
		AppendCount:  b.AppendCount.Load(),
		AppendErrors: b.AppendErrors.Load(),
		AppendBytes:  b.AppendBytes.Load(),
		ScanCount:    b.ScanCount.Load(),
		ScanErrors:   b.ScanErrors.Load(),
		ScanCorrupt:  b.ScanCorrupt.Load(),
		ScanRecords:  b.ScanRecords.Load(),
		RepairCount:  b.RepairCount.Load(),
		RepairBytes:  b.RepairBytes.Load(),
	}
	if stats.AppendCount > 0 {
		stats.AppendAvgNanos = b.AppendTotalNanos.Load() / stats.AppendCount
	}
	return stats
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	AppendCount    int64
	AppendErrors   int64
	AppendBytes    int64
	AppendAvgNanos int64
	ScanCount      int64
	ScanErrors     int64
	ScanCorrupt    int64
	ScanRecords    int64
	RepairCount    int64
	RepairBytes    int64
}
