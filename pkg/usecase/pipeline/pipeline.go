package pipeline

import (
	"context"

	"github.com/jeni-ai/jeni/pkg/model"
	"github.com/jeni-ai/jeni/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// Summary is the externally observable result of one batch run.
type Summary struct {
	ProcessedCount int `json:"processed_count"`
	TotalRecords   int `json:"total_records"`
}

// Metrics receives pipeline counters. Implementations must be safe for
// concurrent use.
type Metrics interface {
	RecordProcessed()
	RecordSkipped()
	FieldsWritten(n int)
}

type nopMetrics struct{}

func (nopMetrics) RecordProcessed()    {}
func (nopMetrics) RecordSkipped()      {}
func (nopMetrics) FieldsWritten(n int) {}

// Driver runs the batch pipeline: ingest each record, then write its fact
// fields. One record's failure never halts the batch loop.
type Driver struct {
	ingestor *Ingestor
	writer   *Writer
	metrics  Metrics
}

// DriverOption configures a Driver
type DriverOption func(*Driver)

// WithMetrics attaches pipeline counters to the driver
func WithMetrics(m Metrics) DriverOption {
	return func(d *Driver) {
		d.metrics = m
	}
}

// NewDriver creates a batch pipeline driver
func NewDriver(ingestor *Ingestor, writer *Writer, opts ...DriverOption) *Driver {
	d := &Driver{
		ingestor: ingestor,
		writer:   writer,
		metrics:  nopMetrics{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// RunBatch processes every record of a batch and returns the well-formed
// count summary. It never returns an error: a record that fails at any
// stage is logged, counted as skipped, and dropped from this batch.
// Redelivery, if any, is the upstream queue's concern.
func (d *Driver) RunBatch(ctx context.Context, records []model.QueueRecord) Summary {
	summary := Summary{TotalRecords: len(records)}

	for idx := range records {
		if err := d.process(ctx, &records[idx]); err != nil {
			logging.From(ctx).Warn("skipping record", "index", idx, "error", err)
			d.metrics.RecordSkipped()
			continue
		}
		summary.ProcessedCount++
		d.metrics.RecordProcessed()
	}

	return summary
}

// process runs one record through ingest and write. A record counts as
// processed once it reaches the write stage; individual field failures are
// handled inside the writer.
func (d *Driver) process(ctx context.Context, record *model.QueueRecord) error {
	event, err := d.ingestor.Ingest(ctx, record)
	if err != nil {
		return err
	}

	info := event.UserInfo()
	if len(info) == 0 {
		return goerr.New("event carries no user info")
	}

	if event.MemoryID == "" {
		return goerr.New("event carries no memory id")
	}

	attempted := d.writer.Write(ctx, event.MemoryID, event.Actor(), info, event.Timestamp)
	d.metrics.FieldsWritten(attempted)

	logging.From(ctx).Info("stored user info",
		"memory_id", event.MemoryID, "actor_id", event.Actor(), "fields", attempted)
	return nil
}
