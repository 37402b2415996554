package audit

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Publisher accepts finished request records for asynchronous persistence.
type Publisher interface {
	Publish(record Record)
}

// droppedRecords is shared by all publishers; registration happens once.
var droppedRecords = promauto.NewCounter(prometheus.CounterOpts{
	Name: "fieldgate_audit_records_dropped_total",
	Help: "Audit records dropped because the publisher buffer was full",
})

// ChannelPublisher buffers records on a channel drained by the Worker. When
// the buffer is full the record is dropped, counted and logged; the audit
// pipeline must never block or fail a response.
type ChannelPublisher struct {
	inbox  chan Record
	logger *slog.Logger
}

// NewChannelPublisher creates a publisher with the given buffer size.
func NewChannelPublisher(buffer int, logger *slog.Logger) *ChannelPublisher {
	return &ChannelPublisher{
		inbox:  make(chan Record, buffer),
		logger: logger,
	}
}

// Publish implements Publisher.
func (p *ChannelPublisher) Publish(record Record) {
	select {
	case p.inbox <- record:
	default:
		droppedRecords.Inc()
		p.logger.Warn("audit buffer full, dropping record",
			"action", record.Action,
			"path", record.Path,
			"request_id", record.RequestID,
		)
	}
}

// Records exposes the inbox for the worker.
func (p *ChannelPublisher) Records() <-chan Record {
	return p.inbox
}
