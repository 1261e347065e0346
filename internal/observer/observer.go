// Package observer decouples protocol observability from protocol logic:
// nodes emit structured events through an injectable hook, and sinks decide
// what to do with them.
package observer

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/devrev/rangekv/internal/model"
)

// EventType identifies a point in a command's lifecycle.
type EventType string

const (
	EventReceived  EventType = "received"
	EventForwarded EventType = "forwarded"
	EventProposed  EventType = "proposed"
	EventCommitted EventType = "committed"
	EventFailed    EventType = "failed"

	// EventLagging marks a replica that failed to acknowledge an append;
	// the event's NodeID is the lagging replica, not the emitting node.
	EventLagging EventType = "lagging"
)

// Event is a single protocol occurrence.
type Event struct {
	Type      EventType
	RequestID uuid.UUID
	NodeID    model.NodeID
	RangeID   model.RangeID
	Op        model.OperationType
	Key       int
	Seq       uint64
	Err       error
}

// Observer receives protocol events. Implementations must be safe for
// concurrent use; Observe is called from node goroutines and must not
// block.
type Observer interface {
	Observe(Event)
}

// Nop discards all events.
type Nop struct{}

func (Nop) Observe(Event) {}

// Multi fans an event out to several observers.
type Multi []Observer

func (m Multi) Observe(e Event) {
	for _, o := range m {
		o.Observe(e)
	}
}

// Log writes events to a zap logger.
type Log struct {
	logger *zap.Logger
}

// NewLog creates a logging observer.
func NewLog(logger *zap.Logger) *Log {
	return &Log{logger: logger}
}

// Observe implements Observer.
func (l *Log) Observe(e Event) {
	fields := []zap.Field{
		zap.String("request_id", e.RequestID.String()),
		zap.Int("node_id", int(e.NodeID)),
		zap.Int("range_id", int(e.RangeID)),
		zap.String("op", string(e.Op)),
		zap.Int("key", e.Key),
	}
	if e.Seq != 0 {
		fields = append(fields, zap.Uint64("seq", e.Seq))
	}
	if e.Err != nil {
		fields = append(fields, zap.Error(e.Err))
		l.logger.Warn("command "+string(e.Type), fields...)
		return
	}
	l.logger.Debug("command "+string(e.Type), fields...)
}
