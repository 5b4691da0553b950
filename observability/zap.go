package observability

import (
	"context"
	"maps"
	"slices"

	"go.uber.org/zap"
)

// ZapObserver emits events to a zap.Logger with the same shape as
// SlogObserver: the event type is the message, the source and Data keys are
// fields.
type ZapObserver struct {
	logger *zap.Logger
}

// NewZapObserver creates a ZapObserver that emits to the given logger.
func NewZapObserver(logger *zap.Logger) *ZapObserver {
	return &ZapObserver{logger: logger}
}

func (o *ZapObserver) OnEvent(_ context.Context, event Event) {
	ce := o.logger.Check(event.Level.ZapLevel(), string(event.Type))
	if ce == nil {
		return
	}

	fields := make([]zap.Field, 0, len(event.Data)+1)
	fields = append(fields, zap.String("source", event.Source))
	for _, k := range slices.Sorted(maps.Keys(event.Data)) {
		fields = append(fields, zap.Any(k, event.Data[k]))
	}
	if !event.Timestamp.IsZero() {
		ce.Time = event.Timestamp
	}
	ce.Write(fields...)
}
