package gateway

import (
	"context"
	"fmt"

	"taskline/domain/event"
)

var errSinkFull = fmt.Errorf("connection buffer full")

// Sink is one websocket connection's delivery channel.
type Sink struct {
	ConnectedUserEvent chan event.DomainEvent
}

func NewSink(bufferSize int) *Sink {
	return &Sink{ConnectedUserEvent: make(chan event.DomainEvent, bufferSize)}
}

// Consume is called by the fan-out engine. It redirects the event through
// the channel owned by this connection; the write pump takes it from
// there. A full buffer drops the event rather than stalling fan-out.
func (s *Sink) Consume(ctx context.Context, e event.DomainEvent) error {
	select {
	case s.ConnectedUserEvent <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return errSinkFull
	}
}
