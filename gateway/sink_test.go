package gateway

import (
	"context"
	"testing"

	"taskline/domain/event"

	"github.com/stretchr/testify/require"
)

func TestSink_Consume_Delivers(t *testing.T) {
	req := require.New(t)
	sink := NewSink(1)
	notification := event.NotificationPosted{Conversation: "conv-1"}

	req.NoError(sink.Consume(context.Background(), notification))
	req.Equal(notification, <-sink.ConnectedUserEvent)
}

func TestSink_Consume_Drops_When_Full(t *testing.T) {
	req := require.New(t)
	sink := NewSink(1)
	notification := event.NotificationPosted{Conversation: "conv-1"}

	// Given the connection buffer is full
	req.NoError(sink.Consume(context.Background(), notification))

	// When another event arrives before the write pump drains
	err := sink.Consume(context.Background(), notification)

	// Then fan-out is not stalled, the event is dropped
	req.ErrorIs(err, errSinkFull)
}
