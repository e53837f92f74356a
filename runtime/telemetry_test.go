package runtime

import (
	"direct-chat/domain/event"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTelemetry_Emit_Drops_When_Full(t *testing.T) {
	req := require.New(t)
	telemetry := NewTelemetry(1)

	// When
	telemetry.Emit(event.MessageSentType, event.MessageSent{Sender: "alice"})
	telemetry.Emit(event.MessageSentType, event.MessageSent{Sender: "bob"})

	// Then
	req.Len(telemetry.Events(), 1)
	evt := <-telemetry.Events()
	req.Equal(event.MessageSentType, evt.Type)
	req.Equal("alice", evt.Payload.(event.MessageSent).Sender)
	req.False(evt.CreatedAt.IsZero())
}

func TestTelemetry_Nil_Discards(t *testing.T) {
	var telemetry *Telemetry
	require.NotPanics(t, func() { telemetry.Emit(event.PushDroppedType, event.PushDropped{}) })
}
