package runtime

import (
	"context"
	"direct-chat/contract"
	"direct-chat/domain/event"
	"direct-chat/errors"
	"direct-chat/mocks"
	"log/slog"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestFanout_Deliver_To_Online_User(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	registry := mocks.NewMockIRegistry(ctrl)
	sink := mocks.NewMockEventSink(ctrl)
	evt := event.MessageDelivered{Sender: "alice", Content: "hi", At: time.Now()}

	registry.EXPECT().Lookup("bob").Return(sink, true)
	sink.EXPECT().Consume(gomock.Any(), evt).DoAndReturn(func(ctx context.Context, _ event.DomainEvent) error {
		_, ok := ctx.Deadline()
		req.True(ok, "sink call must be bounded")
		return nil
	})

	fanout := NewFanout(log, registry, time.Second)

	req.True(fanout.Deliver(context.Background(), "bob", evt))
}

func TestFanout_Deliver_To_Offline_User(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	registry := mocks.NewMockIRegistry(ctrl)

	registry.EXPECT().Lookup("bob").Return(nil, false)

	fanout := NewFanout(log, registry, time.Second)

	req.False(fanout.Deliver(context.Background(), "bob", event.MessageDelivered{Sender: "alice"}))
}

func TestFanout_Deliver_Sink_Failure(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	registry := mocks.NewMockIRegistry(ctrl)
	sink := mocks.NewMockEventSink(ctrl)

	registry.EXPECT().Lookup("bob").Return(sink, true)
	sink.EXPECT().Consume(gomock.Any(), gomock.Any()).Return(errors.ErrSinkFull)

	telemetry := NewTelemetry(4)
	fanout := NewFanout(log, registry, time.Second).WithTelemetry(telemetry)

	req.False(fanout.Deliver(context.Background(), "bob", event.MessageDelivered{Sender: "alice"}))
	req.Len(telemetry.Events(), 1)
	evt := <-telemetry.Events()
	req.Equal(event.PushDroppedType, evt.Type)
	req.Equal(event.PushDropped{Username: "bob", Event: "event.MessageDelivered"}, evt.Payload)
}

func TestFanout_Broadcast_Continues_After_Failure(t *testing.T) {
	ctrl := gomock.NewController(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	registry := mocks.NewMockIRegistry(ctrl)
	alice := mocks.NewMockEventSink(ctrl)
	bob := mocks.NewMockEventSink(ctrl)
	carol := mocks.NewMockEventSink(ctrl)
	evt := event.PresenceChanged{Online: []string{"alice", "bob", "carol"}}

	registry.EXPECT().Sinks().Return(map[string]contract.EventSink{
		"alice": alice,
		"bob":   bob,
		"carol": carol,
	})
	alice.EXPECT().Consume(gomock.Any(), evt).Return(nil)
	bob.EXPECT().Consume(gomock.Any(), evt).Return(errors.ErrSinkClosed)
	carol.EXPECT().Consume(gomock.Any(), evt).Return(nil)

	fanout := NewFanout(log, registry, time.Second)
	fanout.Broadcast(context.Background(), evt)
}
