package domain

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/arbuzhub/casino-backend/internal/entity"
	"github.com/arbuzhub/casino-backend/internal/repository"
	"github.com/arbuzhub/casino-backend/pkg/pubsub"
	"github.com/arbuzhub/casino-backend/pkg/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func Test_OutboxFlusher_Flush(t *testing.T) {
	ctx := testutil.MockContext()
	outboxRepo := repository.NewOutboxRepository()

	for i := 0; i < 3; i++ {
		require.NoError(t, outboxRepo.Create(ctx, &entity.OutboxEvent{
			Base:      entity.Base{ID: uuid.NewString()},
			EventType: entity.EventNotifyUser,
			Key:       "player",
			Payload:   entity.Map{"kind": "test"},
		}))
	}

	var mutex sync.Mutex
	published := []*pubsub.Pack{}
	topics := []string{}
	publisher := &testutil.MockPublisher{
		PublishFunc: func(ctx context.Context, topic string, pack *pubsub.Pack) error {
			mutex.Lock()
			defer mutex.Unlock()
			published = append(published, pack)
			topics = append(topics, topic)
			return nil
		},
	}

	flusher := NewOutboxFlusher(outboxRepo, publisher)
	require.NoError(t, flusher.Flush(ctx))
	require.Len(t, published, 3)
	require.Equal(t, "notifications", topics[0])

	var event map[string]any
	require.NoError(t, json.Unmarshal(published[0].Msg, &event))
	require.Equal(t, entity.EventNotifyUser, event["event_type"])
	require.Equal(t, "player", event["key"])
	require.NotEmpty(t, event["emitted_at"])

	// Everything is stamped; a second flush publishes nothing.
	require.NoError(t, flusher.Flush(ctx))
	require.Len(t, published, 3)

	pending, err := outboxRepo.ListPending(ctx, 10)
	require.NoError(t, err)
	require.Empty(t, pending)
}

func Test_OutboxFlusher_RetriesFlakyBroker(t *testing.T) {
	ctx := testutil.MockContext()
	outboxRepo := repository.NewOutboxRepository()

	require.NoError(t, outboxRepo.Create(ctx, &entity.OutboxEvent{
		Base:      entity.Base{ID: uuid.NewString()},
		EventType: entity.EventNotifyUser,
		Key:       "player",
		Payload:   entity.Map{"kind": "test"},
	}))

	// The first publish fails, the in-flush retry delivers.
	var mutex sync.Mutex
	attempts := 0
	publisher := &testutil.MockPublisher{
		PublishFunc: func(ctx context.Context, topic string, pack *pubsub.Pack) error {
			mutex.Lock()
			defer mutex.Unlock()
			attempts++
			if attempts == 1 {
				return errors.New("broker unavailable")
			}

			return nil
		},
	}

	flusher := NewOutboxFlusher(outboxRepo, publisher)
	require.NoError(t, flusher.Flush(ctx))
	require.Equal(t, 2, attempts)

	pending, err := outboxRepo.ListPending(ctx, 10)
	require.NoError(t, err)
	require.Empty(t, pending)
}
