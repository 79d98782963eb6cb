package domain

import (
	"context"
	"encoding/json"
	"time"

	"github.com/arbuzhub/casino-backend/internal/common"
	"github.com/arbuzhub/casino-backend/internal/repository"
	"github.com/arbuzhub/casino-backend/pkg/pubsub"
	"github.com/arbuzhub/casino-backend/pkg/xcontext"
	"github.com/fatih/structs"
	"golang.org/x/sync/errgroup"
)

const (
	outboxBatchSize     = 100
	publishRetryBackoff = 200 * time.Millisecond
)

// GatewayEvent is the wire shape the bot gateway consumes from the
// notification topic.
type GatewayEvent struct {
	ID        string         `structs:"id"`
	EventType string         `structs:"event_type"`
	Key       string         `structs:"key"`
	EmittedAt string         `structs:"emitted_at"`
	Payload   map[string]any `structs:"payload"`
}

// OutboxFlusher drains undelivered outbox rows into the notification topic.
// Delivery is at-least-once: the delivered stamp is a guarded update, so two
// flushers racing on one row publish at most twice and stamp once.
type OutboxFlusher struct {
	outboxRepo repository.OutboxRepository
	publisher  pubsub.Publisher
}

func NewOutboxFlusher(outboxRepo repository.OutboxRepository, publisher pubsub.Publisher) *OutboxFlusher {
	return &OutboxFlusher{outboxRepo: outboxRepo, publisher: publisher}
}

func (f *OutboxFlusher) Flush(ctx context.Context) error {
	events, err := f.outboxRepo.ListPending(ctx, outboxBatchSize)
	if err != nil {
		return err
	}

	topic := xcontext.Configs(ctx).Kafka.NotificationTopic

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(8)
	for i := range events {
		event := events[i]
		eg.Go(func() error {
			msg, err := json.Marshal(structs.Map(GatewayEvent{
				ID:        event.ID,
				EventType: event.EventType,
				Key:       event.Key,
				EmittedAt: event.CreatedAt.UTC().Format(time.RFC3339),
				Payload:   map[string]any(event.Payload),
			}))
			if err != nil {
				return err
			}

			// A broker hiccup gets one more chance before the whole
			// batch reports failure; the row stays pending either way.
			err = common.RetryOnce(egCtx, publishRetryBackoff, func() error {
				return f.publisher.Publish(egCtx, topic, &pubsub.Pack{Key: []byte(event.Key), Msg: msg})
			})
			if err != nil {
				return err
			}

			err = f.outboxRepo.MarkDelivered(egCtx, event.ID, time.Now())
			if err != nil {
				// Another flusher stamped it first.
				xcontext.Logger(ctx).Warnf("Event %s already delivered: %v", event.ID, err)
			}

			return nil
		})
	}

	return eg.Wait()
}

// Run flushes in a loop until the context is cancelled.
func (f *OutboxFlusher) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := f.Flush(ctx); err != nil {
				xcontext.Logger(ctx).Errorf("Cannot flush outbox: %v", err)
			}
		}
	}
}
