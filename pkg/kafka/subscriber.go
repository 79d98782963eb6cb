package kafka

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/arbuzhub/casino-backend/pkg/pubsub"

	"github.com/Shopify/sarama"
)

type subscriber struct {
	topics  []string
	client  sarama.ConsumerGroup
	handler pubsub.SubscribeHandler
}

func NewSubscriber(
	groupID string,
	brokerAddrs []string,
	topics []string,
	handler pubsub.SubscribeHandler,
) pubsub.Subscriber {
	config := sarama.NewConfig()
	config.Consumer.Group.Rebalance.Strategy = sarama.BalanceStrategyRoundRobin
	config.Consumer.Offsets.Initial = sarama.OffsetOldest

	client, err := sarama.NewConsumerGroup(brokerAddrs, groupID, config)
	if err != nil {
		panic(err)
	}

	return &subscriber{topics: topics, client: client, handler: handler}
}

func (s *subscriber) Stop(ctx context.Context) error {
	return s.client.Close()
}

// Subscribe blocks until the first rebalance completes, then keeps consuming
// in the background until ctx is cancelled.
func (s *subscriber) Subscribe(ctx context.Context) {
	handler := &groupHandler{ready: make(chan struct{}), fn: s.handler}
	go func() {
		for {
			if err := s.client.Consume(ctx, s.topics, handler); err != nil {
				if errors.Is(err, sarama.ErrClosedConsumerGroup) {
					return
				}

				log.Printf("Consumer error, rejoining: %v", err)
				time.Sleep(time.Second)
			}

			if ctx.Err() != nil {
				return
			}

			handler.ready = make(chan struct{})
		}
	}()
	<-handler.ready
}

type groupHandler struct {
	ready chan struct{}
	fn    pubsub.SubscribeHandler
}

func (h *groupHandler) Setup(sarama.ConsumerGroupSession) error {
	close(h.ready)
	return nil
}

func (h *groupHandler) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

func (h *groupHandler) ConsumeClaim(
	session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim,
) error {
	for message := range claim.Messages() {
		session.MarkMessage(message, "")
		h.fn(session.Context(), &pubsub.Pack{
			Key: message.Key,
			Msg: message.Value,
		}, message.Timestamp)
	}

	return nil
}
