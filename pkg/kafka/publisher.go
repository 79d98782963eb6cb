package kafka

import (
	"context"
	"fmt"

	"github.com/arbuzhub/casino-backend/pkg/pubsub"

	"github.com/Shopify/sarama"
)

type publisher struct {
	producer sarama.SyncProducer
}

func NewPublisher(clientID string, brokerAddrs []string) pubsub.Publisher {
	config := sarama.NewConfig()
	config.ClientID = clientID
	config.Producer.Return.Successes = true
	// The outbox flusher stamps rows only after a confirmed write.
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5

	producer, err := sarama.NewSyncProducer(brokerAddrs, config)
	if err != nil {
		panic(err)
	}

	return &publisher{producer: producer}
}

func (p *publisher) Stop(ctx context.Context) error {
	return p.producer.Close()
}

func (p *publisher) Publish(ctx context.Context, topic string, pack *pubsub.Pack) error {
	_, _, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.ByteEncoder(pack.Key),
		Value: sarama.ByteEncoder(pack.Msg),
	})
	if err != nil {
		return fmt.Errorf("cannot publish to %s: %w", topic, err)
	}

	return nil
}
