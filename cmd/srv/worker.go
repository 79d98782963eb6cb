package main

import (
	"context"
	"time"

	"github.com/arbuzhub/casino-backend/internal/domain"
	"github.com/arbuzhub/casino-backend/pkg/kafka"
	"github.com/arbuzhub/casino-backend/pkg/pubsub"
	"github.com/arbuzhub/casino-backend/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

const outboxFlushInterval = 2 * time.Second

func (s *srv) startWorker(*cli.Context) error {
	server.loadBaseContext()
	server.loadDatabase()
	server.loadRedisClient()
	server.loadPublisher()
	server.loadRepos()
	server.loadDomains()

	cfg := xcontext.Configs(s.ctx)
	depositSubscriber := kafka.NewSubscriber(
		"wallet",
		[]string{cfg.Kafka.Addr},
		[]string{cfg.Kafka.DepositTopic},
		func(_ context.Context, pack *pubsub.Pack, t time.Time) {
			// The session context carries no deps; handle on the service one.
			s.walletDomain.Subscribe(s.ctx, pack, t)
		},
	)
	go depositSubscriber.Subscribe(s.ctx)

	flusher := domain.NewOutboxFlusher(s.outboxRepo, s.publisher)
	flusher.Run(s.ctx, outboxFlushInterval)

	return nil
}
