package testutil

import (
	"context"
	"time"

	"github.com/arbuzhub/casino-backend/config"
	"github.com/arbuzhub/casino-backend/internal/entity"
	"github.com/arbuzhub/casino-backend/pkg/logger"
	"github.com/arbuzhub/casino-backend/pkg/xcontext"
	"github.com/bwmarrin/snowflake"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func MockContext() context.Context {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		panic(err)
	}

	cfg := config.Configs{
		Auth: config.AuthConfigs{
			TokenSecret: "secret",
			AccessToken: config.TokenConfigs{
				Name:       "access_token",
				Expiration: time.Minute,
			},
			GatewayActorKey: "gateway-key",
		},
		Kafka: config.KafkaConfigs{
			Addr:              "localhost:9092",
			NotificationTopic: "notifications",
			DepositTopic:      "deposits",
		},
		Game: config.GameConfigs{
			MinBet:            0.1,
			MaxBet:            1000,
			MaxAccountBalance: 100000,
			DailyDemoAmount:   50,
		},
		Referral: config.ReferralConfigs{
			Levels: []config.ReferralLevel{
				{Volume: 0, Percent: 5},
				{Volume: 1000, Percent: 10},
				{Volume: 10000, Percent: 15},
			},
			DefaultPercent: 5,
		},
		Voucher: config.VoucherConfigs{
			MinAmount:       1,
			CodeLength:      12,
			RequiredChannel: "@casino_channel",
		},
		Lottery: config.LotteryConfigs{
			TickInterval: time.Minute,
		},
		Duel: config.DuelConfigs{
			OpenTimeout:  10 * time.Minute,
			TurnTimeout:  2 * time.Minute,
			TickInterval: 30 * time.Second,
		},
		Flow: config.FlowConfigs{
			Timeout: 5 * time.Minute,
		},
		AdminActors: []string{"admin"},
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}

	ctx := context.Background()
	ctx = xcontext.WithConfigs(ctx, cfg)
	ctx = xcontext.WithLogger(ctx, logger.NewLogger(logger.ERROR))
	ctx = xcontext.WithSnowFlake(ctx, node)
	ctx = xcontext.WithDB(ctx, db)

	if err := entity.MigrateTable(ctx); err != nil {
		panic(err)
	}

	return ctx
}

func MockContextWithUserID(userID string) context.Context {
	return xcontext.WithRequestUserID(MockContext(), userID)
}
