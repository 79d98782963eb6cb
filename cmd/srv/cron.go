package main

import (
	"github.com/arbuzhub/casino-backend/internal/domain/cron"
	"github.com/arbuzhub/casino-backend/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startCron(*cli.Context) error {
	server.loadBaseContext()
	server.loadDatabase()
	server.loadRedisClient()
	server.loadRepos()
	server.loadDomains()

	cfg := xcontext.Configs(s.ctx)
	manager := cron.NewCronJobManager()
	manager.Register(cron.NewLotteryFinisherCronJob(s.lotteryRepo, s.lotteryDomain, cfg.Lottery.TickInterval))
	manager.Register(cron.NewDuelTimeoutCronJob(s.duelDomain, cfg.Duel.TickInterval))
	manager.Register(cron.NewFlowSweeperCronJob(s.conversationRepo))
	manager.Start(s.ctx)

	return nil
}
