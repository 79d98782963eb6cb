package main

import (
	"log"
	"net/http"

	"github.com/arbuzhub/casino-backend/internal/middleware"
	"github.com/arbuzhub/casino-backend/pkg/router"
	"github.com/arbuzhub/casino-backend/pkg/xcontext"

	"github.com/urfave/cli/v2"
)

func (s *srv) startApi(*cli.Context) error {
	server.loadBaseContext()
	server.loadDatabase()
	server.loadRedisClient()
	server.loadRepos()
	server.loadDomains()
	server.loadRouter()

	addr := xcontext.Configs(s.ctx).ApiServer.Address()
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.router.Handler(),
	}

	log.Printf("Starting server on %s\n", addr)
	if err := s.server.ListenAndServe(); err != nil {
		panic(err)
	}
	log.Printf("server stop")
	return nil
}

func (s *srv) loadRouter() {
	s.router = router.New(s.ctx)
	s.router.Before(router.LoggerMiddleware())

	s.router.HandleFunc("/livez", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	s.router.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		sqlDB, err := xcontext.DB(s.ctx).DB()
		if err == nil {
			err = sqlDB.PingContext(r.Context())
		}
		if err != nil {
			xcontext.Logger(s.ctx).Warnf("Readiness ping failed: %v", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}

		w.WriteHeader(http.StatusOK)
	})

	// These APIs act on behalf of a messenger account, via the gateway key
	// or a bearer token.
	userRouter := s.router.Branch()
	userRouter.Before(middleware.Authenticate(s.tokenEngine))
	{
		// Account API
		router.POST(userRouter, "/start", s.accountDomain.Start)
		router.GET(userRouter, "/getBalance", s.accountDomain.GetBalance)
		router.POST(userRouter, "/grantDailyDemo", s.accountDomain.GrantDailyDemo)
		router.GET(userRouter, "/getProfile", s.accountDomain.GetProfile)
		router.GET(userRouter, "/getTurnoverBoard", s.accountDomain.GetTurnoverBoard)

		// Bet API
		router.POST(userRouter, "/placeBet", s.betDomain.PlaceBet)
		router.GET(userRouter, "/getBetHistory", s.betDomain.GetHistory)

		// Referral API
		router.GET(userRouter, "/getReferralStats", s.referralDomain.GetStats)
		router.POST(userRouter, "/withdrawReferral", s.referralDomain.Withdraw)

		// Voucher API
		router.POST(userRouter, "/createCheck", s.voucherDomain.CreateCheck)
		router.POST(userRouter, "/activateVoucher", s.voucherDomain.Activate)
		router.POST(userRouter, "/completeCaptcha", s.voucherDomain.CompleteCaptcha)
		router.POST(userRouter, "/deleteCheck", s.voucherDomain.DeleteCheck)
		router.GET(userRouter, "/listChecks", s.voucherDomain.ListChecks)

		// Lottery API
		router.POST(userRouter, "/buyTickets", s.lotteryDomain.BuyTickets)
		router.GET(userRouter, "/getLottery", s.lotteryDomain.Get)
		router.GET(userRouter, "/listLotteries", s.lotteryDomain.List)

		// Duel API
		router.POST(userRouter, "/openDuel", s.duelDomain.Open)
		router.POST(userRouter, "/joinDuel", s.duelDomain.Join)
		router.POST(userRouter, "/submitDuelResult", s.duelDomain.SubmitResult)
		router.POST(userRouter, "/cancelDuel", s.duelDomain.Cancel)
		router.GET(userRouter, "/listOpenDuels", s.duelDomain.ListOpen)

		// Wallet API
		router.POST(userRouter, "/requestWithdrawal", s.walletDomain.RequestWithdrawal)
		router.GET(userRouter, "/getPriceRate", s.walletDomain.GetPriceRate)
	}

	adminRouter := userRouter.Branch()
	adminRouter.Before(middleware.AdminOnly())
	{
		router.POST(adminRouter, "/createPromo", s.voucherDomain.CreatePromo)
		router.POST(adminRouter, "/createLottery", s.lotteryDomain.Create)
		router.POST(adminRouter, "/cancelLottery", s.lotteryDomain.Cancel)
		router.POST(adminRouter, "/setPartner", s.referralDomain.SetPartner)
		router.POST(adminRouter, "/removePartner", s.referralDomain.RemovePartner)
		router.POST(adminRouter, "/recordDeposit", s.walletDomain.RecordDeposit)
		router.POST(adminRouter, "/settleWithdrawal", s.walletDomain.SettleWithdrawal)
	}
}
