package main

import (
	"context"
	"net/http"

	"github.com/arbuzhub/casino-backend/internal/common"
	"github.com/arbuzhub/casino-backend/internal/domain"
	"github.com/arbuzhub/casino-backend/internal/entity"
	"github.com/arbuzhub/casino-backend/internal/model"
	"github.com/arbuzhub/casino-backend/internal/repository"
	"github.com/arbuzhub/casino-backend/pkg/authenticator"
	"github.com/arbuzhub/casino-backend/pkg/kafka"
	"github.com/arbuzhub/casino-backend/pkg/logger"
	"github.com/arbuzhub/casino-backend/pkg/pubsub"
	"github.com/arbuzhub/casino-backend/pkg/router"
	"github.com/arbuzhub/casino-backend/pkg/xcontext"
	"github.com/arbuzhub/casino-backend/pkg/xredis"
	"github.com/bwmarrin/snowflake"
	"github.com/urfave/cli/v2"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

type srv struct {
	app *cli.App
	ctx context.Context

	tokenEngine authenticator.TokenEngine[model.AccessToken]
	locker      *common.AccountLocker
	redisClient xredis.Client
	publisher   pubsub.Publisher

	accountRepo      repository.AccountRepository
	betRepo          repository.BetRecordRepository
	paymentRepo      repository.PaymentRepository
	voucherRepo      repository.VoucherRepository
	lotteryRepo      repository.LotteryRepository
	duelRepo         repository.DuelRepository
	partnerRepo      repository.PartnerRepository
	outboxRepo       repository.OutboxRepository
	conversationRepo repository.ConversationRepository

	accountDomain  domain.AccountDomain
	betDomain      domain.BetDomain
	referralDomain domain.ReferralDomain
	voucherDomain  domain.VoucherDomain
	lotteryDomain  domain.LotteryDomain
	duelDomain     domain.DuelDomain
	walletDomain   domain.WalletDomain

	router *router.Router
	server *http.Server
}

func (s *srv) loadBaseContext() {
	cfg, err := loadConfig()
	if err != nil {
		panic(err)
	}

	ctx := context.Background()
	ctx = xcontext.WithConfigs(ctx, cfg)

	level := logger.INFO
	if cfg.Env == "local" {
		level = logger.DEBUG
	}
	ctx = xcontext.WithLogger(ctx, logger.NewLogger(level))

	node, err := snowflake.NewNode(0)
	if err != nil {
		panic(err)
	}
	ctx = xcontext.WithSnowFlake(ctx, node)

	s.ctx = ctx
}

func (s *srv) loadDatabase() {
	cfg := xcontext.Configs(s.ctx)
	db, err := gorm.Open(mysql.Open(cfg.Database.ConnectionString()), &gorm.Config{})
	if err != nil {
		panic(err)
	}

	s.ctx = xcontext.WithDB(s.ctx, db)
}

func (s *srv) migrateDB() {
	if err := entity.MigrateTable(s.ctx); err != nil {
		panic(err)
	}
}

func (s *srv) loadRedisClient() {
	client, err := xredis.NewClient(s.ctx)
	if err != nil {
		xcontext.Logger(s.ctx).Warnf("Cannot connect to redis: %v", err)
		return
	}

	s.redisClient = client
}

func (s *srv) loadPublisher() {
	cfg := xcontext.Configs(s.ctx)
	s.publisher = kafka.NewPublisher("casino-backend", []string{cfg.Kafka.Addr})
}

func (s *srv) loadRepos() {
	s.accountRepo = repository.NewAccountRepository()
	s.betRepo = repository.NewBetRecordRepository()
	s.paymentRepo = repository.NewPaymentRepository()
	s.voucherRepo = repository.NewVoucherRepository()
	s.lotteryRepo = repository.NewLotteryRepository()
	s.duelRepo = repository.NewDuelRepository()
	s.partnerRepo = repository.NewPartnerRepository()
	s.outboxRepo = repository.NewOutboxRepository()
	s.conversationRepo = repository.NewConversationRepository()
}

func (s *srv) loadDomains() {
	cfg := xcontext.Configs(s.ctx)
	s.tokenEngine = authenticator.NewTokenEngine[model.AccessToken](
		cfg.Auth.TokenSecret, cfg.Auth.AccessToken.Expiration)
	s.locker = common.NewAccountLocker()

	s.accountDomain = domain.NewAccountDomain(s.accountRepo, s.betRepo, s.locker, s.redisClient)
	s.betDomain = domain.NewBetDomain(
		s.accountRepo, s.betRepo, s.partnerRepo, s.outboxRepo,
		s.locker, domain.NewRandomOutcomeSource(), s.redisClient)
	s.referralDomain = domain.NewReferralDomain(s.accountRepo, s.partnerRepo, s.locker)
	s.voucherDomain = domain.NewVoucherDomain(
		s.voucherRepo, s.accountRepo, s.paymentRepo, s.conversationRepo, s.outboxRepo, s.locker)
	s.lotteryDomain = domain.NewLotteryDomain(s.lotteryRepo, s.accountRepo, s.outboxRepo, s.locker)
	s.duelDomain = domain.NewDuelDomain(s.duelRepo, s.accountRepo, s.outboxRepo, s.locker)
	s.walletDomain = domain.NewWalletDomain(
		s.accountRepo, s.paymentRepo, s.outboxRepo, s.locker,
		s.redisClient, domain.NewHTTPPriceSource())
}
