package domain

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/arbuzhub/casino-backend/internal/common"
	"github.com/arbuzhub/casino-backend/internal/entity"
	"github.com/arbuzhub/casino-backend/internal/model"
	"github.com/arbuzhub/casino-backend/internal/repository"
	"github.com/arbuzhub/casino-backend/pkg/crypto"
	"github.com/arbuzhub/casino-backend/pkg/enum"
	"github.com/arbuzhub/casino-backend/pkg/errorx"
	"github.com/arbuzhub/casino-backend/pkg/xcontext"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type LotteryDomain interface {
	Create(ctx context.Context, req *model.CreateLotteryRequest) (*model.CreateLotteryResponse, error)
	BuyTickets(ctx context.Context, req *model.BuyTicketsRequest) (*model.BuyTicketsResponse, error)
	Get(ctx context.Context, req *model.GetLotteryRequest) (*model.GetLotteryResponse, error)
	List(ctx context.Context, req *model.ListLotteriesRequest) (*model.ListLotteriesResponse, error)
	Cancel(ctx context.Context, req *model.CancelLotteryRequest) (*model.CancelLotteryResponse, error)

	// Draw finishes a lottery: exactly one caller wins the active->drawing
	// transition, assigns prizes, and emits the finish event.
	Draw(ctx context.Context, lotteryID string) error
}

type lotteryDomain struct {
	lotteryRepo repository.LotteryRepository
	accountRepo repository.AccountRepository
	outboxRepo  repository.OutboxRepository
	locker      *common.AccountLocker
}

func NewLotteryDomain(
	lotteryRepo repository.LotteryRepository,
	accountRepo repository.AccountRepository,
	outboxRepo repository.OutboxRepository,
	locker *common.AccountLocker,
) *lotteryDomain {
	return &lotteryDomain{
		lotteryRepo: lotteryRepo,
		accountRepo: accountRepo,
		outboxRepo:  outboxRepo,
		locker:      locker,
	}
}

func (d *lotteryDomain) Create(
	ctx context.Context, req *model.CreateLotteryRequest,
) (*model.CreateLotteryResponse, error) {
	price := decimal.NewFromFloat(req.TicketPrice).Round(2)
	if !price.IsPositive() {
		return nil, errorx.New(errorx.InvalidAmount, "Ticket price must be positive")
	}

	if len(req.Prizes) == 0 {
		return nil, errorx.New(errorx.BadRequest, "A lottery needs at least one prize")
	}

	finishType, err := enum.ToEnum[entity.LotteryFinishType](req.FinishType)
	if err != nil {
		return nil, errorx.New(errorx.BadRequest, "Unknown finish type %s", req.FinishType)
	}

	lottery := &entity.Lottery{
		Base:                 entity.Base{ID: uuid.NewString()},
		Title:                req.Title,
		Description:          req.Description,
		TicketPrice:          price,
		MaxTicketsPerAccount: req.MaxTicketsPerAccount,
		Status:               entity.LotteryActive,
		FinishType:           finishType,
	}

	switch finishType {
	case entity.LotteryFinishDeadline:
		if req.FinishDeadline.Before(time.Now()) {
			return nil, errorx.New(errorx.BadRequest, "Deadline is in the past")
		}
		lottery.FinishDeadline = sql.NullTime{Time: req.FinishDeadline, Valid: true}
	case entity.LotteryFinishParticipants:
		if req.FinishParticipants <= 0 {
			return nil, errorx.New(errorx.BadRequest, "Participant target must be positive")
		}
		lottery.FinishParticipants = req.FinishParticipants
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := d.lotteryRepo.Create(ctx, lottery); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create lottery: %v", err)
		return nil, errorx.Unknown
	}

	for i, description := range req.Prizes {
		err := d.lotteryRepo.CreatePrize(ctx, &entity.LotteryPrize{
			Base:        entity.Base{ID: uuid.NewString()},
			LotteryID:   lottery.ID,
			Position:    i + 1,
			Description: description,
		})
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot create prize: %v", err)
			return nil, errorx.Unknown
		}
	}

	xcontext.WithCommitDBTransaction(ctx)

	return &model.CreateLotteryResponse{LotteryID: lottery.ID}, nil
}

func (d *lotteryDomain) BuyTickets(
	ctx context.Context, req *model.BuyTicketsRequest,
) (*model.BuyTicketsResponse, error) {
	if req.Count <= 0 {
		return nil, errorx.New(errorx.InvalidAmount, "Ticket count must be positive")
	}

	userID := xcontext.RequestUserID(ctx)
	d.locker.Lock(userID)
	defer d.locker.Unlock(userID)

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	lottery, err := d.lotteryRepo.GetByID(ctx, req.LotteryID)
	if err != nil {
		return nil, errorx.New(errorx.NotFound, "Not found lottery")
	}

	if lottery.Status != entity.LotteryActive {
		return nil, errorx.New(errorx.StateConflict, "Lottery is not selling tickets")
	}

	if lottery.MaxTicketsPerAccount > 0 {
		owned, err := d.lotteryRepo.CountTicketsByAccount(ctx, lottery.ID, userID)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot count tickets: %v", err)
			return nil, errorx.Unknown
		}

		if int(owned)+req.Count > lottery.MaxTicketsPerAccount {
			return nil, errorx.New(errorx.TooManyRequests,
				"At most %d tickets per account", lottery.MaxTicketsPerAccount)
		}
	}

	total := lottery.TicketPrice.Mul(decimal.NewFromInt(int64(req.Count)))
	if err := d.accountRepo.Debit(ctx, userID, repository.PoolWithdrawable, total); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.InsufficientFunds, "Not enough balance for tickets")
		}

		xcontext.Logger(ctx).Errorf("Cannot debit ticket price: %v", err)
		return nil, errorx.Unknown
	}

	// The counter update holds the row lock until commit, so concurrent
	// buyers reserve disjoint dense number ranges.
	if err := d.lotteryRepo.AddTickets(ctx, lottery.ID, req.Count); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot reserve ticket range: %v", err)
		return nil, errorx.Unknown
	}

	reserved, err := d.lotteryRepo.GetByID(ctx, lottery.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot reload lottery: %v", err)
		return nil, errorx.Unknown
	}

	numbers := make([]int, 0, req.Count)
	first := reserved.TotalTickets - req.Count + 1
	for i := 0; i < req.Count; i++ {
		number := first + i
		err := d.lotteryRepo.CreateTicket(ctx, &entity.LotteryTicket{
			Base:         entity.Base{ID: uuid.NewString()},
			LotteryID:    lottery.ID,
			AccountID:    userID,
			TicketNumber: number,
		})
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot create ticket: %v", err)
			return nil, errorx.Unknown
		}

		numbers = append(numbers, number)
	}

	finished := false
	if lottery.FinishType == entity.LotteryFinishParticipants &&
		reserved.TotalTickets >= lottery.FinishParticipants {
		if err := d.draw(ctx, lottery.ID); err != nil {
			return nil, err
		}

		finished = true
	}

	xcontext.WithCommitDBTransaction(ctx)

	return &model.BuyTicketsResponse{TicketNumbers: numbers, Finished: finished}, nil
}

func (d *lotteryDomain) Draw(ctx context.Context, lotteryID string) error {
	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := d.draw(ctx, lotteryID); err != nil {
		return err
	}

	xcontext.WithCommitDBTransaction(ctx)
	return nil
}

func (d *lotteryDomain) draw(ctx context.Context, lotteryID string) error {
	err := d.lotteryRepo.UpdateStatus(ctx, lotteryID, entity.LotteryActive, entity.LotteryDrawing)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorx.New(errorx.StateConflict, "Lottery is already drawing or finished")
		}

		xcontext.Logger(ctx).Errorf("Cannot start drawing: %v", err)
		return errorx.Unknown
	}

	tickets, err := d.lotteryRepo.ListTickets(ctx, lotteryID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot list tickets: %v", err)
		return errorx.Unknown
	}

	prizes, err := d.lotteryRepo.ListPrizes(ctx, lotteryID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot list prizes: %v", err)
		return errorx.Unknown
	}

	winners := entity.Map{}
	remaining := tickets
	for _, prize := range prizes {
		if len(remaining) == 0 {
			break
		}

		pick := crypto.RandIntn(len(remaining))
		ticket := remaining[pick]
		remaining = append(remaining[:pick], remaining[pick+1:]...)

		err := d.lotteryRepo.AssignPrize(ctx, prize.ID, ticket.TicketNumber, ticket.AccountID)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot assign prize: %v", err)
			return errorx.Unknown
		}

		winners[prize.ID] = map[string]any{
			"position":      prize.Position,
			"description":   prize.Description,
			"ticket_number": ticket.TicketNumber,
			"account_id":    ticket.AccountID,
		}
	}

	err = d.lotteryRepo.UpdateStatus(ctx, lotteryID, entity.LotteryDrawing, entity.LotteryFinished)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot finish lottery: %v", err)
		return errorx.Unknown
	}

	err = d.outboxRepo.Create(ctx, &entity.OutboxEvent{
		Base:      entity.Base{ID: uuid.NewString()},
		EventType: entity.EventLotteryFinished,
		Key:       lotteryID,
		Payload: entity.Map{
			"lottery_id": lotteryID,
			"winners":    map[string]any(winners),
		},
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create outbox event: %v", err)
		return errorx.Unknown
	}

	return nil
}

func (d *lotteryDomain) Cancel(
	ctx context.Context, req *model.CancelLotteryRequest,
) (*model.CancelLotteryResponse, error) {
	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	lottery, err := d.lotteryRepo.GetByID(ctx, req.LotteryID)
	if err != nil {
		return nil, errorx.New(errorx.NotFound, "Not found lottery")
	}

	err = d.lotteryRepo.UpdateStatus(ctx, req.LotteryID, entity.LotteryActive, entity.LotteryCancelled)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.StateConflict, "Lottery is not active")
		}

		xcontext.Logger(ctx).Errorf("Cannot cancel lottery: %v", err)
		return nil, errorx.Unknown
	}

	tickets, err := d.lotteryRepo.ListTickets(ctx, req.LotteryID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot list tickets: %v", err)
		return nil, errorx.Unknown
	}

	cap := decimal.NewFromFloat(xcontext.Configs(ctx).Game.MaxAccountBalance)
	for _, ticket := range tickets {
		err := d.accountRepo.Credit(ctx, ticket.AccountID, repository.PoolWithdrawable, lottery.TicketPrice, cap)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot refund ticket %d: %v", ticket.TicketNumber, err)
			return nil, errorx.Unknown
		}
	}

	xcontext.WithCommitDBTransaction(ctx)

	return &model.CancelLotteryResponse{RefundedTickets: len(tickets)}, nil
}

func (d *lotteryDomain) Get(
	ctx context.Context, req *model.GetLotteryRequest,
) (*model.GetLotteryResponse, error) {
	lottery, err := d.lotteryRepo.GetByID(ctx, req.LotteryID)
	if err != nil {
		return nil, errorx.New(errorx.NotFound, "Not found lottery")
	}

	return d.view(ctx, lottery)
}

func (d *lotteryDomain) List(
	ctx context.Context, req *model.ListLotteriesRequest,
) (*model.ListLotteriesResponse, error) {
	lotteries, err := d.lotteryRepo.ListByStatus(ctx, entity.LotteryActive)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot list lotteries: %v", err)
		return nil, errorx.Unknown
	}

	resp := &model.ListLotteriesResponse{Lotteries: []model.GetLotteryResponse{}}
	for i := range lotteries {
		view, err := d.view(ctx, &lotteries[i])
		if err != nil {
			return nil, err
		}

		resp.Lotteries = append(resp.Lotteries, *view)
	}

	return resp, nil
}

func (d *lotteryDomain) view(
	ctx context.Context, lottery *entity.Lottery,
) (*model.GetLotteryResponse, error) {
	prizes, err := d.lotteryRepo.ListPrizes(ctx, lottery.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot list prizes: %v", err)
		return nil, errorx.Unknown
	}

	myTickets, err := d.lotteryRepo.CountTicketsByAccount(ctx, lottery.ID, xcontext.RequestUserID(ctx))
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot count tickets: %v", err)
		return nil, errorx.Unknown
	}

	view := &model.GetLotteryResponse{
		LotteryID:    lottery.ID,
		Title:        lottery.Title,
		Description:  lottery.Description,
		TicketPrice:  lottery.TicketPrice,
		Status:       string(lottery.Status),
		TotalTickets: lottery.TotalTickets,
		MyTickets:    myTickets,
		Prizes:       []model.LotteryPrizeView{},
	}
	for _, prize := range prizes {
		view.Prizes = append(view.Prizes, model.LotteryPrizeView{
			Position:           prize.Position,
			Description:        prize.Description,
			WinnerTicketNumber: prize.WinnerTicketNumber,
			WinnerAccountID:    prize.WinnerAccountID,
		})
	}

	return view, nil
}
