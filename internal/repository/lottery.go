package repository

import (
	"context"
	"time"

	"github.com/arbuzhub/casino-backend/internal/entity"
	"github.com/arbuzhub/casino-backend/pkg/xcontext"
	"gorm.io/gorm"
)

type LotteryRepository interface {
	Create(ctx context.Context, lottery *entity.Lottery) error
	GetByID(ctx context.Context, id string) (*entity.Lottery, error)
	ListByStatus(ctx context.Context, status entity.LotteryStatus) ([]entity.Lottery, error)

	// UpdateStatus transitions a lottery; it fails with
	// gorm.ErrRecordNotFound when the row is not in the from status, so
	// concurrent draw attempts collapse to one winner.
	UpdateStatus(ctx context.Context, id string, from, to entity.LotteryStatus) error

	// ListDeadlineDue returns active deadline lotteries whose deadline
	// passed.
	ListDeadlineDue(ctx context.Context, now time.Time) ([]entity.Lottery, error)

	// ListTicketTargetDue returns active participant lotteries whose
	// ticket sales reached the target.
	ListTicketTargetDue(ctx context.Context) ([]entity.Lottery, error)

	AddTickets(ctx context.Context, lotteryID string, n int) error

	CreatePrize(ctx context.Context, prize *entity.LotteryPrize) error
	ListPrizes(ctx context.Context, lotteryID string) ([]entity.LotteryPrize, error)
	AssignPrize(ctx context.Context, prizeID string, ticketNumber int, accountID string) error

	CreateTicket(ctx context.Context, ticket *entity.LotteryTicket) error
	CountTicketsByAccount(ctx context.Context, lotteryID, accountID string) (int64, error)
	GetTicketByNumber(ctx context.Context, lotteryID string, number int) (*entity.LotteryTicket, error)
	ListTickets(ctx context.Context, lotteryID string) ([]entity.LotteryTicket, error)
}

type lotteryRepository struct{}

func NewLotteryRepository() *lotteryRepository {
	return &lotteryRepository{}
}

func (r *lotteryRepository) Create(ctx context.Context, lottery *entity.Lottery) error {
	return xcontext.DB(ctx).Create(lottery).Error
}

func (r *lotteryRepository) GetByID(ctx context.Context, id string) (*entity.Lottery, error) {
	var result entity.Lottery
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *lotteryRepository) ListByStatus(
	ctx context.Context, status entity.LotteryStatus,
) ([]entity.Lottery, error) {
	var result []entity.Lottery
	err := xcontext.DB(ctx).
		Where("status=?", status).
		Order("created_at ASC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *lotteryRepository) UpdateStatus(
	ctx context.Context, id string, from, to entity.LotteryStatus,
) error {
	tx := xcontext.DB(ctx).Model(&entity.Lottery{}).
		Where("id=? AND status=?", id, from).
		Update("status", to)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *lotteryRepository) ListDeadlineDue(ctx context.Context, now time.Time) ([]entity.Lottery, error) {
	var result []entity.Lottery
	err := xcontext.DB(ctx).
		Where("status=? AND finish_type=? AND finish_deadline <= ?",
			entity.LotteryActive, entity.LotteryFinishDeadline, now).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *lotteryRepository) ListTicketTargetDue(ctx context.Context) ([]entity.Lottery, error) {
	var result []entity.Lottery
	err := xcontext.DB(ctx).
		Where("status=? AND finish_type=? AND total_tickets >= finish_participants",
			entity.LotteryActive, entity.LotteryFinishParticipants).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *lotteryRepository) AddTickets(ctx context.Context, lotteryID string, n int) error {
	return xcontext.DB(ctx).Model(&entity.Lottery{}).
		Where("id=?", lotteryID).
		Update("total_tickets", gorm.Expr("total_tickets + ?", n)).Error
}

func (r *lotteryRepository) CreatePrize(ctx context.Context, prize *entity.LotteryPrize) error {
	return xcontext.DB(ctx).Create(prize).Error
}

func (r *lotteryRepository) ListPrizes(ctx context.Context, lotteryID string) ([]entity.LotteryPrize, error) {
	var result []entity.LotteryPrize
	err := xcontext.DB(ctx).
		Where("lottery_id=?", lotteryID).
		Order("position ASC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *lotteryRepository) AssignPrize(
	ctx context.Context, prizeID string, ticketNumber int, accountID string,
) error {
	return xcontext.DB(ctx).Model(&entity.LotteryPrize{}).
		Where("id=?", prizeID).
		Updates(map[string]any{
			"winner_ticket_number": ticketNumber,
			"winner_account_id":    accountID,
		}).Error
}

func (r *lotteryRepository) CreateTicket(ctx context.Context, ticket *entity.LotteryTicket) error {
	return xcontext.DB(ctx).Create(ticket).Error
}

func (r *lotteryRepository) CountTicketsByAccount(
	ctx context.Context, lotteryID, accountID string,
) (int64, error) {
	var count int64
	err := xcontext.DB(ctx).Model(&entity.LotteryTicket{}).
		Where("lottery_id=? AND account_id=?", lotteryID, accountID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

func (r *lotteryRepository) GetTicketByNumber(
	ctx context.Context, lotteryID string, number int,
) (*entity.LotteryTicket, error) {
	var result entity.LotteryTicket
	err := xcontext.DB(ctx).Take(&result, "lottery_id=? AND ticket_number=?", lotteryID, number).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *lotteryRepository) ListTickets(ctx context.Context, lotteryID string) ([]entity.LotteryTicket, error) {
	var result []entity.LotteryTicket
	err := xcontext.DB(ctx).
		Where("lottery_id=?", lotteryID).
		Order("ticket_number ASC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}
