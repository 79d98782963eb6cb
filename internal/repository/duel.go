package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/arbuzhub/casino-backend/internal/entity"
	"github.com/arbuzhub/casino-backend/pkg/xcontext"
	"gorm.io/gorm"
)

type DuelRepository interface {
	Create(ctx context.Context, duel *entity.Duel) error
	GetByID(ctx context.Context, id string) (*entity.Duel, error)
	ListOpen(ctx context.Context, game entity.GameKind) ([]entity.Duel, error)

	// UpdateStatus transitions a duel; it fails with
	// gorm.ErrRecordNotFound when the row is not in the from status.
	UpdateStatus(ctx context.Context, id string, from, to entity.DuelStatus) error
	SetTurnDeadline(ctx context.Context, id string, deadline time.Time) error
	SetWinner(ctx context.Context, id, accountID string) error

	ListOpenExpired(ctx context.Context, now time.Time) ([]entity.Duel, error)
	ListPlayingExpired(ctx context.Context, now time.Time) ([]entity.Duel, error)

	CreateSeat(ctx context.Context, seat *entity.DuelSeat) error
	ListSeats(ctx context.Context, duelID string) ([]entity.DuelSeat, error)
	GetSeatByAccount(ctx context.Context, duelID, accountID string) (*entity.DuelSeat, error)

	// SubmitResult records a seat's result token; it fails with
	// gorm.ErrRecordNotFound when the seat already submitted.
	SubmitResult(ctx context.Context, seatID string, token int64) error

	// ResetResults clears result tokens for the given seats so a tied
	// round can be replayed.
	ResetResults(ctx context.Context, seatIDs []string) error
}

type duelRepository struct{}

func NewDuelRepository() *duelRepository {
	return &duelRepository{}
}

func (r *duelRepository) Create(ctx context.Context, duel *entity.Duel) error {
	return xcontext.DB(ctx).Create(duel).Error
}

func (r *duelRepository) GetByID(ctx context.Context, id string) (*entity.Duel, error) {
	var result entity.Duel
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *duelRepository) ListOpen(ctx context.Context, game entity.GameKind) ([]entity.Duel, error) {
	tx := xcontext.DB(ctx).Where("status=?", entity.DuelOpen)
	if game != "" {
		tx = tx.Where("game=?", game)
	}

	var result []entity.Duel
	if err := tx.Order("created_at ASC").Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *duelRepository) UpdateStatus(ctx context.Context, id string, from, to entity.DuelStatus) error {
	tx := xcontext.DB(ctx).Model(&entity.Duel{}).
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

func (r *duelRepository) SetTurnDeadline(ctx context.Context, id string, deadline time.Time) error {
	return xcontext.DB(ctx).Model(&entity.Duel{}).
		Where("id=?", id).
		Update("turn_deadline", deadline).Error
}

func (r *duelRepository) SetWinner(ctx context.Context, id, accountID string) error {
	return xcontext.DB(ctx).Model(&entity.Duel{}).
		Where("id=?", id).
		Update("winner_account_id", accountID).Error
}

func (r *duelRepository) ListOpenExpired(ctx context.Context, now time.Time) ([]entity.Duel, error) {
	var result []entity.Duel
	err := xcontext.DB(ctx).
		Where("status=? AND expires_at <= ?", entity.DuelOpen, now).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *duelRepository) ListPlayingExpired(ctx context.Context, now time.Time) ([]entity.Duel, error) {
	var result []entity.Duel
	err := xcontext.DB(ctx).
		Where("status=? AND turn_deadline IS NOT NULL AND turn_deadline <= ?", entity.DuelPlaying, now).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *duelRepository) CreateSeat(ctx context.Context, seat *entity.DuelSeat) error {
	return xcontext.DB(ctx).Create(seat).Error
}

func (r *duelRepository) ListSeats(ctx context.Context, duelID string) ([]entity.DuelSeat, error) {
	var result []entity.DuelSeat
	err := xcontext.DB(ctx).
		Where("duel_id=?", duelID).
		Order("seat_index ASC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *duelRepository) GetSeatByAccount(ctx context.Context, duelID, accountID string) (*entity.DuelSeat, error) {
	var result entity.DuelSeat
	err := xcontext.DB(ctx).Take(&result, "duel_id=? AND account_id=?", duelID, accountID).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *duelRepository) SubmitResult(ctx context.Context, seatID string, token int64) error {
	tx := xcontext.DB(ctx).Model(&entity.DuelSeat{}).
		Where("id=? AND result_token IS NULL", seatID).
		Update("result_token", token)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *duelRepository) ResetResults(ctx context.Context, seatIDs []string) error {
	return xcontext.DB(ctx).Model(&entity.DuelSeat{}).
		Where("id IN (?)", seatIDs).
		Update("result_token", sql.NullInt64{}).Error
}
