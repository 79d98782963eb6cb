package repository

import (
	"context"
	"time"

	"github.com/arbuzhub/casino-backend/internal/entity"
	"github.com/arbuzhub/casino-backend/pkg/xcontext"
	"gorm.io/gorm"
)

type OutboxRepository interface {
	Create(ctx context.Context, event *entity.OutboxEvent) error
	ListPending(ctx context.Context, limit int) ([]entity.OutboxEvent, error)

	// MarkDelivered stamps an event; it fails with gorm.ErrRecordNotFound
	// when another flusher already delivered it.
	MarkDelivered(ctx context.Context, id string, at time.Time) error
}

type outboxRepository struct{}

func NewOutboxRepository() *outboxRepository {
	return &outboxRepository{}
}

func (r *outboxRepository) Create(ctx context.Context, event *entity.OutboxEvent) error {
	return xcontext.DB(ctx).Create(event).Error
}

func (r *outboxRepository) ListPending(ctx context.Context, limit int) ([]entity.OutboxEvent, error) {
	var result []entity.OutboxEvent
	err := xcontext.DB(ctx).
		Where("delivered_at IS NULL").
		Order("created_at ASC").
		Limit(limit).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *outboxRepository) MarkDelivered(ctx context.Context, id string, at time.Time) error {
	tx := xcontext.DB(ctx).Model(&entity.OutboxEvent{}).
		Where("id=? AND delivered_at IS NULL", id).
		Update("delivered_at", at)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
