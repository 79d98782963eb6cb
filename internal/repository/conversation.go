package repository

import (
	"context"
	"time"

	"github.com/arbuzhub/casino-backend/internal/entity"
	"github.com/arbuzhub/casino-backend/pkg/xcontext"
)

type ConversationRepository interface {
	// Upsert replaces any previous flow of the same (account, topic).
	Upsert(ctx context.Context, conversation *entity.Conversation) error
	Get(ctx context.Context, accountID string, topic entity.FlowTopic) (*entity.Conversation, error)
	Delete(ctx context.Context, accountID string, topic entity.FlowTopic) error
	DeleteExpired(ctx context.Context, now time.Time) error
}

type conversationRepository struct{}

func NewConversationRepository() *conversationRepository {
	return &conversationRepository{}
}

func (r *conversationRepository) Upsert(ctx context.Context, conversation *entity.Conversation) error {
	if err := r.Delete(ctx, conversation.AccountID, conversation.Topic); err != nil {
		return err
	}

	return xcontext.DB(ctx).Create(conversation).Error
}

func (r *conversationRepository) Get(
	ctx context.Context, accountID string, topic entity.FlowTopic,
) (*entity.Conversation, error) {
	var result entity.Conversation
	err := xcontext.DB(ctx).Take(&result, "account_id=? AND topic=?", accountID, topic).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *conversationRepository) Delete(
	ctx context.Context, accountID string, topic entity.FlowTopic,
) error {
	// Hard delete, else the (account, topic) unique index blocks the next
	// flow on that topic.
	return xcontext.DB(ctx).Unscoped().
		Where("account_id=? AND topic=?", accountID, topic).
		Delete(&entity.Conversation{}).Error
}

func (r *conversationRepository) DeleteExpired(ctx context.Context, now time.Time) error {
	return xcontext.DB(ctx).Unscoped().
		Where("expires_at <= ?", now).
		Delete(&entity.Conversation{}).Error
}
