package cron

import (
	"context"
	"time"

	"github.com/arbuzhub/casino-backend/internal/repository"
	"github.com/arbuzhub/casino-backend/pkg/xcontext"
)

// FlowSweeperCronJob drops abandoned multi-step conversations so a stale
// captcha can never be answered days later.
type FlowSweeperCronJob struct {
	conversationRepo repository.ConversationRepository
}

func NewFlowSweeperCronJob(conversationRepo repository.ConversationRepository) *FlowSweeperCronJob {
	return &FlowSweeperCronJob{conversationRepo: conversationRepo}
}

func (job *FlowSweeperCronJob) Do(ctx context.Context) {
	if err := job.conversationRepo.DeleteExpired(ctx, time.Now()); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot sweep expired flows: %v", err)
	}
}

func (job *FlowSweeperCronJob) RunNow() bool {
	return false
}

func (job *FlowSweeperCronJob) Next() time.Time {
	return time.Now().Add(5 * time.Minute)
}
