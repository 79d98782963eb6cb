package cron

import (
	"context"
	"time"

	"github.com/arbuzhub/casino-backend/internal/domain"
	"github.com/arbuzhub/casino-backend/internal/repository"
	"github.com/arbuzhub/casino-backend/pkg/xcontext"
)

// LotteryFinisherCronJob is the second completion trigger for lotteries: it
// draws deadline lotteries whose deadline passed and participant lotteries
// whose target was met while the inline trigger lost a race.
type LotteryFinisherCronJob struct {
	lotteryRepo   repository.LotteryRepository
	lotteryDomain domain.LotteryDomain
	interval      time.Duration
}

func NewLotteryFinisherCronJob(
	lotteryRepo repository.LotteryRepository,
	lotteryDomain domain.LotteryDomain,
	interval time.Duration,
) *LotteryFinisherCronJob {
	if interval <= 0 {
		interval = time.Minute
	}

	return &LotteryFinisherCronJob{
		lotteryRepo:   lotteryRepo,
		lotteryDomain: lotteryDomain,
		interval:      interval,
	}
}

func (job *LotteryFinisherCronJob) Do(ctx context.Context) {
	due, err := job.lotteryRepo.ListDeadlineDue(ctx, time.Now())
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot list due lotteries: %v", err)
		return
	}

	targetDue, err := job.lotteryRepo.ListTicketTargetDue(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot list target-due lotteries: %v", err)
		return
	}

	due = append(due, targetDue...)

	for _, lottery := range due {
		if err := job.lotteryDomain.Draw(ctx, lottery.ID); err != nil {
			// Losing the status race to another drawer is fine.
			xcontext.Logger(ctx).Warnf("Cannot draw lottery %s: %v", lottery.ID, err)
		}
	}
}

func (job *LotteryFinisherCronJob) RunNow() bool {
	return false
}

func (job *LotteryFinisherCronJob) Next() time.Time {
	return time.Now().Add(job.interval)
}
