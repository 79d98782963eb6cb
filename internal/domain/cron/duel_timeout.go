package cron

import (
	"context"
	"time"

	"github.com/arbuzhub/casino-backend/internal/domain"
	"github.com/arbuzhub/casino-backend/pkg/xcontext"
)

// DuelTimeoutCronJob expires open duels nobody joined and settles playing
// duels whose turn deadline passed.
type DuelTimeoutCronJob struct {
	duelDomain domain.DuelDomain
	interval   time.Duration
}

func NewDuelTimeoutCronJob(duelDomain domain.DuelDomain, interval time.Duration) *DuelTimeoutCronJob {
	if interval <= 0 {
		interval = 30 * time.Second
	}

	return &DuelTimeoutCronJob{duelDomain: duelDomain, interval: interval}
}

func (job *DuelTimeoutCronJob) Do(ctx context.Context) {
	if err := job.duelDomain.CancelExpired(ctx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot expire duels: %v", err)
	}
}

func (job *DuelTimeoutCronJob) RunNow() bool {
	return true
}

func (job *DuelTimeoutCronJob) Next() time.Time {
	return time.Now().Add(job.interval)
}
