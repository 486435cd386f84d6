// Package settlement completes outgoing ACH transfers after a hold period.
// The account was already debited when the transfer was created, so
// settlement only flips transfer status; no balance moves here.
package settlement

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

type ExternalTransferSettler interface {
	SettleDue(ctx context.Context, before time.Time) (int64, error)
}

type Worker struct {
	externals ExternalTransferSettler
	logger    *logrus.Logger
	hold      time.Duration
}

func NewWorker(externals ExternalTransferSettler, logger *logrus.Logger, hold time.Duration) *Worker {
	return &Worker{externals: externals, logger: logger, hold: hold}
}

// Run settles every pending outgoing ACH transfer older than the hold.
func (w *Worker) Run(ctx context.Context) {
	settled, err := w.externals.SettleDue(ctx, time.Now().Add(-w.hold))
	if err != nil {
		w.logger.WithError(err).Error("ach settlement pass failed")
		return
	}
	if settled > 0 {
		w.logger.WithField("count", settled).Info("settled ach transfers")
	}
}

// Start schedules settlement passes until ctx is cancelled. The cron entry
// skips a pass if the previous one is still running.
func (w *Worker) Start(ctx context.Context, schedule string) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	_, err := c.AddFunc(schedule, func() {
		w.Run(ctx)
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	go func() {
		<-ctx.Done()
		c.Stop()
	}()
	return c, nil
}
