package settlement

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

type stubSettler struct {
	settleFn func(ctx context.Context, before time.Time) (int64, error)
}

func (s stubSettler) SettleDue(ctx context.Context, before time.Time) (int64, error) {
	return s.settleFn(ctx, before)
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestRunSettlesTransfersOlderThanHold(t *testing.T) {
	var cutoff time.Time
	worker := NewWorker(stubSettler{
		settleFn: func(_ context.Context, before time.Time) (int64, error) {
			cutoff = before
			return 3, nil
		},
	}, testLogger(), 2*time.Minute)

	start := time.Now()
	worker.Run(context.Background())
	want := start.Add(-2 * time.Minute)
	if cutoff.Before(want.Add(-time.Second)) || cutoff.After(want.Add(time.Second)) {
		t.Fatalf("cutoff %v not within a second of %v", cutoff, want)
	}
}

func TestRunSwallowsStoreErrors(t *testing.T) {
	worker := NewWorker(stubSettler{
		settleFn: func(context.Context, time.Time) (int64, error) {
			return 0, errors.New("db down")
		},
	}, testLogger(), time.Minute)
	// Must not panic; the next scheduled pass retries.
	worker.Run(context.Background())
}

func TestStartRejectsBadSchedule(t *testing.T) {
	worker := NewWorker(stubSettler{
		settleFn: func(context.Context, time.Time) (int64, error) {
			return 0, nil
		},
	}, testLogger(), time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if _, err := worker.Start(ctx, "not a schedule"); err == nil {
		t.Fatalf("expected schedule parse error")
	}
}
