package job

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	defaultBatchSize = 100
	defaultTimeout   = time.Minute
)

// Expirer cancels pending swap requests whose original shift has started.
type Expirer interface {
	ExpireStale(ctx context.Context, limit int) (int, error)
}

// ExpiryJob sweeps stale swap requests in batches.
type ExpiryJob struct {
	expirer   Expirer
	logger    *zap.Logger
	batchSize int
	timeout   time.Duration
}

// NewExpiryJob creates an ExpiryJob
func NewExpiryJob(expirer Expirer, logger *zap.Logger) *ExpiryJob {
	return &ExpiryJob{
		expirer:   expirer,
		logger:    logger,
		batchSize: defaultBatchSize,
		timeout:   defaultTimeout,
	}
}

// Run implements cron.Job.
func (j *ExpiryJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	if _, err := j.RunOnce(ctx); err != nil {
		j.logger.Error("swap expiry sweep failed", zap.Error(err))
	}
}

// RunOnce keeps sweeping until a batch comes back short.
func (j *ExpiryJob) RunOnce(ctx context.Context) (int, error) {
	total := 0
	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		n, err := j.expirer.ExpireStale(ctx, j.batchSize)
		total += n
		if err != nil {
			return total, err
		}
		if n < j.batchSize {
			break
		}
	}
	if total > 0 {
		j.logger.Info("swap expiry sweep finished", zap.Int("expired", total))
	}
	return total, nil
}

// ── Scheduler ──

// Scheduler runs the expiry job on a cron expression.
type Scheduler struct {
	cron *cron.Cron
}

// NewScheduler accepts standard five-field expressions and descriptors
// such as "@every 5m".
func NewScheduler(spec string, job *ExpiryJob, logger *zap.Logger) (*Scheduler, error) {
	cl := cronLogger{logger: logger.Sugar()}
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	if _, err := c.AddJob(spec, job); err != nil {
		return nil, fmt.Errorf("invalid expiry cron %q: %w", spec, err)
	}
	return &Scheduler{cron: c}, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop prevents new runs and waits for a running sweep or ctx.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	logger *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Errorw(msg, append(keysAndValues, "error", err)...)
}
