package sweeper

import (
	"context"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/hireloop/hireloop/internal/clock"
	"github.com/hireloop/hireloop/internal/config"
	obsmetrics "github.com/hireloop/hireloop/internal/observability/metrics"
	"github.com/hireloop/hireloop/internal/ratelimit"
	subdomain "github.com/hireloop/hireloop/internal/subscription/domain"
)

const lockKey = "sweeper:ledger-reset"

// Sweeper periodically force-resets ledgers whose period boundary has passed.
// The guard already resets lazily per request, so this is storage hygiene,
// not a correctness requirement.
type Sweeper struct {
	db      *gorm.DB
	log     *zap.Logger
	clock   clock.Clock
	repo    subdomain.Repository
	holder  *config.GuardConfigHolder
	locker  *ratelimit.Locker
	metrics *obsmetrics.Metrics

	stop chan struct{}
	done chan struct{}
}

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Clock   clock.Clock
	Repo    subdomain.Repository
	Holder  *config.GuardConfigHolder
	Locker  *ratelimit.Locker   `optional:"true"`
	Metrics *obsmetrics.Metrics `optional:"true"`
}

func New(p Params) *Sweeper {
	return &Sweeper{
		db:      p.DB,
		log:     p.Log.Named("sweeper"),
		clock:   p.Clock,
		repo:    p.Repo,
		holder:  p.Holder,
		locker:  p.Locker,
		metrics: p.Metrics,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

func (s *Sweeper) Start() {
	go s.loop()
}

func (s *Sweeper) Stop() {
	close(s.stop)
	<-s.done
}

func (s *Sweeper) loop() {
	defer close(s.done)

	for {
		interval := s.holder.Current().SweepInterval
		if interval <= 0 {
			interval = time.Hour
		}
		select {
		case <-s.stop:
			return
		case <-time.After(interval):
		}

		cfg := s.holder.Current()
		if !cfg.SweepEnabled {
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		s.sweep(ctx, cfg.SweepBatchSize)
		cancel()
	}
}

// sweep takes the cross-replica lock and resets due ledgers one batch at a
// time. Version conflicts mean a live request reset that ledger first; they
// are skipped, not retried.
func (s *Sweeper) sweep(ctx context.Context, batchSize int) {
	if s.locker != nil {
		token, ok, err := s.locker.TryLock(ctx, lockKey, time.Minute)
		if err != nil {
			s.log.Warn("sweep lock attempt failed", zap.Error(err))
			return
		}
		if !ok {
			return
		}
		defer func() {
			if err := s.locker.Release(ctx, lockKey, token); err != nil {
				s.log.Warn("sweep lock release failed", zap.Error(err))
			}
		}()
	}

	now := s.clock.Now()
	due, err := s.repo.ListDueForReset(ctx, s.db, now, batchSize)
	if err != nil {
		s.log.Error("listing due ledgers failed", zap.Error(err))
		return
	}

	reset := 0
	for i := range due {
		sub := &due[i]
		ok, err := s.repo.ResetCounters(ctx, s.db, sub, subdomain.NextMonthStart(now), now)
		if err != nil {
			s.log.Error("ledger force-reset failed",
				zap.Int64("user_id", sub.UserID),
				zap.Error(err),
			)
			continue
		}
		if !ok {
			continue
		}
		reset++
		if s.metrics != nil {
			s.metrics.RecordLedgerReset(ctx, "sweep")
		}
	}

	if reset > 0 {
		s.log.Info("ledger sweep completed", zap.Int("due", len(due)), zap.Int("reset", reset))
	}
}
