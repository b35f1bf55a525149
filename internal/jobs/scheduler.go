// Package jobs runs background maintenance on a cron schedule.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"github.com/dinostore/backend/internal/audit"
)

// StaleExpirer expires pending ledger entries created before cutoff.
type StaleExpirer interface {
	ExpireStale(ctx context.Context, cutoff time.Time) (int64, error)
}

// Scheduler expires abandoned checkouts.
type Scheduler struct {
	cron    *cron.Cron
	ledger  StaleExpirer
	audit   *audit.Logger
	spec    string
	ttl     time.Duration
	timeout time.Duration
	now     func() time.Time
}

func NewScheduler(ledger StaleExpirer, auditLogger *audit.Logger, spec string, ttl time.Duration) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithLocation(time.UTC), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		ledger:  ledger,
		audit:   auditLogger,
		spec:    spec,
		ttl:     ttl,
		timeout: time.Minute,
		now:     time.Now,
	}
}

// Start registers the sweep and starts the cron loop.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		if _, err := s.Sweep(ctx); err != nil {
			log.WithError(err).Error("[SWEEP] Abandoned checkout sweep failed")
		}
	})
	if err != nil {
		return fmt.Errorf("schedule sweep %q: %w", s.spec, err)
	}

	s.cron.Start()
	log.WithFields(log.Fields{"spec": s.spec, "ttl": s.ttl}).Info("[SWEEP] Scheduler started")
	return nil
}

// Sweep expires every pending entry older than the TTL once.
func (s *Scheduler) Sweep(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	cutoff := s.now().Add(-s.ttl)
	count, err := s.ledger.ExpireStale(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		s.audit.LogSweep(count, cutoff)
		log.WithField("entries", count).Info("[SWEEP] Expired abandoned checkouts")
	} else {
		log.Debug("[SWEEP] Nothing to expire")
	}
	return count, nil
}

// Stop waits for a running sweep to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("[SWEEP] Scheduler stopped")
}
