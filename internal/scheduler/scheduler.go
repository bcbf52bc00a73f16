// Package scheduler runs the recurring monitoring jobs on cron
// schedules.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Schedules are package vars so tests can substitute fast intervals.
var (
	scrapeSchedule = "0 8 * * *"
	buzzSchedule   = "0 * * * *"
	digestSchedule = "0 9 * * 1"
)

// Jobs holds the work the scheduler triggers. Nil entries are not
// scheduled.
type Jobs struct {
	Scrape func(ctx context.Context) error
	Buzz   func(ctx context.Context) error
	Digest func(ctx context.Context) error
}

// AdminNotifier receives operational notices around job runs.
type AdminNotifier interface {
	Notify(ctx context.Context, subject, text string)
}

// Scheduler owns the cron runner. Start and Stop are idempotent and
// report whether they changed the running state.
type Scheduler struct {
	jobs  Jobs
	admin AdminNotifier

	mu     sync.Mutex
	cron   *cron.Cron
	active bool
}

func New(jobs Jobs, admin AdminNotifier) *Scheduler {
	return &Scheduler{jobs: jobs, admin: admin}
}

// Start begins the cron schedules. Returns false if already running.
func (s *Scheduler) Start(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		return false, nil
	}

	c := cron.New()
	if s.jobs.Scrape != nil {
		if _, err := c.AddFunc(scrapeSchedule, func() { s.runScrape(ctx) }); err != nil {
			return false, eris.Wrap(err, "scheduler: add scrape job")
		}
	}
	if s.jobs.Buzz != nil {
		if _, err := c.AddFunc(buzzSchedule, func() { s.runBuzz(ctx) }); err != nil {
			return false, eris.Wrap(err, "scheduler: add buzz job")
		}
	}
	if s.jobs.Digest != nil {
		if _, err := c.AddFunc(digestSchedule, func() { s.runDigest(ctx) }); err != nil {
			return false, eris.Wrap(err, "scheduler: add digest job")
		}
	}

	c.Start()
	s.cron = c
	s.active = true
	zap.L().Info("scheduler started",
		zap.String("scrape", scrapeSchedule),
		zap.String("buzz", buzzSchedule),
		zap.String("digest", digestSchedule))
	return true, nil
}

// Stop cancels future firings. Returns false if not running. Jobs
// already in flight run to completion in the background; Stop does
// not wait for them, so it and IsActive stay responsive during a run.
func (s *Scheduler) Stop() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return false
	}
	s.cron.Stop()
	s.cron = nil
	s.active = false
	zap.L().Info("scheduler stopped")
	return true
}

func (s *Scheduler) IsActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *Scheduler) runScrape(ctx context.Context) {
	s.notify(ctx, "Scheduler: Scraper Job Started",
		fmt.Sprintf("Scraper job started at %s", time.Now().UTC().Format(time.RFC3339)))
	if err := s.jobs.Scrape(ctx); err != nil {
		zap.L().Error("scheduled scrape failed", zap.Error(err))
		s.notify(ctx, "Scheduler: Scraper Job Error", fmt.Sprintf("Error: %v", err))
		return
	}
	s.notify(ctx, "Scheduler: Scraper Job Completed",
		fmt.Sprintf("Scraper job completed at %s", time.Now().UTC().Format(time.RFC3339)))
}

func (s *Scheduler) runBuzz(ctx context.Context) {
	if err := s.jobs.Buzz(ctx); err != nil {
		zap.L().Error("scheduled buzz update failed", zap.Error(err))
	}
}

func (s *Scheduler) runDigest(ctx context.Context) {
	s.notify(ctx, "Scheduler: Weekly Digest Started",
		fmt.Sprintf("Weekly digest started at %s", time.Now().UTC().Format(time.RFC3339)))
	if err := s.jobs.Digest(ctx); err != nil {
		zap.L().Error("scheduled digest failed", zap.Error(err))
		s.notify(ctx, "Scheduler: Weekly Digest Error", fmt.Sprintf("Error: %v", err))
		return
	}
	s.notify(ctx, "Scheduler: Weekly Digest Completed",
		fmt.Sprintf("Weekly digest completed at %s", time.Now().UTC().Format(time.RFC3339)))
}

func (s *Scheduler) notify(ctx context.Context, subject, text string) {
	if s.admin == nil {
		return
	}
	s.admin.Notify(ctx, subject, text)
}
