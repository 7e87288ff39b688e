package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

// ErrNoSession is returned by RunRefresh when nobody is signed in
var ErrNoSession = errors.New("no signed-in session to refresh with")

// TokenProvider hands out credentials for background work
type TokenProvider interface {
	LatestTokenSource() (oauth2.TokenSource, bool)
}

// Refresher rebuilds the descendant index
type Refresher interface {
	Refresh(ctx context.Context, ts oauth2.TokenSource) (int, error)
}

// Scheduler manages periodic index refreshes
type Scheduler struct {
	cron      *cron.Cron
	interval  time.Duration
	tokens    TokenProvider
	refresher Refresher
	timeout   time.Duration
}

// New creates a new scheduler
func New(interval time.Duration, tokens TokenProvider, refresher Refresher) *Scheduler {
	return &Scheduler{
		cron:      cron.New(cron.WithSeconds()),
		interval:  interval,
		tokens:    tokens,
		refresher: refresher,
		timeout:   30 * time.Minute,
	}
}

// Start runs the refresh job until ctx is cancelled. A zero interval
// disables the job.
func (s *Scheduler) Start(ctx context.Context) {
	if s.interval <= 0 {
		logrus.Info("Scheduled index refresh disabled")
		<-ctx.Done()
		return
	}

	logrus.Infof("Starting scheduler with interval: %v", s.interval)

	cronSpec := fmt.Sprintf("@every %v", s.interval)
	_, err := s.cron.AddFunc(cronSpec, func() {
		logrus.Info("Running scheduled index refresh")
		if err := s.RunRefresh(); err != nil {
			if errors.Is(err, ErrNoSession) {
				logrus.Info("Skipping scheduled index refresh: nobody is signed in")
				return
			}
			logrus.Errorf("Scheduled index refresh failed: %v", err)
		}
	})
	if err != nil {
		logrus.Errorf("Failed to schedule index refresh job: %v", err)
		return
	}

	s.cron.Start()

	<-ctx.Done()
	logrus.Info("Stopping scheduler...")
	<-s.cron.Stop().Done()
}

// RunRefresh runs one refresh with the most recent session's credentials
func (s *Scheduler) RunRefresh() error {
	ts, ok := s.tokens.LatestTokenSource()
	if !ok {
		return ErrNoSession
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	count, err := s.refresher.Refresh(ctx, ts)
	if err != nil {
		return err
	}
	logrus.Infof("Scheduled refresh indexed %d ids", count)
	return nil
}
