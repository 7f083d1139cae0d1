package infra

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"cryptowallet/internal/domain"
)

// DefaultRefreshSpec refreshes prices every 30 minutes
const DefaultRefreshSpec = "@every 30m"

// fetchTimeout bounds a single price feed request
const fetchTimeout = time.Minute

// ErrRefreshInProgress is returned by RunNow while another refresh is running
var ErrRefreshInProgress = errors.New("price refresh already in progress")

// Scheduler periodically replaces the asset catalog with fresh prices
type Scheduler struct {
	cron    *cron.Cron
	feed    domain.PriceFeed
	catalog *domain.Catalog
	spec    string
	logger  *zap.Logger

	// at most one refresh runs at a time, scheduled or manual
	running atomic.Bool
}

// NewScheduler creates a new scheduler
// spec defaults to DefaultRefreshSpec if empty
func NewScheduler(feed domain.PriceFeed, catalog *domain.Catalog, spec string, logger *zap.Logger) *Scheduler {
	if spec == "" {
		spec = DefaultRefreshSpec
	}
	return &Scheduler{
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		feed:    feed,
		catalog: catalog,
		spec:    spec,
		logger:  logger,
	}
}

// Start registers the refresh job, runs it once immediately and starts the cron loop
func (s *Scheduler) Start() error {
	s.logger.Info("starting price refresh scheduler", zap.String("spec", s.spec))

	if _, err := s.cron.AddFunc(s.spec, func() {
		_ = s.RunNow()
	}); err != nil {
		return err
	}

	go func() {
		_ = s.RunNow()
	}()

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running refresh to finish
func (s *Scheduler) Stop() {
	s.logger.Info("stopping price refresh scheduler")
	<-s.cron.Stop().Done()
}

// Refreshing reports whether a refresh is currently running
func (s *Scheduler) Refreshing() bool {
	return s.running.Load()
}

// RunNow fetches prices and replaces the catalog.
// On failure the previous snapshot is kept. A call made while another refresh is
// running returns ErrRefreshInProgress without fetching.
func (s *Scheduler) RunNow() error {
	if !s.running.CompareAndSwap(false, true) {
		s.logger.Info("price refresh already running, skipped")
		return ErrRefreshInProgress
	}
	defer s.running.Store(false)

	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	assets, err := s.feed.FetchAssets(ctx)
	if err != nil {
		s.logger.Error("price refresh failed, keeping previous catalog",
			zap.Error(err),
			zap.Int("catalog_size", s.catalog.Len()),
		)
		return err
	}

	s.catalog.Replace(assets)
	s.logger.Info("catalog refreshed",
		zap.Int("received", len(assets)),
		zap.Int("catalog_size", s.catalog.Len()),
	)
	return nil
}
