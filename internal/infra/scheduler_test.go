package infra

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"cryptowallet/internal/domain"
)

type stubFeed struct {
	assets []domain.Asset
	err    error
	calls  atomic.Int32
}

func (f *stubFeed) FetchAssets(context.Context) ([]domain.Asset, error) {
	f.calls.Add(1)
	return f.assets, f.err
}

func btc(price int64) domain.Asset {
	return domain.Asset{ID: "BTC", Name: "Bitcoin", Price: decimal.NewFromInt(price), IsCrypto: true}
}

func TestRunNowReplacesCatalog(t *testing.T) {
	catalog := domain.NewCatalog()
	feed := &stubFeed{assets: []domain.Asset{
		btc(100),
		{ID: "EUR", Name: "Euro", Price: decimal.NewFromInt(1)},
	}}
	s := NewScheduler(feed, catalog, "", zap.NewNop())

	require.NoError(t, s.RunNow())

	assert.Equal(t, 1, catalog.Len())
	asset, ok := catalog.Find("BTC")
	require.True(t, ok)
	assert.True(t, asset.Price.Equal(decimal.NewFromInt(100)))
}

func TestRunNowKeepsCatalogOnFailure(t *testing.T) {
	catalog := domain.NewCatalog()
	catalog.Replace([]domain.Asset{btc(100)})
	feed := &stubFeed{err: errors.New("feed down")}
	s := NewScheduler(feed, catalog, "", zap.NewNop())

	assert.Error(t, s.RunNow())
	assert.Equal(t, 1, catalog.Len())
}

// blockingFeed signals started and waits for release on every fetch
type blockingFeed struct {
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
}

func (f *blockingFeed) FetchAssets(context.Context) ([]domain.Asset, error) {
	f.calls.Add(1)
	f.started <- struct{}{}
	<-f.release
	return []domain.Asset{btc(7)}, nil
}

func TestRunNowRejectsOverlappingRefresh(t *testing.T) {
	catalog := domain.NewCatalog()
	feed := &blockingFeed{started: make(chan struct{}, 2), release: make(chan struct{})}
	s := NewScheduler(feed, catalog, "", zap.NewNop())

	first := make(chan error, 1)
	go func() { first <- s.RunNow() }()

	select {
	case <-feed.started:
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for first refresh")
	}
	assert.True(t, s.Refreshing())
	assert.ErrorIs(t, s.RunNow(), ErrRefreshInProgress)

	close(feed.release)
	require.NoError(t, <-first)
	assert.False(t, s.Refreshing())
	assert.EqualValues(t, 1, feed.calls.Load())
	assert.Equal(t, 1, catalog.Len())

	// the guard is released once the refresh completes
	require.NoError(t, s.RunNow())
	assert.EqualValues(t, 2, feed.calls.Load())
}

func TestStartRefreshesImmediately(t *testing.T) {
	catalog := domain.NewCatalog()
	feed := &stubFeed{assets: []domain.Asset{btc(42)}}
	s := NewScheduler(feed, catalog, "@every 1h", zap.NewNop())

	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Eventually(t, func() bool {
		return catalog.Len() == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.GreaterOrEqual(t, feed.calls.Load(), int32(1))
}

func TestStartRejectsBadSpec(t *testing.T) {
	s := NewScheduler(&stubFeed{}, domain.NewCatalog(), "not a spec", zap.NewNop())
	assert.Error(t, s.Start())
}

func TestNewLoggerLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "bogus"} {
		logger, err := NewLogger(level, "")
		require.NoError(t, err, level)
		require.NotNil(t, logger)
	}
}
