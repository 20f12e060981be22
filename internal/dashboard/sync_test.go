package dashboard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/go-orderbook-dashboard/internal/models"
	"github.com/pribylovaa/go-orderbook-dashboard/mocks"
)

func newSynchronizer(t *testing.T) (*Synchronizer, *mocks.MockMarket, *mocks.MockSessionChecker) {
	t.Helper()

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	market := mocks.NewMockMarket(ctrl)
	sess := mocks.NewMockSessionChecker(ctrl)

	return New(market, sess), market, sess
}

func sampleBook() *models.OrderBook {
	return &models.OrderBook{
		Bids: []models.Order{{ID: 1, Owner: "alice", Price: decimal.NewFromInt(100), Quantity: 3}},
		Asks: []models.Order{{ID: 2, Owner: "bob", Price: decimal.NewFromInt(101), Quantity: 5}},
	}
}

func sampleTrades() []models.Trade {
	return []models.Trade{
		{ID: 7, BidUser: "alice", AskUser: "bob", Price: decimal.NewFromInt(100), Quantity: 2, TakerSide: models.SideBid},
	}
}

func TestRefreshAll_BothSucceed_ReplacesSnapshot(t *testing.T) {
	t.Parallel()

	s, market, _ := newSynchronizer(t)

	syncedAt := time.Unix(1_700_000_000, 0)
	s.SetClock(func() time.Time { return syncedAt })

	market.EXPECT().OrderBook(gomock.Any()).Return(sampleBook(), nil)
	market.EXPECT().TradeHistory(gomock.Any()).Return(sampleTrades(), nil)

	require.NoError(t, s.RefreshAll(context.Background()))

	snap := s.Snapshot()
	require.Equal(t, *sampleBook(), snap.Book)
	require.Equal(t, sampleTrades(), snap.Trades)
	require.True(t, snap.SyncedAt.Equal(syncedAt))
}

func TestRefreshAll_BookFails_SnapshotUntouched(t *testing.T) {
	t.Parallel()

	s, market, _ := newSynchronizer(t)

	// Наполняем снимок успешной синхронизацией.
	market.EXPECT().OrderBook(gomock.Any()).Return(sampleBook(), nil)
	market.EXPECT().TradeHistory(gomock.Any()).Return(sampleTrades(), nil)
	require.NoError(t, s.RefreshAll(context.Background()))
	before := s.Snapshot()

	// Стакан падает, лента успевает вернуть новые данные.
	market.EXPECT().OrderBook(gomock.Any()).Return(nil, errors.New("backend down"))
	market.EXPECT().TradeHistory(gomock.Any()).Return([]models.Trade{{ID: 99}}, nil)

	require.Error(t, s.RefreshAll(context.Background()))

	// Ни одна половина не просочилась в снимок.
	require.Equal(t, before, s.Snapshot())
}

func TestRefreshAll_TradesFail_SnapshotUntouched(t *testing.T) {
	t.Parallel()

	s, market, _ := newSynchronizer(t)

	market.EXPECT().OrderBook(gomock.Any()).Return(sampleBook(), nil)
	market.EXPECT().TradeHistory(gomock.Any()).Return(sampleTrades(), nil)
	require.NoError(t, s.RefreshAll(context.Background()))
	before := s.Snapshot()

	market.EXPECT().OrderBook(gomock.Any()).Return(&models.OrderBook{}, nil)
	market.EXPECT().TradeHistory(gomock.Any()).Return(nil, errors.New("backend down"))

	require.Error(t, s.RefreshAll(context.Background()))
	require.Equal(t, before, s.Snapshot())
}

func TestRefreshAll_BothFail_ErrorReturned(t *testing.T) {
	t.Parallel()

	s, market, _ := newSynchronizer(t)

	market.EXPECT().OrderBook(gomock.Any()).Return(nil, errors.New("down"))
	market.EXPECT().TradeHistory(gomock.Any()).Return(nil, errors.New("down"))

	require.Error(t, s.RefreshAll(context.Background()))
	require.True(t, s.Snapshot().SyncedAt.IsZero())
}

// Оба запроса стартуют до ожидания любого из них.
func TestRefreshAll_FetchesConcurrently(t *testing.T) {
	t.Parallel()

	s, market, _ := newSynchronizer(t)

	bookStarted := make(chan struct{})
	tradesStarted := make(chan struct{})

	market.EXPECT().OrderBook(gomock.Any()).DoAndReturn(func(context.Context) (*models.OrderBook, error) {
		close(bookStarted)
		<-tradesStarted // дедлок, если запросы последовательные
		return sampleBook(), nil
	})
	market.EXPECT().TradeHistory(gomock.Any()).DoAndReturn(func(context.Context) ([]models.Trade, error) {
		close(tradesStarted)
		<-bookStarted
		return sampleTrades(), nil
	})

	require.NoError(t, s.RefreshAll(context.Background()))
}

// Конкурентные RefreshAll делят одну синхронизацию в полёте.
func TestRefreshAll_SingleFlight(t *testing.T) {
	t.Parallel()

	s, market, _ := newSynchronizer(t)

	release := make(chan struct{})

	market.EXPECT().OrderBook(gomock.Any()).DoAndReturn(func(context.Context) (*models.OrderBook, error) {
		<-release
		return sampleBook(), nil
	}).Times(1)
	market.EXPECT().TradeHistory(gomock.Any()).Return(sampleTrades(), nil).Times(1)

	const callers = 5

	var wg sync.WaitGroup
	errs := make([]error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = s.RefreshAll(context.Background())
		}(i)
	}

	// Даём всем вызовам встать в очередь за одним полётом.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
}

func TestInitialLoad_Unauthenticated_SilentSkip(t *testing.T) {
	t.Parallel()

	// Market без ожиданий: запросов быть не должно.
	s, _, sess := newSynchronizer(t)

	sess.EXPECT().IsAuthenticated(gomock.Any()).Return(false)

	require.NoError(t, s.InitialLoad(context.Background()))
	require.True(t, s.Snapshot().SyncedAt.IsZero())
}

func TestInitialLoad_Authenticated_Syncs(t *testing.T) {
	t.Parallel()

	s, market, sess := newSynchronizer(t)

	sess.EXPECT().IsAuthenticated(gomock.Any()).Return(true)
	market.EXPECT().OrderBook(gomock.Any()).Return(sampleBook(), nil)
	market.EXPECT().TradeHistory(gomock.Any()).Return(sampleTrades(), nil)

	require.NoError(t, s.InitialLoad(context.Background()))
	require.False(t, s.Snapshot().SyncedAt.IsZero())
}

func TestInitialLoad_Authenticated_SyncFails_ErrorPropagated(t *testing.T) {
	t.Parallel()

	s, market, sess := newSynchronizer(t)

	sess.EXPECT().IsAuthenticated(gomock.Any()).Return(true)
	market.EXPECT().OrderBook(gomock.Any()).Return(nil, errors.New("down"))
	market.EXPECT().TradeHistory(gomock.Any()).Return(sampleTrades(), nil)

	require.Error(t, s.InitialLoad(context.Background()))
}
