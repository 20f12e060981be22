// dashboard координирует согласованное обновление состояния дашборда:
// стакан и лента сделок запрашиваются параллельно, но публикуются
// только вместе.
//
// Контракт атомарности: наблюдатель никогда не видит снимок, в котором
// обновилась лишь одна половина. Частично неудавшаяся синхронизация
// оставляет прежний снимок нетронутым и возвращает ошибку.
package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/pribylovaa/go-orderbook-dashboard/internal/models"
	"github.com/pribylovaa/go-orderbook-dashboard/internal/pkg/log"
)

// Market — контракт торгового слоя, нужный синхронизатору.
type Market interface {
	// OrderBook возвращает текущий снимок стакана.
	OrderBook(ctx context.Context) (*models.OrderBook, error)
	// TradeHistory возвращает окно последних сделок.
	TradeHistory(ctx context.Context) ([]models.Trade, error)
}

// SessionChecker — проверка наличия сессии для первоначальной загрузки.
type SessionChecker interface {
	IsAuthenticated(ctx context.Context) bool
}

// Synchronizer владеет текущим снимком и правилами его замены.
type Synchronizer struct {
	market  Market
	session SessionChecker
	now     func() time.Time

	// flight гарантирует не более одной синхронизации в полёте:
	// конкурентные вызовы RefreshAll ждут уже запущенную.
	flight singleflight.Group

	mu   sync.RWMutex
	snap models.Snapshot
}

// New создаёт синхронизатор с пустым снимком.
func New(market Market, sess SessionChecker) *Synchronizer {
	return &Synchronizer{
		market:  market,
		session: sess,
		now:     time.Now,
	}
}

// SetClock подменяет источник времени (для тестов).
func (s *Synchronizer) SetClock(now func() time.Time) {
	s.now = now
}

// Snapshot возвращает копию текущего снимка.
func (s *Synchronizer) Snapshot() models.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.snap
}

// RefreshAll обновляет обе половины снимка за одну синхронизацию.
//
// Оба запроса стартуют до ожидания любого из них; снимок заменяется
// только когда оба завершились успешно. Ошибка любой половины оставляет
// снимок без изменений. Уведомление пользователя — забота вызывающего,
// автоматических повторов нет.
func (s *Synchronizer) RefreshAll(ctx context.Context) error {
	const op = "dashboard.RefreshAll"

	_, err, shared := s.flight.Do("refresh_all", func() (any, error) {
		syncTotal.Inc()

		var (
			book   *models.OrderBook
			trades []models.Trade
		)

		// Без errgroup.WithContext: неудача одной половины не отменяет
		// вторую, результат просто не публикуется.
		var g errgroup.Group
		g.Go(func() error {
			var err error
			book, err = s.market.OrderBook(ctx)
			return err
		})
		g.Go(func() error {
			var err error
			trades, err = s.market.TradeHistory(ctx)
			return err
		})

		if err := g.Wait(); err != nil {
			syncFailures.Inc()
			return nil, err
		}

		s.mu.Lock()
		s.snap = models.Snapshot{
			Book:     *book,
			Trades:   trades,
			SyncedAt: s.now(),
		}
		s.mu.Unlock()

		return nil, nil
	})

	if err != nil {
		log.From(ctx).Warn("refresh_all_failed",
			slog.String("op", op),
			slog.Bool("shared", shared),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// InitialLoad — первоначальная загрузка при старте.
// Отсутствие сессии — ожидаемое состояние до входа, а не ошибка:
// загрузка молча пропускается.
func (s *Synchronizer) InitialLoad(ctx context.Context) error {
	const op = "dashboard.InitialLoad"

	if !s.session.IsAuthenticated(ctx) {
		log.From(ctx).Debug("initial_load_skipped", slog.String("op", op))
		return nil
	}

	if err := s.RefreshAll(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
