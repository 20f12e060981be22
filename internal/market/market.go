// market — клиент удалённых торговых ресурсов: размещение заявок,
// стакан и лента сделок.
//
// Каждая операция начинается с проверки сессии; без действующей сессии
// сетевой вызов не выполняется. Денежные поля бэкенда (строки)
// конвертируются в decimal, метки времени — в time.Time.
package market

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pribylovaa/go-orderbook-dashboard/internal/api"
	"github.com/pribylovaa/go-orderbook-dashboard/internal/models"
	"github.com/pribylovaa/go-orderbook-dashboard/internal/pkg/log"
	"github.com/pribylovaa/go-orderbook-dashboard/internal/session"
)

// SessionManager — контракт сессионного слоя, нужный торговым операциям.
// AccessToken объединяет проверку сессии и выдачу токена: либо сессия
// действует и токен возвращается, либо операция не имеет права на
// сетевой вызов.
type SessionManager interface {
	AccessToken(ctx context.Context) (string, error)
}

// TradingAPI — контракт торговых эндпойнтов бэкенда.
type TradingAPI interface {
	// PlaceOrder размещает заявку.
	PlaceOrder(ctx context.Context, token string, req api.PlaceOrderRequest) (*api.PlaceOrderResponse, error)
	// OrderBook возвращает снимок стакана.
	OrderBook(ctx context.Context, token string) (*api.OrderBookResponse, error)
	// Trades возвращает окно последних сделок.
	Trades(ctx context.Context, token string) ([]api.TradeItem, error)
}

// Service выполняет аутентифицированные торговые операции.
type Service struct {
	session SessionManager
	trading TradingAPI
}

// New создаёт новый экземпляр Service.
func New(sess SessionManager, trading TradingAPI) *Service {
	return &Service{
		session: sess,
		trading: trading,
	}
}

// SubmitOrder размещает заявку. Сторона приводится к каноническому
// виду; цена и количество сериализуются в формат бэкенда. Повторных
// попыток нет — ошибка возвращается вызывающему как есть.
func (s *Service) SubmitOrder(ctx context.Context, side string, price decimal.Decimal, quantity int64) (*models.OrderReceipt, error) {
	const op = "market.SubmitOrder"

	canonical, err := models.ParseSide(side)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	token, err := s.session.AccessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, session.ErrUnauthenticated)
	}

	resp, err := s.trading.PlaceOrder(ctx, token, api.PlaceOrderRequest{
		OrderType: string(canonical),
		Price:     price.String(),
		Quantity:  strconv.FormatInt(quantity, 10),
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.From(ctx).Info("order_submitted",
		slog.String("side", string(canonical)),
		slog.Int64("order_id", resp.ID),
	)

	return &models.OrderReceipt{
		OrderID: strconv.FormatInt(resp.ID, 10),
		Message: "Order placed successfully",
	}, nil
}

// OrderBook запрашивает и конвертирует текущий снимок стакана.
// Любой сбой (сеть, аутентификация, битые данные) возвращается ошибкой —
// политику реакции выбирает вызывающий.
func (s *Service) OrderBook(ctx context.Context) (*models.OrderBook, error) {
	const op = "market.OrderBook"

	token, err := s.session.AccessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, session.ErrUnauthenticated)
	}

	resp, err := s.trading.OrderBook(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	bids, err := convertOrders(resp.Bids)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	asks, err := convertOrders(resp.Asks)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &models.OrderBook{Bids: bids, Asks: asks}, nil
}

// TradeHistory запрашивает и конвертирует окно последних сделок.
func (s *Service) TradeHistory(ctx context.Context) ([]models.Trade, error) {
	const op = "market.TradeHistory"

	token, err := s.session.AccessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, session.ErrUnauthenticated)
	}

	items, err := s.trading.Trades(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	trades := make([]models.Trade, 0, len(items))
	for _, item := range items {
		trade, err := convertTrade(item)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		trades = append(trades, trade)
	}

	return trades, nil
}

// convertOrders конвертирует заявки из формата бэкенда.
func convertOrders(items []api.OrderItem) ([]models.Order, error) {
	orders := make([]models.Order, 0, len(items))

	for _, item := range items {
		price, err := decimal.NewFromString(item.Price)
		if err != nil {
			return nil, fmt.Errorf("%w: order %d price %q", api.ErrMalformedResponse, item.ID, item.Price)
		}

		ts, err := time.Parse(time.RFC3339Nano, item.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("%w: order %d timestamp %q", api.ErrMalformedResponse, item.ID, item.Timestamp)
		}

		orders = append(orders, models.Order{
			ID:        item.ID,
			Owner:     item.User,
			Price:     price,
			Quantity:  item.Quantity,
			Timestamp: ts,
		})
	}

	return orders, nil
}

// convertTrade конвертирует сделку из формата бэкенда.
func convertTrade(item api.TradeItem) (models.Trade, error) {
	price, err := decimal.NewFromString(item.Price)
	if err != nil {
		return models.Trade{}, fmt.Errorf("%w: trade %d price %q", api.ErrMalformedResponse, item.ID, item.Price)
	}

	ts, err := time.Parse(time.RFC3339Nano, item.Timestamp)
	if err != nil {
		return models.Trade{}, fmt.Errorf("%w: trade %d timestamp %q", api.ErrMalformedResponse, item.ID, item.Timestamp)
	}

	side, err := models.ParseSide(item.TakerSide)
	if err != nil {
		return models.Trade{}, fmt.Errorf("%w: trade %d taker side %q", api.ErrMalformedResponse, item.ID, item.TakerSide)
	}

	return models.Trade{
		ID:        item.ID,
		BidUser:   item.BidUser,
		AskUser:   item.AskUser,
		Price:     price,
		Quantity:  item.Quantity,
		Timestamp: ts,
		TakerSide: side,
	}, nil
}

// IsUnauthenticated сообщает, вызвана ли ошибка отсутствием сессии.
func IsUnauthenticated(err error) bool {
	return errors.Is(err, session.ErrUnauthenticated)
}
