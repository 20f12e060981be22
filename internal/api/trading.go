package api

import (
	"context"
	"fmt"
	"net/http"
)

// DTO торговых эндпойнтов. Денежные поля бэкенд передаёт строками.

// PlaceOrderRequest — тело запроса на размещение заявки.
type PlaceOrderRequest struct {
	OrderType string `json:"order_type"`
	Price     string `json:"price"`
	Quantity  string `json:"quantity"`
}

// PlaceOrderResponse — ответ на размещение заявки.
type PlaceOrderResponse struct {
	ID int64 `json:"id"`
}

// OrderItem — заявка стакана в формате бэкенда.
// Цена приходит строкой, количество — числом.
type OrderItem struct {
	ID        int64  `json:"id"`
	User      string `json:"user"`
	Price     string `json:"price"`
	Quantity  int64  `json:"quantity"`
	Timestamp string `json:"timestamp"`
}

// OrderBookResponse — полный снимок стакана.
type OrderBookResponse struct {
	Bids []OrderItem `json:"bids"`
	Asks []OrderItem `json:"asks"`
}

// TradeItem — сделка из ленты в формате бэкенда.
type TradeItem struct {
	ID        int64  `json:"id"`
	BidUser   string `json:"bid_user"`
	AskUser   string `json:"ask_user"`
	Price     string `json:"price"`
	Quantity  int64  `json:"quantity"`
	Timestamp string `json:"timestamp"`
	TakerSide string `json:"taker_side"`
}

// PlaceOrder размещает заявку от имени владельца access-токена.
func (c *Client) PlaceOrder(ctx context.Context, token string, req PlaceOrderRequest) (*PlaceOrderResponse, error) {
	const op = "api.PlaceOrder"

	var out PlaceOrderResponse
	if err := c.do(ctx, http.MethodPost, "/orders/", token, req, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &out, nil
}

// OrderBook запрашивает текущий снимок стакана.
func (c *Client) OrderBook(ctx context.Context, token string) (*OrderBookResponse, error) {
	const op = "api.OrderBook"

	var out OrderBookResponse
	if err := c.do(ctx, http.MethodGet, "/orderbook/", token, nil, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &out, nil
}

// Trades запрашивает окно последних сделок (размер окна задаёт бэкенд).
func (c *Client) Trades(ctx context.Context, token string) ([]TradeItem, error) {
	const op = "api.Trades"

	var out []TradeItem
	if err := c.do(ctx, http.MethodGet, "/trades/", token, nil, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}
