package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pribylovaa/go-orderbook-dashboard/internal/dashboard"
	"github.com/pribylovaa/go-orderbook-dashboard/internal/market"
	"github.com/pribylovaa/go-orderbook-dashboard/internal/models"
	"github.com/pribylovaa/go-orderbook-dashboard/internal/session"
)

// Handlers агрегирует зависимости локального API.
type Handlers struct {
	Session *session.Service
	Market  *market.Service
	Sync    *dashboard.Synchronizer
}

func NewHandlers(sess *session.Service, mkt *market.Service, sync *dashboard.Synchronizer) *Handlers {
	return &Handlers{
		Session: sess,
		Market:  mkt,
		Sync:    sync,
	}
}

// Входные/выходные модели локального API.

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Authenticated bool         `json:"authenticated"`
	User          *userPayload `json:"user,omitempty"`
}

type userPayload struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Balance int64  `json:"balance"`
}

type submitOrderRequest struct {
	Side     string `json:"side"`
	Price    string `json:"price"`
	Quantity int64  `json:"quantity"`
}

type submitOrderResponse struct {
	OrderID string `json:"order_id"`
	Message string `json:"message"`
}

type okResponse struct {
	Ok bool `json:"ok"`
}

type orderPayload struct {
	ID        int64     `json:"id"`
	Owner     string    `json:"owner"`
	Price     string    `json:"price"`
	Quantity  int64     `json:"quantity"`
	Timestamp time.Time `json:"timestamp"`
}

type tradePayload struct {
	ID        int64     `json:"id"`
	BidUser   string    `json:"bid_user"`
	AskUser   string    `json:"ask_user"`
	Price     string    `json:"price"`
	Quantity  int64     `json:"quantity"`
	Timestamp time.Time `json:"timestamp"`
	TakerSide string    `json:"taker_side"`
}

type snapshotResponse struct {
	Bids     []orderPayload `json:"bids"`
	Asks     []orderPayload `json:"asks"`
	Trades   []tradePayload `json:"trades"`
	SyncedAt time.Time      `json:"synced_at"`
}

func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var in registerRequest
	if err := decodeStrict(r, &in); err != nil {
		writeBadRequest(w, r, "invalid request body")
		return
	}

	if err := h.Session.Register(r.Context(), in.Username, in.Email, in.Password); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, okResponse{Ok: true})
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := decodeStrict(r, &in); err != nil {
		writeBadRequest(w, r, "invalid request body")
		return
	}

	if err := h.Session.Login(r.Context(), in.Email, in.Password); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, okResponse{Ok: true})
}

func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Session.Logout(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, okResponse{Ok: true})
}

// CurrentSession отдаёт состояние сессии. Отсутствие сессии — не ошибка,
// а легитимный ответ {authenticated: false}.
func (h *Handlers) CurrentSession(w http.ResponseWriter, r *http.Request) {
	user, err := h.Session.CurrentUser(r.Context())
	if err != nil {
		if errors.Is(err, session.ErrUnauthenticated) {
			writeJSON(w, http.StatusOK, sessionResponse{Authenticated: false})
			return
		}

		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{
		Authenticated: true,
		User: &userPayload{
			ID:      user.ID,
			Name:    user.Name,
			Email:   user.Email,
			Balance: user.Balance,
		},
	})
}

func (h *Handlers) SubmitOrder(w http.ResponseWriter, r *http.Request) {
	var in submitOrderRequest
	if err := decodeStrict(r, &in); err != nil {
		writeBadRequest(w, r, "invalid request body")
		return
	}

	price, err := decimal.NewFromString(in.Price)
	if err != nil {
		writeBadRequest(w, r, "price must be a decimal string")
		return
	}

	receipt, err := h.Market.SubmitOrder(r.Context(), in.Side, price, in.Quantity)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, submitOrderResponse{
		OrderID: receipt.OrderID,
		Message: receipt.Message,
	})
}

// Refresh запускает одну синхронизацию и отдаёт свежий снимок.
func (h *Handlers) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.Sync.RefreshAll(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, snapshotPayload(h.Sync.Snapshot()))
}

// Snapshot отдаёт текущий снимок без обращения к бэкенду.
func (h *Handlers) Snapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, snapshotPayload(h.Sync.Snapshot()))
}

func snapshotPayload(snap models.Snapshot) snapshotResponse {
	out := snapshotResponse{
		Bids:     make([]orderPayload, 0, len(snap.Book.Bids)),
		Asks:     make([]orderPayload, 0, len(snap.Book.Asks)),
		Trades:   make([]tradePayload, 0, len(snap.Trades)),
		SyncedAt: snap.SyncedAt,
	}

	for _, o := range snap.Book.Bids {
		out.Bids = append(out.Bids, orderFromModel(o))
	}
	for _, o := range snap.Book.Asks {
		out.Asks = append(out.Asks, orderFromModel(o))
	}
	for _, t := range snap.Trades {
		out.Trades = append(out.Trades, tradePayload{
			ID:        t.ID,
			BidUser:   t.BidUser,
			AskUser:   t.AskUser,
			Price:     t.Price.String(),
			Quantity:  t.Quantity,
			Timestamp: t.Timestamp,
			TakerSide: string(t.TakerSide),
		})
	}

	return out
}

func orderFromModel(o models.Order) orderPayload {
	return orderPayload{
		ID:        o.ID,
		Owner:     o.Owner,
		Price:     o.Price.String(),
		Quantity:  o.Quantity,
		Timestamp: o.Timestamp,
	}
}

// writeJSON — единый ответ JSON с нужным Content-Type.
func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// decodeStrict — строгий JSON-декодер: запрещаем неизвестные поля.
func decodeStrict(r *http.Request, value any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(value)
}
