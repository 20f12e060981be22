package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Side — сторона заявки/сделки в стакане.
type Side string

const (
	// SideBid — заявка на покупку.
	SideBid Side = "BID"
	// SideAsk — заявка на продажу.
	SideAsk Side = "ASK"
)

// ParseSide приводит строку к каноническому виду ("bid" -> SideBid)
// и проверяет допустимость значения.
func ParseSide(raw string) (Side, error) {
	switch Side(strings.ToUpper(strings.TrimSpace(raw))) {
	case SideBid:
		return SideBid, nil
	case SideAsk:
		return SideAsk, nil
	default:
		return "", fmt.Errorf("unknown order side %q", raw)
	}
}

// Order — заявка в стакане.
//
// Цена хранится как decimal: бэкенд отдает денежные поля строками,
// и потеря точности на float недопустима.
type Order struct {
	ID        int64
	Owner     string
	Price     decimal.Decimal
	Quantity  int64
	Timestamp time.Time
}

// OrderBook — полный снимок стакана: два непересекающихся набора заявок.
// Порядок внутри Bids/Asks клиент не гарантирует — сортировка
// является заботой слоя отображения.
type OrderBook struct {
	Bids []Order
	Asks []Order
}

// OrderReceipt — результат размещения заявки.
type OrderReceipt struct {
	OrderID string
	Message string
}
