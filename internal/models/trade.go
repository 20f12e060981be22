package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade — совершённая сделка из ленты.
//
// TakerSide показывает, какая сторона инициировала сведение
// (BID — покупатель был тейкером, ASK — продавец).
type Trade struct {
	ID        int64
	BidUser   string
	AskUser   string
	Price     decimal.Decimal
	Quantity  int64
	Timestamp time.Time
	TakerSide Side
}
