// Package dto holds the external document shapes. Decimal fields are
// canonical strings so readers never see float artifacts.
package dto

import (
	"strconv"

	"github.com/mkuzmina/exchange-batch/internal/domain"
)

type BookEntry struct {
	OrderID    string `json:"order_id"`
	AccountID  string `json:"account_id"`
	Amount     string `json:"amount"`
	LimitPrice string `json:"limit_price"`
	Timestamp  int64  `json:"timestamp"`
}

type PairBook struct {
	Bids []BookEntry `json:"bids"`
	Asks []BookEntry `json:"asks"`
}

// BookDocument is the order-book output document, keyed by pair.
type BookDocument map[string]PairBook

type Trade struct {
	TradeID        string `json:"trade_id"`
	Pair           string `json:"pair"`
	MakerOrderID   string `json:"maker_order_id"`
	TakerOrderID   string `json:"taker_order_id"`
	MakerAccountID string `json:"maker_account_id"`
	TakerAccountID string `json:"taker_account_id"`
	Amount         string `json:"amount"`
	Price          string `json:"price"`
	Timestamp      int64  `json:"timestamp"`
}

// TradesDocument is the trades output document, in emission order.
type TradesDocument []Trade

// FromSnapshot converts a detached book snapshot to its document form.
func FromSnapshot(snap *domain.BookSnapshot) PairBook {
	return PairBook{
		Bids: toEntries(snap.Bids),
		Asks: toEntries(snap.Asks),
	}
}

// FromTrade converts a trade to its document form.
func FromTrade(t *domain.Trade) Trade {
	return Trade{
		TradeID:        strconv.FormatInt(t.ID, 10),
		Pair:           t.Pair,
		MakerOrderID:   t.MakerOrderID,
		TakerOrderID:   t.TakerOrderID,
		MakerAccountID: t.MakerAccountID,
		TakerAccountID: t.TakerAccountID,
		Amount:         t.Amount.Canonical(),
		Price:          t.Price.Canonical(),
		Timestamp:      t.Timestamp,
	}
}

func toEntries(orders []domain.Order) []BookEntry {
	entries := make([]BookEntry, 0, len(orders))
	for _, o := range orders {
		entries = append(entries, BookEntry{
			OrderID:    o.OrderID,
			AccountID:  o.AccountID,
			Amount:     o.Amount.Canonical(),
			LimitPrice: o.LimitPrice.Canonical(),
			Timestamp:  o.Timestamp,
		})
	}
	return entries
}
