package core

import (
	"sort"

	"github.com/mkuzmina/exchange-batch/internal/domain"
)

// PriceLevel is the FIFO queue of resting orders at a single price on
// one side of a book. TotalVolume always equals the sum of the queued
// amounts, and an empty level never stays inside its side.
type PriceLevel struct {
	Price       domain.Decimal
	Orders      []*domain.Order
	TotalVolume domain.Decimal
}

// BookSide holds the price levels of one side. Levels is keyed by the
// canonical price string; Prices is the same set of prices kept sorted
// best-first (descending for bids, ascending for asks). The two must
// stay in one-to-one correspondence.
type BookSide struct {
	Levels map[string]*PriceLevel
	Prices []domain.Decimal

	descending bool
}

// NewBookSide returns an empty side. Bids sort descending so that
// Prices[0] is always the side's best price.
func NewBookSide(descending bool) *BookSide {
	return &BookSide{
		Levels:     make(map[string]*PriceLevel),
		descending: descending,
	}
}

// Best returns the side's best price, or false when the side is empty.
func (s *BookSide) Best() (domain.Decimal, bool) {
	if len(s.Prices) == 0 {
		return domain.Zero, false
	}
	return s.Prices[0], true
}

// Empty reports whether the side holds no resting orders.
func (s *BookSide) Empty() bool { return len(s.Prices) == 0 }

// insertPrice adds p to the sorted price sequence, preserving the
// side's ordering. Caller guarantees p is not already present.
func (s *BookSide) insertPrice(p domain.Decimal) {
	i := sort.Search(len(s.Prices), func(i int) bool {
		if s.descending {
			return s.Prices[i].LessThan(p)
		}
		return s.Prices[i].GreaterThan(p)
	})
	s.Prices = append(s.Prices, domain.Zero)
	copy(s.Prices[i+1:], s.Prices[i:])
	s.Prices[i] = p
}

// removePrice drops p from the sorted price sequence.
func (s *BookSide) removePrice(p domain.Decimal) {
	for i, q := range s.Prices {
		if q.Equal(p) {
			s.Prices = append(s.Prices[:i], s.Prices[i+1:]...)
			return
		}
	}
}

// removePriceAt drops the price at index i.
func (s *BookSide) removePriceAt(i int) {
	s.Prices = append(s.Prices[:i], s.Prices[i+1:]...)
}

// Entries walks the side in priority order and returns copies of every
// resting order, FIFO within each level. The copies keep later
// serialization from aliasing live book state.
func (s *BookSide) Entries() []domain.Order {
	var out []domain.Order
	for _, p := range s.Prices {
		level, ok := s.Levels[p.Canonical()]
		if !ok {
			continue
		}
		for _, o := range level.Orders {
			out = append(out, *o)
		}
	}
	return out
}

// OrderBook is the per-pair container of two sides.
type OrderBook struct {
	Pair string
	Bids *BookSide
	Asks *BookSide
}

// NewOrderBook returns a book with two empty sides.
func NewOrderBook(pair string) *OrderBook {
	return &OrderBook{
		Pair: pair,
		Bids: NewBookSide(true),
		Asks: NewBookSide(false),
	}
}

// SideFor returns the side an order of the given direction rests on:
// BUY orders rest on bids, SELL orders on asks.
func (b *OrderBook) SideFor(side domain.Side) *BookSide {
	if side == domain.Buy {
		return b.Bids
	}
	return b.Asks
}

// OppositeFor returns the side an order of the given direction matches
// against.
func (b *OrderBook) OppositeFor(side domain.Side) *BookSide {
	if side == domain.Buy {
		return b.Asks
	}
	return b.Bids
}
