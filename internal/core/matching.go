package core

import (
	"fmt"

	"github.com/mkuzmina/exchange-batch/internal/domain"
)

// MatchingEngine applies price-time priority to an OrderBook. Its only
// state is the monotonic trade id counter; everything else lives in the
// book it operates on.
type MatchingEngine struct {
	nextTradeID int64
}

func NewMatchingEngine() *MatchingEngine {
	return &MatchingEngine{nextTradeID: 1}
}

// Match consumes marketable volume of order against the opposite side
// of book, best price first, FIFO within a level. It decrements
// order.Amount by the matched volume, removes consumed makers and
// emptied levels, and returns the trades in the order they were
// generated. A returned error wraps domain.ErrMatching and means the
// book violated an invariant, not that nothing matched.
func (e *MatchingEngine) Match(order *domain.Order, book *OrderBook) ([]*domain.Trade, error) {
	oppo := book.OppositeFor(order.Side)

	var trades []*domain.Trade
	i := 0
	for i < len(oppo.Prices) && order.Amount.GreaterThan(domain.Zero) {
		p := oppo.Prices[i]

		// Prices are sorted best-first, so the first incompatible
		// price ends the walk.
		if order.Side == domain.Buy {
			if order.LimitPrice.LessThan(p) {
				break
			}
		} else {
			if order.LimitPrice.GreaterThan(p) {
				break
			}
		}

		key := p.Canonical()
		level, ok := oppo.Levels[key]
		if !ok || len(level.Orders) == 0 {
			// Stale price entry; drop it and look at the next price,
			// which now sits at the same index.
			delete(oppo.Levels, key)
			oppo.removePriceAt(i)
			continue
		}

		for len(level.Orders) > 0 {
			maker := level.Orders[0]
			fill := domain.MinDecimal(order.Amount, maker.Amount)
			if !fill.GreaterThan(domain.Zero) {
				return trades, fmt.Errorf("%w: non-positive fill %s at level %s of %s",
					domain.ErrMatching, fill, key, book.Pair)
			}

			order.Amount = order.Amount.Sub(fill)
			maker.Amount = maker.Amount.Sub(fill)
			level.TotalVolume = level.TotalVolume.Sub(fill)
			if level.TotalVolume.Sign() < 0 {
				return trades, fmt.Errorf("%w: level %s of %s volume went negative",
					domain.ErrMatching, key, book.Pair)
			}

			trades = append(trades, &domain.Trade{
				ID:             e.nextTradeID,
				Pair:           book.Pair,
				MakerOrderID:   maker.OrderID,
				TakerOrderID:   order.OrderID,
				MakerAccountID: maker.AccountID,
				TakerAccountID: order.AccountID,
				Amount:         fill,
				Price:          level.Price,
				Timestamp:      order.Timestamp,
			})
			e.nextTradeID++

			if maker.Amount.IsZero() {
				level.Orders = level.Orders[1:]
			}
			if order.Amount.IsZero() {
				break
			}
		}

		if len(level.Orders) == 0 {
			delete(oppo.Levels, key)
			oppo.removePriceAt(i)
		}
	}
	return trades, nil
}

// Rest places the order's residual on its own side, creating the price
// level lazily.
func (e *MatchingEngine) Rest(order *domain.Order, book *OrderBook) {
	s := book.SideFor(order.Side)
	key := order.LimitPrice.Canonical()
	level, ok := s.Levels[key]
	if !ok {
		level = &PriceLevel{Price: order.LimitPrice, TotalVolume: domain.Zero}
		s.Levels[key] = level
		s.insertPrice(order.LimitPrice)
	}
	level.Orders = append(level.Orders, order)
	level.TotalVolume = level.TotalVolume.Add(order.Amount)
}

// Cancel removes a resting order located by (side, limit price, order
// id). All three must agree with the resting entry; there is no lookup
// by order id alone. Returns false when any lookup fails, which is a
// domain outcome rather than an error.
func (e *MatchingEngine) Cancel(order *domain.Order, book *OrderBook) bool {
	s := book.SideFor(order.Side)
	key := order.LimitPrice.Canonical()
	level, ok := s.Levels[key]
	if !ok {
		return false
	}
	for i, resting := range level.Orders {
		if resting.OrderID != order.OrderID {
			continue
		}
		level.Orders = append(level.Orders[:i], level.Orders[i+1:]...)
		level.TotalVolume = level.TotalVolume.Sub(resting.Amount)
		if len(level.Orders) == 0 {
			delete(s.Levels, key)
			s.removePrice(level.Price)
		}
		return true
	}
	return false
}

// BestBid returns the highest resting buy price.
func (e *MatchingEngine) BestBid(book *OrderBook) (domain.Decimal, bool) {
	return book.Bids.Best()
}

// BestAsk returns the lowest resting sell price.
func (e *MatchingEngine) BestAsk(book *OrderBook) (domain.Decimal, bool) {
	return book.Asks.Best()
}

// Spread returns best ask minus best bid, or false when either side is
// empty.
func (e *MatchingEngine) Spread(book *OrderBook) (domain.Decimal, bool) {
	bid, okBid := book.Bids.Best()
	ask, okAsk := book.Asks.Best()
	if !okBid || !okAsk {
		return domain.Zero, false
	}
	return ask.Sub(bid), true
}
