package core

import (
	"fmt"

	"github.com/mkuzmina/exchange-batch/internal/domain"
)

// Check verifies the book's structural invariants: level volumes equal
// the sum of their queued amounts, no empty level remains, the price
// map and sorted sequence agree, each sequence is strictly ordered, and
// the book is not crossed. A returned error wraps domain.ErrMatching.
func (b *OrderBook) Check() error {
	if err := b.Bids.check("bids"); err != nil {
		return err
	}
	if err := b.Asks.check("asks"); err != nil {
		return err
	}
	bid, okBid := b.Bids.Best()
	ask, okAsk := b.Asks.Best()
	if okBid && okAsk && bid.GreaterThanOrEqual(ask) {
		return fmt.Errorf("%w: crossed book %s: best bid %s >= best ask %s",
			domain.ErrMatching, b.Pair, bid, ask)
	}
	return nil
}

func (s *BookSide) check(name string) error {
	if len(s.Prices) != len(s.Levels) {
		return fmt.Errorf("%w: %s: %d prices vs %d levels",
			domain.ErrMatching, name, len(s.Prices), len(s.Levels))
	}
	for i, p := range s.Prices {
		level, ok := s.Levels[p.Canonical()]
		if !ok {
			return fmt.Errorf("%w: %s: price %s has no level", domain.ErrMatching, name, p)
		}
		if len(level.Orders) == 0 {
			return fmt.Errorf("%w: %s: level %s is empty", domain.ErrMatching, name, p)
		}
		sum := domain.Zero
		for _, o := range level.Orders {
			sum = sum.Add(o.Amount)
		}
		if !sum.Equal(level.TotalVolume) {
			return fmt.Errorf("%w: %s: level %s volume %s != sum %s",
				domain.ErrMatching, name, p, level.TotalVolume, sum)
		}
		if i == 0 {
			continue
		}
		prev := s.Prices[i-1]
		if s.descending && !prev.GreaterThan(p) {
			return fmt.Errorf("%w: %s: prices not strictly decreasing at %d", domain.ErrMatching, name, i)
		}
		if !s.descending && !prev.LessThan(p) {
			return fmt.Errorf("%w: %s: prices not strictly increasing at %d", domain.ErrMatching, name, i)
		}
	}
	return nil
}
