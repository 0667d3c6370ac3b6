package core

import (
	"sort"

	"github.com/mkuzmina/exchange-batch/internal/domain"
)

// PairStats summarizes one pair after a run. Inspection-only: nothing
// here feeds back into matching.
type PairStats struct {
	Pair          string
	RestingOrders int
	PriceLevels   int
	BidVolume     domain.Decimal
	AskVolume     domain.Decimal
	TradeCount    int
	TradedVolume  domain.Decimal
	VWAP          domain.Decimal
	HasVWAP       bool
}

// Stats walks every level of every book and aggregates the run's
// trades per pair, sorted by pair name.
func (s *Service) Stats() []PairStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	byPair := make(map[string]*PairStats, len(s.books))
	for pair, book := range s.books {
		st := &PairStats{Pair: pair}
		for _, side := range []*BookSide{book.Bids, book.Asks} {
			for _, p := range side.Prices {
				level, ok := side.Levels[p.Canonical()]
				if !ok {
					continue
				}
				st.PriceLevels++
				st.RestingOrders += len(level.Orders)
				if side == book.Bids {
					st.BidVolume = st.BidVolume.Add(level.TotalVolume)
				} else {
					st.AskVolume = st.AskVolume.Add(level.TotalVolume)
				}
			}
		}
		byPair[pair] = st
	}

	notional := make(map[string]domain.Decimal, len(byPair))
	for _, t := range s.trades {
		st, ok := byPair[t.Pair]
		if !ok {
			st = &PairStats{Pair: t.Pair}
			byPair[t.Pair] = st
		}
		st.TradeCount++
		st.TradedVolume = st.TradedVolume.Add(t.Amount)
		notional[t.Pair] = notional[t.Pair].Add(t.Amount.Mul(t.Price))
	}
	for pair, st := range byPair {
		if st.TradedVolume.GreaterThan(domain.Zero) {
			vwap, err := notional[pair].Div(st.TradedVolume)
			if err == nil {
				st.VWAP = vwap
				st.HasVWAP = true
			}
		}
	}

	out := make([]PairStats, 0, len(byPair))
	for _, pair := range sortedPairs(byPair) {
		out = append(out, *byPair[pair])
	}
	return out
}

func sortedPairs(m map[string]*PairStats) []string {
	pairs := make([]string, 0, len(m))
	for p := range m {
		pairs = append(pairs, p)
	}
	sort.Strings(pairs)
	return pairs
}
