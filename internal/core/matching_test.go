package core

import (
	"testing"

	"github.com/mkuzmina/exchange-batch/internal/domain"
)

// submit runs an order through match-then-rest the way the service
// does, failing the test on an invariant breach.
func submit(t *testing.T, e *MatchingEngine, book *OrderBook, o *domain.Order) []*domain.Trade {
	t.Helper()
	trades, err := e.Match(o, book)
	if err != nil {
		t.Fatalf("match %s: %v", o.OrderID, err)
	}
	if o.Amount.GreaterThan(domain.Zero) {
		e.Rest(o, book)
	}
	if err := book.Check(); err != nil {
		t.Fatalf("after %s: %v", o.OrderID, err)
	}
	return trades
}

func TestSingleCrossPartialTaker(t *testing.T) {
	e := NewMatchingEngine()
	book := NewOrderBook("BTC/USDC")

	submit(t, e, book, restingOrder("S1", "2", domain.Sell, "10", "50000", 1))
	trades := submit(t, e, book, restingOrder("B1", "1", domain.Buy, "15", "50500", 2))

	if len(trades) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(trades))
	}
	tr := trades[0]
	if tr.ID != 1 || tr.MakerOrderID != "S1" || tr.TakerOrderID != "B1" {
		t.Fatalf("trade parties wrong: %+v", tr)
	}
	if !tr.Amount.Equal(domain.MustDecimal("10")) || !tr.Price.Equal(domain.MustDecimal("50000")) {
		t.Fatalf("trade terms wrong: amount %s price %s", tr.Amount, tr.Price)
	}
	if tr.MakerAccountID != "2" || tr.TakerAccountID != "1" {
		t.Fatalf("trade accounts wrong: %+v", tr)
	}

	if !book.Asks.Empty() {
		t.Fatal("asks should be empty")
	}
	bids := book.Bids.Entries()
	if len(bids) != 1 || bids[0].OrderID != "B1" ||
		!bids[0].Amount.Equal(domain.MustDecimal("5")) ||
		!bids[0].LimitPrice.Equal(domain.MustDecimal("50500")) {
		t.Fatalf("residual bid wrong: %+v", bids)
	}
}

func TestSweepLevels(t *testing.T) {
	e := NewMatchingEngine()
	book := NewOrderBook("BTC/USDC")

	submit(t, e, book, restingOrder("1", "a", domain.Buy, "10", "49000", 1))
	submit(t, e, book, restingOrder("2", "a", domain.Buy, "10", "50000", 2))
	submit(t, e, book, restingOrder("3", "a", domain.Buy, "10", "51000", 3))
	trades := submit(t, e, book, restingOrder("4", "b", domain.Sell, "25", "49000", 4))

	if len(trades) != 3 {
		t.Fatalf("expected 3 trades, got %d", len(trades))
	}
	wantMakers := []string{"3", "2", "1"}
	wantAmounts := []string{"10", "10", "5"}
	wantPrices := []string{"51000", "50000", "49000"}
	for i, tr := range trades {
		if tr.MakerOrderID != wantMakers[i] ||
			!tr.Amount.Equal(domain.MustDecimal(wantAmounts[i])) ||
			!tr.Price.Equal(domain.MustDecimal(wantPrices[i])) {
			t.Fatalf("trade %d wrong: maker=%s amount=%s price=%s",
				i, tr.MakerOrderID, tr.Amount, tr.Price)
		}
	}

	bids := book.Bids.Entries()
	if len(bids) != 1 || bids[0].OrderID != "1" || !bids[0].Amount.Equal(domain.MustDecimal("5")) {
		t.Fatalf("final bids wrong: %+v", bids)
	}
	if !book.Asks.Empty() {
		t.Fatal("taker should have been fully consumed")
	}
}

func TestFIFOWithinLevel(t *testing.T) {
	e := NewMatchingEngine()
	book := NewOrderBook("BTC/USDC")

	submit(t, e, book, restingOrder("1", "a", domain.Buy, "10", "50000", 1))
	submit(t, e, book, restingOrder("2", "a", domain.Buy, "10", "50000", 2))
	trades := submit(t, e, book, restingOrder("3", "b", domain.Sell, "15", "50000", 3))

	if len(trades) != 2 {
		t.Fatalf("expected 2 trades, got %d", len(trades))
	}
	if trades[0].MakerOrderID != "1" || !trades[0].Amount.Equal(domain.MustDecimal("10")) {
		t.Fatalf("first trade should consume the older maker: %+v", trades[0])
	}
	if trades[1].MakerOrderID != "2" || !trades[1].Amount.Equal(domain.MustDecimal("5")) {
		t.Fatalf("second trade wrong: %+v", trades[1])
	}

	bids := book.Bids.Entries()
	if len(bids) != 1 || bids[0].OrderID != "2" || !bids[0].Amount.Equal(domain.MustDecimal("5")) {
		t.Fatalf("final bids wrong: %+v", bids)
	}
}

func TestCancelThenNoMatch(t *testing.T) {
	e := NewMatchingEngine()
	book := NewOrderBook("BTC/USDC")

	submit(t, e, book, restingOrder("1", "a", domain.Buy, "10", "49000", 1))
	if !e.Cancel(restingOrder("1", "a", domain.Buy, "10", "49000", 2), book) {
		t.Fatal("cancel should locate the resting bid")
	}
	trades := submit(t, e, book, restingOrder("2", "b", domain.Sell, "10", "49000", 3))

	if len(trades) != 0 {
		t.Fatalf("expected no trades, got %d", len(trades))
	}
	if !book.Bids.Empty() {
		t.Fatal("bids should be empty after cancel")
	}
	asks := book.Asks.Entries()
	if len(asks) != 1 || asks[0].OrderID != "2" || !asks[0].Amount.Equal(domain.MustDecimal("10")) {
		t.Fatalf("ask should rest untouched: %+v", asks)
	}
}

func TestNonMarketableRest(t *testing.T) {
	e := NewMatchingEngine()
	book := NewOrderBook("BTC/USDC")

	submit(t, e, book, restingOrder("1", "a", domain.Sell, "5", "52000", 1))
	trades := submit(t, e, book, restingOrder("2", "b", domain.Buy, "5", "51000", 2))
	if len(trades) != 0 {
		t.Fatalf("expected no trades, got %d", len(trades))
	}

	bid, ok := e.BestBid(book)
	if !ok || !bid.Equal(domain.MustDecimal("51000")) {
		t.Fatalf("best bid = %s", bid)
	}
	ask, ok := e.BestAsk(book)
	if !ok || !ask.Equal(domain.MustDecimal("52000")) {
		t.Fatalf("best ask = %s", ask)
	}
	spread, ok := e.Spread(book)
	if !ok || !spread.Equal(domain.MustDecimal("1000")) {
		t.Fatalf("spread = %s", spread)
	}
}

func TestSpreadNeedsBothSides(t *testing.T) {
	e := NewMatchingEngine()
	book := NewOrderBook("BTC/USDC")
	if _, ok := e.Spread(book); ok {
		t.Fatal("spread of empty book should not exist")
	}
	submit(t, e, book, restingOrder("1", "a", domain.Buy, "5", "51000", 1))
	if _, ok := e.Spread(book); ok {
		t.Fatal("spread with empty asks should not exist")
	}
}

func TestExactFillRemovesLevel(t *testing.T) {
	e := NewMatchingEngine()
	book := NewOrderBook("BTC/USDC")

	submit(t, e, book, restingOrder("S1", "a", domain.Sell, "10", "50000", 1))
	trades := submit(t, e, book, restingOrder("B1", "b", domain.Buy, "10", "50000", 2))

	if len(trades) != 1 {
		t.Fatalf("expected exactly 1 trade, got %d", len(trades))
	}
	if !book.Asks.Empty() || !book.Bids.Empty() {
		t.Fatal("both sides should be empty after exact fill")
	}
	if len(book.Asks.Levels) != 0 || len(book.Asks.Prices) != 0 {
		t.Fatal("emptied ask level must be removed with its price")
	}
}

func TestCancelMissingOrder(t *testing.T) {
	e := NewMatchingEngine()
	book := NewOrderBook("BTC/USDC")
	submit(t, e, book, restingOrder("1", "a", domain.Buy, "10", "50000", 1))

	if e.Cancel(restingOrder("ghost", "a", domain.Buy, "10", "50000", 2), book) {
		t.Fatal("cancel of unknown id should fail")
	}
	if len(book.Bids.Entries()) != 1 {
		t.Fatal("failed cancel must leave the book unchanged")
	}
}

func TestCancelRequiresMatchingLocator(t *testing.T) {
	e := NewMatchingEngine()
	book := NewOrderBook("BTC/USDC")
	submit(t, e, book, restingOrder("1", "a", domain.Buy, "10", "50000", 1))

	// Wrong price.
	if e.Cancel(restingOrder("1", "a", domain.Buy, "10", "50001", 2), book) {
		t.Fatal("cancel with wrong price should fail")
	}
	// Wrong side.
	if e.Cancel(restingOrder("1", "a", domain.Sell, "10", "50000", 3), book) {
		t.Fatal("cancel with wrong side should fail")
	}
	if len(book.Bids.Entries()) != 1 {
		t.Fatal("failed cancels must leave the book unchanged")
	}
	// Correct locator still works afterwards.
	if !e.Cancel(restingOrder("1", "a", domain.Buy, "10", "50000", 4), book) {
		t.Fatal("correct locator should cancel")
	}
}

func TestSelfTradeAllowed(t *testing.T) {
	e := NewMatchingEngine()
	book := NewOrderBook("BTC/USDC")

	submit(t, e, book, restingOrder("1", "a", domain.Sell, "10", "50000", 1))
	trades := submit(t, e, book, restingOrder("2", "a", domain.Buy, "10", "50000", 2))

	if len(trades) != 1 {
		t.Fatalf("self-trade should execute, got %d trades", len(trades))
	}
	if trades[0].MakerAccountID != "a" || trades[0].TakerAccountID != "a" {
		t.Fatalf("accounts wrong: %+v", trades[0])
	}
}

func TestTradeIDsMonotonic(t *testing.T) {
	e := NewMatchingEngine()
	book := NewOrderBook("BTC/USDC")

	submit(t, e, book, restingOrder("1", "a", domain.Sell, "1", "50000", 1))
	submit(t, e, book, restingOrder("2", "a", domain.Sell, "1", "50001", 2))
	first := submit(t, e, book, restingOrder("3", "b", domain.Buy, "1", "50000", 3))
	second := submit(t, e, book, restingOrder("4", "b", domain.Buy, "1", "50001", 4))

	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("expected one trade per cross, got %d and %d", len(first), len(second))
	}
	if first[0].ID != 1 || second[0].ID != 2 {
		t.Fatalf("trade ids = %d, %d; want 1, 2", first[0].ID, second[0].ID)
	}
}

func TestTakerWalksMultipleMakersAtOneLevel(t *testing.T) {
	e := NewMatchingEngine()
	book := NewOrderBook("ETH/USDC")

	submit(t, e, book, restingOrder("m1", "a", domain.Sell, "2", "3000", 1))
	submit(t, e, book, restingOrder("m2", "b", domain.Sell, "3", "3000", 2))
	submit(t, e, book, restingOrder("m3", "c", domain.Sell, "4", "3000", 3))
	trades := submit(t, e, book, restingOrder("t", "d", domain.Buy, "9", "3000", 4))

	if len(trades) != 3 {
		t.Fatalf("expected 3 trades, got %d", len(trades))
	}
	wantMakers := []string{"m1", "m2", "m3"}
	for i, tr := range trades {
		if tr.MakerOrderID != wantMakers[i] {
			t.Fatalf("maker order wrong at %d: %s", i, tr.MakerOrderID)
		}
	}
	if !book.Asks.Empty() || !book.Bids.Empty() {
		t.Fatal("level should be fully consumed")
	}
}

func TestFractionalAmountsMatchExactly(t *testing.T) {
	e := NewMatchingEngine()
	book := NewOrderBook("BTC/USDC")

	submit(t, e, book, restingOrder("s", "a", domain.Sell, "0.3", "50000.5", 1))
	trades := submit(t, e, book, restingOrder("b", "b", domain.Buy, "0.1", "50000.50", 2))

	if len(trades) != 1 || !trades[0].Amount.Equal(domain.MustDecimal("0.1")) {
		t.Fatalf("trade wrong: %+v", trades)
	}
	asks := book.Asks.Entries()
	if len(asks) != 1 || !asks[0].Amount.Equal(domain.MustDecimal("0.2")) {
		t.Fatalf("maker residual wrong: %+v", asks)
	}
	level := book.Asks.Levels["50000.5"]
	if level == nil || !level.TotalVolume.Equal(domain.MustDecimal("0.2")) {
		t.Fatal("level volume should be 0.2 under the canonical key")
	}
}
