package domain

// Trade records one fill. Price is always the maker's resting limit
// price. Trades are append-only; once emitted they are never mutated.
type Trade struct {
	ID             int64
	Pair           string
	MakerOrderID   string
	TakerOrderID   string
	MakerAccountID string
	TakerAccountID string
	Amount         Decimal
	Price          Decimal
	Timestamp      int64
}
