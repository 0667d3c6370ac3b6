package core

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/mkuzmina/exchange-batch/internal/domain"
	"github.com/mkuzmina/exchange-batch/internal/dto"
	"github.com/mkuzmina/exchange-batch/internal/port"
	"github.com/mkuzmina/exchange-batch/internal/validate"
)

// Service owns the per-pair books and the global trade log and pushes
// every command through the matching engine. Archive and cache are
// optional collaborators; a nil for either is tolerated. The engine is
// deterministic: a fresh Service fed the same command sequence produces
// bit-identical documents.
type Service struct {
	log     logrus.FieldLogger
	archive port.Archive
	cache   port.Cache

	runID  string
	engine *MatchingEngine

	mu     sync.Mutex
	clock  int64
	books  map[string]*OrderBook
	trades []*domain.Trade
}

func NewService(log logrus.FieldLogger, archive port.Archive, cache port.Cache) *Service {
	runID := uuid.NewString()
	return &Service{
		log:     log.WithField("run_id", runID),
		archive: archive,
		cache:   cache,
		runID:   runID,
		engine:  NewMatchingEngine(),
		books:   make(map[string]*OrderBook),
	}
}

// RunID identifies this batch run in logs and archive rows.
func (s *Service) RunID() string { return s.runID }

// Process validates one command, promotes it with the next ingestion
// timestamp and dispatches it. Validation failures wrap
// domain.ErrValidation and leave no state change behind.
func (s *Service) Process(ctx context.Context, cmd domain.Command) error {
	if err := validate.Command(cmd); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.clock++
	order, err := domain.PromoteCommand(cmd, s.clock)
	if err != nil {
		return err
	}
	book := s.getOrCreateBook(order.Pair)

	switch cmd.TypeOp {
	case domain.Create:
		trades, matchErr := s.engine.Match(order, book)
		s.trades = append(s.trades, trades...)
		for _, t := range trades {
			if s.archive != nil {
				if err := s.archive.SaveTrade(ctx, s.runID, t); err != nil {
					s.log.WithError(err).WithField("trade_id", t.ID).Warn("archive trade failed")
				}
			}
		}
		if matchErr != nil {
			return matchErr
		}
		if order.Amount.GreaterThan(domain.Zero) {
			s.engine.Rest(order, book)
		}
		s.log.WithFields(logrus.Fields{
			"order_id": order.OrderID,
			"pair":     order.Pair,
			"side":     order.Side,
			"trades":   len(trades),
			"resting":  order.Amount.Canonical(),
		}).Debug("create processed")
	case domain.Delete:
		if !s.engine.Cancel(order, book) {
			s.log.WithFields(logrus.Fields{
				"order_id": order.OrderID,
				"pair":     order.Pair,
				"side":     order.Side,
			}).Warn("cancel did not locate a resting order")
		}
	default:
		return fmt.Errorf("%w: unhandled type_op %q", domain.ErrValidation, cmd.TypeOp)
	}
	return nil
}

// ProcessAll runs the batch in input order. Validation-rejected
// commands are logged and skipped; any other failure aborts the run.
func (s *Service) ProcessAll(ctx context.Context, cmds []domain.Command) error {
	for i, cmd := range cmds {
		if err := s.Process(ctx, cmd); err != nil {
			if errors.Is(err, domain.ErrValidation) {
				s.log.WithError(err).WithFields(logrus.Fields{
					"index":    i,
					"order_id": cmd.OrderID,
				}).Warn("command rejected")
				continue
			}
			return fmt.Errorf("command %d (%s): %w", i, cmd.OrderID, err)
		}
	}
	return nil
}

// Trades returns the global trade log in emission order.
func (s *Service) Trades() []*domain.Trade {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.Trade, len(s.trades))
	copy(out, s.trades)
	return out
}

// Pairs returns every pair that has seen a command, sorted.
func (s *Service) Pairs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	pairs := make([]string, 0, len(s.books))
	for p := range s.books {
		pairs = append(pairs, p)
	}
	sort.Strings(pairs)
	return pairs
}

// Snapshot returns a detached copy of one pair's book.
func (s *Service) Snapshot(pair string) (*domain.BookSnapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	book, ok := s.books[pair]
	if !ok {
		return nil, false
	}
	return snapshotBook(book), true
}

// BestBid returns the pair's best bid, if any.
func (s *Service) BestBid(pair string) (domain.Decimal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	book, ok := s.books[pair]
	if !ok {
		return domain.Zero, false
	}
	return s.engine.BestBid(book)
}

// BestAsk returns the pair's best ask, if any.
func (s *Service) BestAsk(pair string) (domain.Decimal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	book, ok := s.books[pair]
	if !ok {
		return domain.Zero, false
	}
	return s.engine.BestAsk(book)
}

// Spread returns best ask minus best bid, or false when either side of
// the pair's book is empty.
func (s *Service) Spread(pair string) (domain.Decimal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	book, ok := s.books[pair]
	if !ok {
		return domain.Zero, false
	}
	return s.engine.Spread(book)
}

// BookDocument assembles the order-book output document.
func (s *Service) BookDocument() dto.BookDocument {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := make(dto.BookDocument, len(s.books))
	for pair, book := range s.books {
		doc[pair] = dto.FromSnapshot(snapshotBook(book))
	}
	return doc
}

// TradesDocument assembles the trades output document.
func (s *Service) TradesDocument() dto.TradesDocument {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := make(dto.TradesDocument, 0, len(s.trades))
	for _, t := range s.trades {
		doc = append(doc, dto.FromTrade(t))
	}
	return doc
}

// Flush pushes the final books to the archive and cache. Failures are
// logged, not fatal: the result documents are the source of truth.
func (s *Service) Flush(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for pair, book := range s.books {
		snap := snapshotBook(book)
		if s.archive != nil {
			if err := s.archive.SaveBook(ctx, s.runID, snap); err != nil {
				s.log.WithError(err).WithField("pair", pair).Warn("archive book failed")
			}
		}
		if s.cache != nil {
			if err := s.cache.SetBook(ctx, pair, snap); err != nil {
				s.log.WithError(err).WithField("pair", pair).Warn("cache book failed")
			}
		}
	}
}

// Check verifies every book's invariants. Intended for tests and
// debugging; a failure wraps domain.ErrMatching.
func (s *Service) Check() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, book := range s.books {
		if err := book.Check(); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) getOrCreateBook(pair string) *OrderBook {
	book, ok := s.books[pair]
	if !ok {
		book = NewOrderBook(pair)
		s.books[pair] = book
	}
	return book
}

func snapshotBook(book *OrderBook) *domain.BookSnapshot {
	return &domain.BookSnapshot{
		Pair: book.Pair,
		Bids: book.Bids.Entries(),
		Asks: book.Asks.Entries(),
	}
}
