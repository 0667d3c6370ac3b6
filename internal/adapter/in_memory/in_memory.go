// Package in_memory provides map-backed Archive and Cache
// implementations, used in tests.
package in_memory

import (
	"context"
	"sync"

	"github.com/mkuzmina/exchange-batch/internal/domain"
	"github.com/mkuzmina/exchange-batch/internal/port"
)

var (
	_ port.Archive = (*Archive)(nil)
	_ port.Cache   = (*Cache)(nil)
)

type Archive struct {
	mu     sync.Mutex
	trades map[string][]*domain.Trade
	books  map[string]map[string]*domain.BookSnapshot
}

func NewArchive() *Archive {
	return &Archive{
		trades: make(map[string][]*domain.Trade),
		books:  make(map[string]map[string]*domain.BookSnapshot),
	}
}

func (a *Archive) SaveTrade(ctx context.Context, runID string, t *domain.Trade) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.trades[runID] = append(a.trades[runID], t)
	return nil
}

func (a *Archive) SaveBook(ctx context.Context, runID string, snap *domain.BookSnapshot) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	books, ok := a.books[runID]
	if !ok {
		books = make(map[string]*domain.BookSnapshot)
		a.books[runID] = books
	}
	copySnap := *snap
	books[snap.Pair] = &copySnap
	return nil
}

// Trades returns the trades archived for a run, in save order.
func (a *Archive) Trades(runID string) []*domain.Trade {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.trades[runID]
}

// Book returns the archived final book of a pair, or nil.
func (a *Archive) Book(runID, pair string) *domain.BookSnapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.books[runID][pair]
}

type Cache struct {
	mu    sync.Mutex
	store map[string]*domain.BookSnapshot
}

func NewCache() *Cache {
	return &Cache{store: make(map[string]*domain.BookSnapshot)}
}

func (c *Cache) SetBook(ctx context.Context, pair string, snap *domain.BookSnapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	copySnap := *snap
	c.store[pair] = &copySnap
	return nil
}

func (c *Cache) GetBook(ctx context.Context, pair string) (*domain.BookSnapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap, ok := c.store[pair]
	if !ok {
		return nil, nil
	}
	copySnap := *snap
	return &copySnap, nil
}
