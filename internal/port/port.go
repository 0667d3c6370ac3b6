// Package port declares the interfaces the core depends on; adapters
// implement them.
package port

import (
	"context"

	"github.com/mkuzmina/exchange-batch/internal/domain"
	"github.com/mkuzmina/exchange-batch/internal/dto"
)

// Source supplies the raw command stream in ingestion order.
type Source interface {
	LoadCommands(ctx context.Context) ([]domain.Command, error)
}

// Sink receives the two result documents of a run.
type Sink interface {
	WriteOrderBooks(ctx context.Context, doc dto.BookDocument) error
	WriteTrades(ctx context.Context, doc dto.TradesDocument) error
}

// Archive persists a run's trades and final resting books. It is
// optional; the Service tolerates a nil Archive.
type Archive interface {
	SaveTrade(ctx context.Context, runID string, t *domain.Trade) error
	SaveBook(ctx context.Context, runID string, snap *domain.BookSnapshot) error
}

// Cache stores the latest book snapshot per pair. Optional as well.
type Cache interface {
	SetBook(ctx context.Context, pair string, snap *domain.BookSnapshot) error
	GetBook(ctx context.Context, pair string) (*domain.BookSnapshot, error)
}
