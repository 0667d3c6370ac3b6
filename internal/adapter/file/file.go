// Package file reads the input command document and writes the two
// result documents as JSON files.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/mkuzmina/exchange-batch/internal/domain"
	"github.com/mkuzmina/exchange-batch/internal/dto"
	"github.com/mkuzmina/exchange-batch/internal/port"
)

var (
	_ port.Source = (*Store)(nil)
	_ port.Sink   = (*Store)(nil)
)

type Store struct {
	inputPath  string
	bookPath   string
	tradesPath string
}

func NewStore(inputPath, bookPath, tradesPath string) *Store {
	return &Store{
		inputPath:  inputPath,
		bookPath:   bookPath,
		tradesPath: tradesPath,
	}
}

// LoadCommands parses the input document. Array order is ingestion
// order, so no reordering happens here.
func (s *Store) LoadCommands(ctx context.Context) ([]domain.Command, error) {
	data, err := os.ReadFile(s.inputPath)
	if err != nil {
		return nil, fmt.Errorf("read input %s: %w", s.inputPath, err)
	}
	var cmds []domain.Command
	if err := json.Unmarshal(data, &cmds); err != nil {
		return nil, fmt.Errorf("parse input %s: %w", s.inputPath, err)
	}
	return cmds, nil
}

func (s *Store) WriteOrderBooks(ctx context.Context, doc dto.BookDocument) error {
	return writeJSON(s.bookPath, doc)
}

func (s *Store) WriteTrades(ctx context.Context, doc dto.TradesDocument) error {
	if doc == nil {
		doc = dto.TradesDocument{}
	}
	return writeJSON(s.tradesPath, doc)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
