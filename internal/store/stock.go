package store

import (
	"context"
	"database/sql"

	"shiftdesk/internal/domain"
)

func (s Store) LoadStock(ctx context.Context) ([]domain.StockItem, error) {
	var items []domain.StockItem
	if err := s.Load(ctx, CollectionStock, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (s Store) LoadStockTx(ctx context.Context, tx *sql.Tx) ([]domain.StockItem, error) {
	var items []domain.StockItem
	if err := s.LoadTx(ctx, tx, CollectionStock, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (s Store) SaveStock(ctx context.Context, tx *sql.Tx, items []domain.StockItem) error {
	return s.Save(ctx, tx, CollectionStock, items)
}

// StockIndex scans the collection for an id match.
func StockIndex(items []domain.StockItem, id string) (int, bool) {
	for i, it := range items {
		if it.ID == id {
			return i, true
		}
	}
	return -1, false
}
