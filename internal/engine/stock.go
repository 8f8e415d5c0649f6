package engine

import (
	"context"
	"errors"
	"time"

	"shiftdesk/internal/domain"
	"shiftdesk/internal/engine/auth"
	"shiftdesk/internal/ledger"
	"shiftdesk/internal/store"
)

// AddStockItem registers an inventory item. Supervisors and managers hold the
// manage-stock capability.
func (e Engine) AddStockItem(ctx context.Context, actor domain.User, name string, quantity int, unit string) (domain.StockItem, error) {
	if err := auth.Require(actor, auth.CapManageStock); err != nil {
		return domain.StockItem{}, err
	}
	if name == "" {
		return domain.StockItem{}, errors.New("name is required")
	}
	if unit == "" {
		return domain.StockItem{}, errors.New("unit is required")
	}
	if quantity < 0 {
		return domain.StockItem{}, errors.New("quantity must not be negative")
	}
	now := e.now()

	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.StockItem{}, err
	}
	defer tx.Rollback()

	items, err := e.Store.LoadStockTx(ctx, tx)
	if err != nil {
		return domain.StockItem{}, err
	}
	it := domain.StockItem{
		ID:          newID(),
		Name:        name,
		Quantity:    quantity,
		Unit:        unit,
		LastUpdated: now.UTC().Format(time.RFC3339),
		EditHistory: []domain.EditEvent{},
	}
	items = append(items, it)
	if err := e.Store.SaveStock(ctx, tx, items); err != nil {
		return domain.StockItem{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.StockItem{}, err
	}
	return it, nil
}

// AdjustStock sets an item's quantity with a mandatory reason, appending the
// adjust event and refreshing LastUpdated in the same transaction.
func (e Engine) AdjustStock(ctx context.Context, actor domain.User, itemID string, quantity int, reason string) (domain.StockItem, error) {
	if err := auth.Require(actor, auth.CapManageStock); err != nil {
		return domain.StockItem{}, err
	}
	if reason == "" {
		return domain.StockItem{}, errors.New("reason is required")
	}
	if quantity < 0 {
		return domain.StockItem{}, errors.New("quantity must not be negative")
	}
	now := e.now()

	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.StockItem{}, err
	}
	defer tx.Rollback()

	items, err := e.Store.LoadStockTx(ctx, tx)
	if err != nil {
		return domain.StockItem{}, err
	}
	i, found := store.StockIndex(items, itemID)
	if !found {
		return domain.StockItem{}, ErrNotFound
	}
	items[i].Quantity = quantity
	items[i].LastUpdated = now.UTC().Format(time.RFC3339)
	items[i].EditHistory = append(items[i].EditHistory, ledger.NewEvent(actor, ledger.ActionAdjust, reason, now))
	if err := e.Store.SaveStock(ctx, tx, items); err != nil {
		return domain.StockItem{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.StockItem{}, err
	}
	return items[i], nil
}

// Stock lists inventory; gated by the view-stock capability.
func (e Engine) Stock(ctx context.Context, actor domain.User) ([]domain.StockItem, error) {
	if err := auth.Require(actor, auth.CapViewStock); err != nil {
		return nil, err
	}
	return e.Store.LoadStock(ctx)
}
