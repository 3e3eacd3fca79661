package reward

import (
	"context"
	"errors"

	"github.com/kasuganosora/questservice/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Ledger is the in-process inventory: one stacked row per
// (player, item definition).
type Ledger struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewLedger(db *gorm.DB, logger *zap.Logger) *Ledger {
	return &Ledger{db: db, logger: logger}
}

// GrantItems stacks the grant inside tx, or in its own transaction when tx
// is nil. A non-positive count is a no-op.
func (l *Ledger) GrantItems(ctx context.Context, tx *gorm.DB, g Grant) error {
	if g.Count <= 0 {
		return nil
	}
	if tx != nil {
		return l.add(tx.WithContext(ctx), g)
	}
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return l.add(tx, g)
	})
}

func (l *Ledger) add(tx *gorm.DB, g Grant) error {
	var existing model.PlayerItem
	err := tx.Where("player_id = ? AND item_definition_id = ?", g.PlayerID, g.ItemDefinitionID).
		First(&existing).Error
	if err == nil {
		return tx.Model(&existing).Update("qty", gorm.Expr("qty + ?", g.Count)).Error
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return tx.Create(&model.PlayerItem{
		PlayerID:         g.PlayerID,
		ItemDefinitionID: g.ItemDefinitionID,
		Qty:              g.Count,
	}).Error
}

// List returns the ledger rows of playerID.
func (l *Ledger) List(ctx context.Context, playerID string) ([]model.PlayerItem, error) {
	var items []model.PlayerItem
	err := l.db.WithContext(ctx).Where("player_id = ?", playerID).Order("item_definition_id").Find(&items).Error
	return items, err
}
