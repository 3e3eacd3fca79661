package repo

import (
	"context"
	"fmt"

	"github.com/kasuganosora/questservice/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DefinitionRepo stores quest definitions. Deletion is logical so that
// ResolveByIDs can still find the definition behind an old PlayerQuest.
type DefinitionRepo interface {
	List(ctx context.Context, tx *gorm.DB) ([]*model.QuestDefinition, error)
	Get(ctx context.Context, tx *gorm.DB, id string) (*model.QuestDefinition, error)
	ResolveByIDs(ctx context.Context, tx *gorm.DB, ids []string) (map[string]*model.QuestDefinition, error)
	ListByCategory(ctx context.Context, tx *gorm.DB, categoryID string) ([]*model.QuestDefinition, error)
	SaveAll(ctx context.Context, tx *gorm.DB, rows []*model.QuestDefinition) error
	DeleteAll(ctx context.Context, tx *gorm.DB, ids []string) error
}

type definitionRepo struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewDefinitionRepo(db *gorm.DB, logger *zap.Logger) DefinitionRepo {
	return &definitionRepo{db: db, logger: logger.With(zap.String("repo", "DefinitionRepo"))}
}

func (r *definitionRepo) List(ctx context.Context, tx *gorm.DB) ([]*model.QuestDefinition, error) {
	var rows []*model.QuestDefinition
	if err := pick(r.db, tx).WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list definitions: %w", err)
	}
	return rows, nil
}

// Get returns the live definition or nil when it does not exist.
func (r *definitionRepo) Get(ctx context.Context, tx *gorm.DB, id string) (*model.QuestDefinition, error) {
	var rows []*model.QuestDefinition
	if err := pick(r.db, tx).WithContext(ctx).Where("id = ?", id).Limit(1).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("get definition %s: %w", id, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// ResolveByIDs looks definitions up including soft-deleted ones.
func (r *definitionRepo) ResolveByIDs(ctx context.Context, tx *gorm.DB, ids []string) (map[string]*model.QuestDefinition, error) {
	out := make(map[string]*model.QuestDefinition, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []*model.QuestDefinition
	if err := pick(r.db, tx).WithContext(ctx).Unscoped().Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("resolve definitions: %w", err)
	}
	for _, row := range rows {
		out[row.ID] = row
	}
	return out, nil
}

func (r *definitionRepo) ListByCategory(ctx context.Context, tx *gorm.DB, categoryID string) ([]*model.QuestDefinition, error) {
	var rows []*model.QuestDefinition
	if err := pick(r.db, tx).WithContext(ctx).
		Where("category_id = ?", categoryID).
		Order("id").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list definitions of %s: %w", categoryID, err)
	}
	return rows, nil
}

// SaveAll upserts rows. A previously soft-deleted id is revived.
func (r *definitionRepo) SaveAll(ctx context.Context, tx *gorm.DB, rows []*model.QuestDefinition) error {
	base := pick(r.db, tx).WithContext(ctx).Unscoped()
	for _, row := range rows {
		row.DeletedAt = gorm.DeletedAt{}
		// Save adds a primary-key condition; a fresh session per row keeps
		// it from leaking into the next statement.
		if err := base.Session(&gorm.Session{}).Save(row).Error; err != nil {
			return fmt.Errorf("save definition %s: %w", row.ID, err)
		}
	}
	return nil
}

func (r *definitionRepo) DeleteAll(ctx context.Context, tx *gorm.DB, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := pick(r.db, tx).WithContext(ctx).Where("id IN ?", ids).Delete(&model.QuestDefinition{}).Error; err != nil {
		return fmt.Errorf("delete definitions: %w", err)
	}
	r.logger.Debug("definitions deleted", zap.Strings("ids", ids))
	return nil
}
