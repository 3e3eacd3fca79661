package repo

import (
	"context"
	"fmt"

	"github.com/kasuganosora/questservice/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CategoryRepo stores quest categories.
type CategoryRepo interface {
	List(ctx context.Context, tx *gorm.DB) ([]*model.QuestCategory, error)
	SaveAll(ctx context.Context, tx *gorm.DB, rows []*model.QuestCategory) error
	DeleteAll(ctx context.Context, tx *gorm.DB, ids []string) error
}

type categoryRepo struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewCategoryRepo(db *gorm.DB, logger *zap.Logger) CategoryRepo {
	return &categoryRepo{db: db, logger: logger.With(zap.String("repo", "CategoryRepo"))}
}

func (r *categoryRepo) List(ctx context.Context, tx *gorm.DB) ([]*model.QuestCategory, error) {
	var rows []*model.QuestCategory
	if err := pick(r.db, tx).WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return rows, nil
}

// SaveAll upserts rows. A previously soft-deleted id is revived.
func (r *categoryRepo) SaveAll(ctx context.Context, tx *gorm.DB, rows []*model.QuestCategory) error {
	base := pick(r.db, tx).WithContext(ctx).Unscoped()
	for _, row := range rows {
		row.DeletedAt = gorm.DeletedAt{}
		// Save adds a primary-key condition; a fresh session per row keeps
		// it from leaking into the next statement.
		if err := base.Session(&gorm.Session{}).Save(row).Error; err != nil {
			return fmt.Errorf("save category %s: %w", row.ID, err)
		}
	}
	return nil
}

func (r *categoryRepo) DeleteAll(ctx context.Context, tx *gorm.DB, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := pick(r.db, tx).WithContext(ctx).Where("id IN ?", ids).Delete(&model.QuestCategory{}).Error; err != nil {
		return fmt.Errorf("delete categories: %w", err)
	}
	r.logger.Debug("categories deleted", zap.Strings("ids", ids))
	return nil
}
