package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/kasuganosora/questservice/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PlayerQuestRepo stores generated quest instances. Rows are never deleted.
type PlayerQuestRepo interface {
	ListByPlayer(ctx context.Context, tx *gorm.DB, playerID string) ([]*model.PlayerQuest, error)
	// ListByPlayerAndDefinition returns matching instances ordered by id and
	// locks them for update where the dialect allows it.
	ListByPlayerAndDefinition(ctx context.Context, tx *gorm.DB, playerID, definitionID string) ([]*model.PlayerQuest, error)
	Create(ctx context.Context, tx *gorm.DB, row *model.PlayerQuest) error
	Save(ctx context.Context, tx *gorm.DB, row *model.PlayerQuest) error
	// MarkCompleted stamps completedAt on an active instance. It returns
	// false when the instance was already completed.
	MarkCompleted(ctx context.Context, tx *gorm.DB, id int64, at time.Time) (bool, error)
}

type playerQuestRepo struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewPlayerQuestRepo(db *gorm.DB, logger *zap.Logger) PlayerQuestRepo {
	return &playerQuestRepo{db: db, logger: logger.With(zap.String("repo", "PlayerQuestRepo"))}
}

func (r *playerQuestRepo) ListByPlayer(ctx context.Context, tx *gorm.DB, playerID string) ([]*model.PlayerQuest, error) {
	var rows []*model.PlayerQuest
	if err := pick(r.db, tx).WithContext(ctx).
		Where("player_id = ?", playerID).
		Order("id").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list quests of %s: %w", playerID, err)
	}
	return rows, nil
}

func (r *playerQuestRepo) ListByPlayerAndDefinition(ctx context.Context, tx *gorm.DB, playerID, definitionID string) ([]*model.PlayerQuest, error) {
	var rows []*model.PlayerQuest
	if err := forUpdate(pick(r.db, tx).WithContext(ctx)).
		Where("player_id = ? AND definition_id = ?", playerID, definitionID).
		Order("id").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list quests of %s/%s: %w", playerID, definitionID, err)
	}
	return rows, nil
}

func (r *playerQuestRepo) Create(ctx context.Context, tx *gorm.DB, row *model.PlayerQuest) error {
	if err := pick(r.db, tx).WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("create quest for %s: %w", row.PlayerID, err)
	}
	return nil
}

func (r *playerQuestRepo) Save(ctx context.Context, tx *gorm.DB, row *model.PlayerQuest) error {
	if err := pick(r.db, tx).WithContext(ctx).Save(row).Error; err != nil {
		return fmt.Errorf("save quest %d: %w", row.ID, err)
	}
	return nil
}

func (r *playerQuestRepo) MarkCompleted(ctx context.Context, tx *gorm.DB, id int64, at time.Time) (bool, error) {
	res := pick(r.db, tx).WithContext(ctx).
		Model(&model.PlayerQuest{}).
		Where("id = ? AND completed_at IS NULL", id).
		Update("completed_at", at)
	if res.Error != nil {
		return false, fmt.Errorf("complete quest %d: %w", id, res.Error)
	}
	return res.RowsAffected == 1, nil
}
