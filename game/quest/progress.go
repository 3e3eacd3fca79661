package quest

import (
	"context"

	"github.com/kasuganosora/questservice/model"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// IncreaseProgress adds progressMade to the player's active instance of the
// definition, clamped to [0, requiredProgress]. Negative amounts are
// accepted. Without an active instance the call does nothing.
func (s *Service) IncreaseProgress(ctx context.Context, playerID, definitionID string, progressMade int) (err error) {
	if playerID == "" {
		return newError(ErrInvalidRequest, "missing player id")
	}
	ctx, span := s.startSpan(ctx, "IncreaseProgress",
		attribute.String("player.id", playerID),
		attribute.String("quest.definition_id", definitionID),
		attribute.Int("quest.progress_made", progressMade))
	defer func() { endSpan(span, err) }()

	var (
		updated *model.PlayerQuest
		def     *model.QuestDefinition
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txErr error
		def, txErr = s.definitions.Get(ctx, tx, definitionID)
		if txErr != nil {
			return txErr
		}
		if def == nil {
			return newError(ErrUnknownQuestDefinition, "unknown quest definition: %s", definitionID)
		}
		q, txErr := s.activeInstance(ctx, tx, playerID, definitionID)
		if txErr != nil || q == nil {
			return txErr
		}
		next := applyProgress(q.CurrentProgress, progressMade, def.RequiredProgress)
		if next == q.CurrentProgress {
			return nil
		}
		q.CurrentProgress = next
		if txErr := s.quests.Save(ctx, tx, q); txErr != nil {
			return txErr
		}
		updated = q
		return nil
	})
	if err != nil {
		return err
	}
	if updated == nil {
		return nil
	}

	s.log(ctx).Debug("quest progress updated",
		zap.String("player_id", playerID),
		zap.String("definition_id", definitionID),
		zap.Int("progress", updated.CurrentProgress))
	view := newPlayerQuestView(updated, def)
	s.publish(ctx, Event{Type: EventProgress, PlayerID: playerID, Quest: &view, At: s.now()})
	return nil
}

// activeInstance returns the oldest instance of the definition that has not
// been completed, or nil.
func (s *Service) activeInstance(ctx context.Context, tx *gorm.DB, playerID, definitionID string) (*model.PlayerQuest, error) {
	rows, err := s.quests.ListByPlayerAndDefinition(ctx, tx, playerID, definitionID)
	if err != nil {
		return nil, err
	}
	for _, q := range rows {
		if q.Active() {
			return q, nil
		}
	}
	return nil, nil
}

// applyProgress returns current+delta clamped to [0, required] without
// overflowing int for any delta.
func applyProgress(current, delta, required int) int {
	current = clampProgress(current, required)
	switch {
	case delta > 0 && delta >= required-current:
		return required
	case delta < 0 && delta <= -current:
		return 0
	}
	return current + delta
}

func clampProgress(v, required int) int {
	if v < 0 {
		return 0
	}
	if v > required {
		return required
	}
	return v
}
