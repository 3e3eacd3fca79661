package quest

import (
	"context"
	"errors"
	"time"

	"github.com/kasuganosora/questservice/audit"
	"github.com/kasuganosora/questservice/game/reward"
	"github.com/kasuganosora/questservice/model"
	"github.com/kasuganosora/questservice/pkg/ctxutil"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const actionFinishQuest = "finish_quest"

// FinishQuest completes the player's active instance of the definition and
// grants its reward. The grant runs inside the transaction; when it fails
// the instance stays active and the call may be retried.
func (s *Service) FinishQuest(ctx context.Context, playerID, definitionID string) (rw Reward, err error) {
	if playerID == "" {
		return Reward{}, newError(ErrInvalidRequest, "missing player id")
	}
	ctx, span := s.startSpan(ctx, "FinishQuest",
		attribute.String("player.id", playerID),
		attribute.String("quest.definition_id", definitionID))
	defer func() { endSpan(span, err) }()

	start := time.Now()
	var (
		completed *model.PlayerQuest
		def       *model.QuestDefinition
		granted   bool
	)
	defer func() {
		if granted || errors.Is(err, ErrRewardGrantFailed) {
			s.recordAudit(ctx, playerID, definitionID, rw, err, time.Since(start))
		}
	}()

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
		if txErr != nil {
			return txErr
		}
		if q == nil {
			return newError(ErrQuestNotFound, "no active quest %s for player %s", definitionID, playerID)
		}
		if q.CurrentProgress < def.RequiredProgress {
			return newError(ErrInsufficientProgress, "quest %s progress %d of %d",
				definitionID, q.CurrentProgress, def.RequiredProgress)
		}

		if s.granter == nil {
			return wrapError(ErrRewardGrantFailed, reward.ErrUnavailable)
		}
		if txErr := s.granter.GrantItems(ctx, tx, reward.Grant{
			PlayerID:         playerID,
			ItemDefinitionID: def.RewardItemDefinitionID,
			Count:            def.RewardItemCount,
		}); txErr != nil {
			return wrapError(ErrRewardGrantFailed, txErr)
		}

		now := s.now()
		ok, txErr := s.quests.MarkCompleted(ctx, tx, q.ID, now)
		if txErr != nil {
			return txErr
		}
		if !ok {
			return newError(ErrQuestNotFound, "quest %d already completed", q.ID)
		}
		q.CompletedAt = &now
		completed = q
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrRewardGrantFailed) {
			s.log(ctx).Warn("reward grant failed",
				zap.String("player_id", playerID),
				zap.String("definition_id", definitionID),
				zap.Error(err))
		}
		return Reward{}, err
	}

	granted = true
	rw = Reward{
		RewardItemDefinitionID: def.RewardItemDefinitionID,
		RewardItemCount:        def.RewardItemCount,
	}
	s.log(ctx).Info("quest finished",
		zap.String("player_id", playerID),
		zap.String("definition_id", definitionID),
		zap.String("reward_item", rw.RewardItemDefinitionID),
		zap.Int("reward_count", rw.RewardItemCount))

	view := newPlayerQuestView(completed, def)
	s.publish(ctx, Event{Type: EventCompleted, PlayerID: playerID, Quest: &view, Reward: &rw, At: *completed.CompletedAt})
	return rw, nil
}

func (s *Service) recordAudit(ctx context.Context, playerID, definitionID string, rw Reward, err error, d time.Duration) {
	if s.audit == nil {
		return
	}
	entry := audit.Entry{
		TraceID:    ctxutil.TraceID(ctx),
		PlayerID:   playerID,
		Action:     actionFinishQuest,
		Request:    map[string]string{"questDefinitionId": definitionID},
		DurationMs: int(d.Milliseconds()),
	}
	if err != nil {
		entry.Error = err.Error()
	} else {
		entry.Response = rw
	}
	s.audit.Log(entry)
}
