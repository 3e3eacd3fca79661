package quest

import (
	"context"

	"github.com/kasuganosora/questservice/model"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CreateQuests returns the player's active quests and generates a new
// instance for every category that is due. Generated entries are flagged
// IsNew and appended after the surviving ones.
func (s *Service) CreateQuests(ctx context.Context, playerID string) (views []QuestView, err error) {
	if playerID == "" {
		return nil, newError(ErrInvalidRequest, "missing player id")
	}
	ctx, span := s.startSpan(ctx, "CreateQuests", attribute.String("player.id", playerID))
	defer func() { endSpan(span, err) }()

	if s.cache != nil {
		release, err := acquireLock(ctx, s.cache, generationLockKey(playerID), s.lockTTL, s.lockWait)
		if err != nil {
			return nil, err
		}
		defer release()
	}

	var generated []QuestView
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txErr error
		views, generated, txErr = s.generate(ctx, tx, playerID)
		return txErr
	})
	if err != nil {
		return nil, err
	}

	for _, v := range generated {
		s.publish(ctx, Event{Type: EventGenerated, PlayerID: playerID, Quest: v.asPlayerQuest(), At: v.GeneratedAt})
	}
	if len(generated) > 0 {
		s.log(ctx).Info("quests generated",
			zap.String("player_id", playerID),
			zap.Int("count", len(generated)))
	}
	return views, nil
}

func (s *Service) generate(ctx context.Context, tx *gorm.DB, playerID string) (all, generated []QuestView, err error) {
	existing, err := s.quests.ListByPlayer(ctx, tx, playerID)
	if err != nil {
		return nil, nil, err
	}
	defIDs := make([]string, 0, len(existing))
	for _, q := range existing {
		defIDs = append(defIDs, q.DefinitionID)
	}
	defs, err := s.definitions.ResolveByIDs(ctx, tx, defIDs)
	if err != nil {
		return nil, nil, err
	}

	all = make([]QuestView, 0, len(existing))
	latest := make(map[string]*model.PlayerQuest)
	for _, q := range existing {
		def, ok := defs[q.DefinitionID]
		if !ok {
			s.log(ctx).Warn("quest definition missing for instance",
				zap.Int64("quest_id", q.ID),
				zap.String("definition_id", q.DefinitionID))
			continue
		}
		if q.Active() {
			all = append(all, newQuestView(q, def, false))
		}
		// Ties on generatedAt go to the instance found last.
		if cur, ok := latest[def.CategoryID]; !ok || !q.GeneratedAt.Before(cur.GeneratedAt) {
			latest[def.CategoryID] = q
		}
	}

	categories, err := s.categories.List(ctx, tx)
	if err != nil {
		return nil, nil, err
	}
	now := s.now()
	for _, cat := range categories {
		if !generationDue(cat, latest[cat.ID], now) {
			continue
		}
		candidates, err := s.definitions.ListByCategory(ctx, tx, cat.ID)
		if err != nil {
			return nil, nil, err
		}
		if len(candidates) == 0 {
			s.log(ctx).Warn("no quest definitions available",
				zap.String("category_id", cat.ID),
				zap.String("player_id", playerID))
			continue
		}
		def := s.picker.Pick(candidates)
		q := &model.PlayerQuest{
			PlayerID:     playerID,
			DefinitionID: def.ID,
			GeneratedAt:  now,
		}
		if err := s.quests.Create(ctx, tx, q); err != nil {
			return nil, nil, err
		}
		v := newQuestView(q, def, true)
		all = append(all, v)
		generated = append(generated, v)
	}
	return all, generated, nil
}
