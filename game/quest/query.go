package quest

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// GetPlayerQuests lists every instance of the player, completed ones
// included, in generation order.
func (s *Service) GetPlayerQuests(ctx context.Context, playerID string) (views []PlayerQuestView, err error) {
	ctx, span := s.startSpan(ctx, "GetPlayerQuests", attribute.String("player.id", playerID))
	defer func() { endSpan(span, err) }()

	rows, err := s.quests.ListByPlayer(ctx, nil, playerID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(rows))
	for _, q := range rows {
		ids = append(ids, q.DefinitionID)
	}
	defs, err := s.definitions.ResolveByIDs(ctx, nil, ids)
	if err != nil {
		return nil, err
	}

	views = make([]PlayerQuestView, 0, len(rows))
	for _, q := range rows {
		def, ok := defs[q.DefinitionID]
		if !ok {
			s.log(ctx).Warn("quest definition missing for instance",
				zap.Int64("quest_id", q.ID),
				zap.String("definition_id", q.DefinitionID))
			continue
		}
		views = append(views, newPlayerQuestView(q, def))
	}
	return views, nil
}
