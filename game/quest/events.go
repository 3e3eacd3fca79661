package quest

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
)

// EventType names a quest notification.
type EventType string

const (
	EventGenerated EventType = "quest_generated"
	EventProgress  EventType = "quest_progress"
	EventCompleted EventType = "quest_completed"
)

// Event is published on Channel(playerID) after the change is committed.
type Event struct {
	Type     EventType        `json:"type"`
	PlayerID string           `json:"playerId"`
	Quest    *PlayerQuestView `json:"quest,omitempty"`
	Reward   *Reward          `json:"reward,omitempty"`
	At       time.Time        `json:"at"`
}

// Channel returns the pub/sub channel carrying playerID's quest events.
func Channel(playerID string) string {
	return "quests:" + playerID
}

func (s *Service) publish(ctx context.Context, ev Event) {
	if s.pubsub == nil {
		return
	}
	data, err := json.Marshal(ev)
	if err != nil {
		s.logger.Error("marshal quest event", zap.Error(err))
		return
	}
	if err := s.pubsub.Publish(context.WithoutCancel(ctx), Channel(ev.PlayerID), string(data)); err != nil {
		s.logger.Warn("publish quest event failed",
			zap.String("player_id", ev.PlayerID),
			zap.String("type", string(ev.Type)),
			zap.Error(err))
	}
}
