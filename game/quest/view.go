package quest

import (
	"time"

	"github.com/kasuganosora/questservice/model"
)

// QuestView is one entry of the CreateQuests response.
type QuestView struct {
	ID                     int64     `json:"id"`
	QuestCategoryID        string    `json:"questCategoryId"`
	QuestDefinitionID      string    `json:"questDefinitionId"`
	CurrentProgress        int       `json:"currentProgress"`
	RequiredProgress       int       `json:"requiredProgress"`
	RewardItemDefinitionID string    `json:"rewardItemDefinitionId"`
	RewardItemCount        int       `json:"rewardItemCount"`
	GeneratedAt            time.Time `json:"generatedAt"`
	IsNew                  bool      `json:"newQuest"`
}

// PlayerQuestView is the admin projection of an instance, active or not.
type PlayerQuestView struct {
	ID                     int64      `json:"id"`
	QuestCategoryID        string     `json:"questCategoryId"`
	QuestDefinitionID      string     `json:"questDefinitionId"`
	CurrentProgress        int        `json:"currentProgress"`
	RequiredProgress       int        `json:"requiredProgress"`
	RewardItemDefinitionID string     `json:"rewardItemDefinitionId"`
	RewardItemCount        int        `json:"rewardItemCount"`
	GeneratedAt            time.Time  `json:"generatedAt"`
	CompletedAt            *time.Time `json:"completedAt"`
}

// Reward is what FinishQuest handed to the player.
type Reward struct {
	RewardItemDefinitionID string `json:"rewardItemDefinitionId"`
	RewardItemCount        int    `json:"rewardItemCount"`
}

// CategoryView / CategoryInput are the catalog wire shapes for categories.
type CategoryView struct {
	ID                  string `json:"id"`
	GenerationHourOfDay *int   `json:"generationHourOfDay"`
	GenerationDayOfWeek *int   `json:"generationDayOfWeek"`
}

type CategoryInput = CategoryView

// DefinitionView / DefinitionInput are the catalog wire shapes for definitions.
type DefinitionView struct {
	ID                     string `json:"id"`
	Category               string `json:"category"`
	RequiredProgress       int    `json:"requiredProgress"`
	RewardItemDefinitionID string `json:"rewardItemDefinitionId"`
	RewardItemCount        int    `json:"rewardItemCount"`
}

type DefinitionInput = DefinitionView

func newQuestView(q *model.PlayerQuest, def *model.QuestDefinition, isNew bool) QuestView {
	return QuestView{
		ID:                     q.ID,
		QuestCategoryID:        def.CategoryID,
		QuestDefinitionID:      def.ID,
		CurrentProgress:        q.CurrentProgress,
		RequiredProgress:       def.RequiredProgress,
		RewardItemDefinitionID: def.RewardItemDefinitionID,
		RewardItemCount:        def.RewardItemCount,
		GeneratedAt:            q.GeneratedAt,
		IsNew:                  isNew,
	}
}

func (v QuestView) asPlayerQuest() *PlayerQuestView {
	return &PlayerQuestView{
		ID:                     v.ID,
		QuestCategoryID:        v.QuestCategoryID,
		QuestDefinitionID:      v.QuestDefinitionID,
		CurrentProgress:        v.CurrentProgress,
		RequiredProgress:       v.RequiredProgress,
		RewardItemDefinitionID: v.RewardItemDefinitionID,
		RewardItemCount:        v.RewardItemCount,
		GeneratedAt:            v.GeneratedAt,
	}
}

func newPlayerQuestView(q *model.PlayerQuest, def *model.QuestDefinition) PlayerQuestView {
	return PlayerQuestView{
		ID:                     q.ID,
		QuestCategoryID:        def.CategoryID,
		QuestDefinitionID:      def.ID,
		CurrentProgress:        q.CurrentProgress,
		RequiredProgress:       def.RequiredProgress,
		RewardItemDefinitionID: def.RewardItemDefinitionID,
		RewardItemCount:        def.RewardItemCount,
		GeneratedAt:            q.GeneratedAt,
		CompletedAt:            q.CompletedAt,
	}
}

func newCategoryView(c *model.QuestCategory) CategoryView {
	return CategoryView{
		ID:                  c.ID,
		GenerationHourOfDay: c.GenerationHourOfDay,
		GenerationDayOfWeek: c.GenerationDayOfWeek,
	}
}

func newDefinitionView(d *model.QuestDefinition) DefinitionView {
	return DefinitionView{
		ID:                     d.ID,
		Category:               d.CategoryID,
		RequiredProgress:       d.RequiredProgress,
		RewardItemDefinitionID: d.RewardItemDefinitionID,
		RewardItemCount:        d.RewardItemCount,
	}
}
