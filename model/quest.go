package model

import (
	"time"

	"gorm.io/gorm"
)

// QuestCategory groups quest definitions that share a generation cadence.
// A category without GenerationDayOfWeek regenerates daily, otherwise weekly.
type QuestCategory struct {
	ID                  string         `gorm:"primaryKey;size:64" json:"id"`
	GenerationHourOfDay *int           `json:"generation_hour_of_day"`
	GenerationDayOfWeek *int           `json:"generation_day_of_week"`
	CreatedAt           time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"-"`
}

// Weekly reports whether the category regenerates once per week.
func (c *QuestCategory) Weekly() bool {
	return c.GenerationDayOfWeek != nil
}

// QuestDefinition is a quest template: progress goal and reward.
// Rows are soft-deleted so player quests keep resolving their history.
type QuestDefinition struct {
	ID                     string         `gorm:"primaryKey;size:64" json:"id"`
	CategoryID             string         `gorm:"size:64;index:idx_definition_category;not null" json:"category_id"`
	RequiredProgress       int            `gorm:"not null" json:"required_progress"`
	RewardItemDefinitionID string         `gorm:"size:128" json:"reward_item_definition_id"`
	RewardItemCount        int            `json:"reward_item_count"`
	CreatedAt              time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt              time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt              gorm.DeletedAt `gorm:"index" json:"-"`
}

// PlayerQuest is one generated quest instance. CompletedAt == nil means active.
type PlayerQuest struct {
	ID              int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	PlayerID        string     `gorm:"size:128;index:idx_player_quest;not null" json:"player_id"`
	DefinitionID    string     `gorm:"size:64;index:idx_player_quest;not null" json:"definition_id"`
	CurrentProgress int        `gorm:"not null" json:"current_progress"`
	GeneratedAt     time.Time  `gorm:"not null" json:"generated_at"`
	CompletedAt     *time.Time `json:"completed_at"`
}

// Active reports whether the quest has not been finished yet.
func (q *PlayerQuest) Active() bool {
	return q.CompletedAt == nil
}
