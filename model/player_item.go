package model

import "time"

// PlayerItem is one stacked reward entry in the local inventory ledger,
// used when rewards are not forwarded to a remote collection service.
type PlayerItem struct {
	ID               int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	PlayerID         string    `gorm:"size:128;uniqueIndex:idx_player_item;not null" json:"player_id"`
	ItemDefinitionID string    `gorm:"size:128;uniqueIndex:idx_player_item;not null" json:"item_definition_id"`
	Qty              int       `gorm:"not null" json:"qty"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
