package quest

import (
	"time"

	"github.com/kasuganosora/questservice/model"
)

const (
	day  = 24 * time.Hour
	week = 7 * day
)

// Cadence is how often a category produces a new instance.
type Cadence int

const (
	Daily Cadence = iota
	Weekly
)

func (c Cadence) String() string {
	if c == Weekly {
		return "weekly"
	}
	return "daily"
}

func cadenceOf(cat *model.QuestCategory) Cadence {
	if cat.Weekly() {
		return Weekly
	}
	return Daily
}

// elapsedUnits counts whole cadence units between since and now.
// A clock that went backwards counts as zero.
func elapsedUnits(c Cadence, since, now time.Time) int64 {
	d := now.Sub(since)
	if d <= 0 {
		return 0
	}
	if c == Weekly {
		return int64(d / week)
	}
	return int64(d / day)
}

// generationDue reports whether a category needs a new instance given the
// latest one generated for the player (nil when there is none).
func generationDue(cat *model.QuestCategory, latest *model.PlayerQuest, now time.Time) bool {
	if latest == nil {
		return true
	}
	return elapsedUnits(cadenceOf(cat), latest.GeneratedAt, now) > 0
}
