package models

import "time"

// Badge categories
const (
	BadgeCategoryEngagement = "engagement"
	BadgeCategoryPrediction = "prediction"
	BadgeCategoryKnowledge  = "knowledge"
	BadgeCategoryLoyalty    = "loyalty"
)

// BadgeCondition is the trigger for a badge: a stat key and the threshold the
// counter must reach.
type BadgeCondition struct {
	StatKey   string `json:"stat_key"`
	Threshold int    `json:"threshold"`
}

// Badge represents an achievement badge that supporters earn by reaching
// milestones. Definitions are static and immutable at runtime.
type Badge struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Icon        string         `json:"icon"`
	Category    string         `json:"category"`
	Condition   BadgeCondition `json:"condition"`
}

// UnlockedBadge is a badge plus the moment it was earned. A badge id appears
// at most once in a user's unlocked set; once unlocked it is never re-locked.
type UnlockedBadge struct {
	Badge
	UnlockedAt time.Time `json:"unlocked_at"`
}

// BadgeProgress pairs a badge with the user's progress toward it (0-100)
type BadgeProgress struct {
	Badge    Badge `json:"badge"`
	Progress int   `json:"progress"`
	Unlocked bool  `json:"unlocked"`
}
