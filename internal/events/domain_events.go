package events

// Event types published by the domain services
const (
	EventBadgeUnlocked      = "badge.unlocked"
	EventMatchFinalized     = "match.finalized"
	EventLeaderboardUpdated = "leaderboard.updated"
	EventPredictionScored   = "prediction.scored"
	EventArticlePublished   = "article.published"
)

// BadgeUnlockedEvent fires when a supporter earns a badge
type BadgeUnlockedEvent struct {
	BaseEvent
	BadgeID   string `json:"badge_id"`
	BadgeName string `json:"badge_name"`
}

// NewBadgeUnlockedEvent builds a badge unlock event
func NewBadgeUnlockedEvent(userID int64, badgeID, badgeName string) *BadgeUnlockedEvent {
	return &BadgeUnlockedEvent{
		BaseEvent: newBaseEvent(EventBadgeUnlocked, &userID),
		BadgeID:   badgeID,
		BadgeName: badgeName,
	}
}

// MatchFinalizedEvent fires once when a match transitions to finished
type MatchFinalizedEvent struct {
	BaseEvent
	MatchID     int64 `json:"match_id"`
	HomeScore   int   `json:"home_score"`
	AwayScore   int   `json:"away_score"`
	ScoredCount int   `json:"scored_count"`
}

// NewMatchFinalizedEvent builds a match finalization event
func NewMatchFinalizedEvent(matchID int64, homeScore, awayScore, scoredCount int) *MatchFinalizedEvent {
	return &MatchFinalizedEvent{
		BaseEvent:   newBaseEvent(EventMatchFinalized, nil),
		MatchID:     matchID,
		HomeScore:   homeScore,
		AwayScore:   awayScore,
		ScoredCount: scoredCount,
	}
}

// PredictionScoredEvent fires for each prediction scored during finalization
type PredictionScoredEvent struct {
	BaseEvent
	MatchID int64 `json:"match_id"`
	Points  int   `json:"points"`
}

// NewPredictionScoredEvent builds a prediction scored event
func NewPredictionScoredEvent(userID, matchID int64, points int) *PredictionScoredEvent {
	return &PredictionScoredEvent{
		BaseEvent: newBaseEvent(EventPredictionScored, &userID),
		MatchID:   matchID,
		Points:    points,
	}
}

// LeaderboardUpdatedEvent signals consumers to re-fetch the standings
type LeaderboardUpdatedEvent struct {
	BaseEvent
	MatchID int64 `json:"match_id"`
}

// NewLeaderboardUpdatedEvent builds a leaderboard update event
func NewLeaderboardUpdatedEvent(matchID int64) *LeaderboardUpdatedEvent {
	return &LeaderboardUpdatedEvent{
		BaseEvent: newBaseEvent(EventLeaderboardUpdated, nil),
		MatchID:   matchID,
	}
}

// ArticlePublishedEvent fires when a news article goes live
type ArticlePublishedEvent struct {
	BaseEvent
	ArticleID int64  `json:"article_id"`
	Title     string `json:"title"`
}

// NewArticlePublishedEvent builds an article published event
func NewArticlePublishedEvent(authorID, articleID int64, title string) *ArticlePublishedEvent {
	return &ArticlePublishedEvent{
		BaseEvent: newBaseEvent(EventArticlePublished, &authorID),
		ArticleID: articleID,
		Title:     title,
	}
}
