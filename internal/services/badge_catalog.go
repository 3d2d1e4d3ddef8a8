package services

import "fanpulse/internal/models"

// badgeCatalog is the static, ordered badge list. Order matters: the evaluator
// walks it front to back, so earlier entries unlock first when one update
// crosses several thresholds at once.
var badgeCatalog = []models.Badge{
	// Engagement
	{
		ID:          "first_reaction",
		Name:        "First Reaction",
		Description: "React to your first article",
		Icon:        "👏",
		Category:    models.BadgeCategoryEngagement,
		Condition:   models.BadgeCondition{StatKey: models.StatReactions, Threshold: 1},
	},
	{
		ID:          "reactor",
		Name:        "Reactor",
		Description: "React to 10 articles",
		Icon:        "🔥",
		Category:    models.BadgeCategoryEngagement,
		Condition:   models.BadgeCondition{StatKey: models.StatReactions, Threshold: 10},
	},
	{
		ID:          "ultra",
		Name:        "Ultra",
		Description: "React to 50 articles",
		Icon:        "💥",
		Category:    models.BadgeCategoryEngagement,
		Condition:   models.BadgeCondition{StatKey: models.StatReactions, Threshold: 50},
	},
	{
		ID:          "first_comment",
		Name:        "First Word",
		Description: "Leave your first comment",
		Icon:        "💬",
		Category:    models.BadgeCategoryEngagement,
		Condition:   models.BadgeCondition{StatKey: models.StatComments, Threshold: 1},
	},
	{
		ID:          "voice_of_the_stands",
		Name:        "Voice of the Stands",
		Description: "Leave 25 comments",
		Icon:        "📣",
		Category:    models.BadgeCategoryEngagement,
		Condition:   models.BadgeCondition{StatKey: models.StatComments, Threshold: 25},
	},

	// Prediction
	{
		ID:          "first_prediction",
		Name:        "First Call",
		Description: "Submit your first score prediction",
		Icon:        "🎯",
		Category:    models.BadgeCategoryPrediction,
		Condition:   models.BadgeCondition{StatKey: models.StatPredictions, Threshold: 1},
	},
	{
		ID:          "pundit",
		Name:        "Pundit",
		Description: "Submit 10 score predictions",
		Icon:        "🎙️",
		Category:    models.BadgeCategoryPrediction,
		Condition:   models.BadgeCondition{StatKey: models.StatPredictions, Threshold: 10},
	},
	{
		ID:          "crystal_ball",
		Name:        "Crystal Ball",
		Description: "Nail 5 exact scores",
		Icon:        "🔮",
		Category:    models.BadgeCategoryPrediction,
		Condition:   models.BadgeCondition{StatKey: models.StatPerfectPredictions, Threshold: 5},
	},
	{
		ID:          "hot_streak",
		Name:        "Hot Streak",
		Description: "Score points in 3 predictions in a row",
		Icon:        "⚡",
		Category:    models.BadgeCategoryPrediction,
		Condition:   models.BadgeCondition{StatKey: models.StatPredictionStreak, Threshold: 3},
	},

	// Knowledge
	{
		ID:          "quiz_rookie",
		Name:        "Quiz Rookie",
		Description: "Complete your first quiz",
		Icon:        "🧠",
		Category:    models.BadgeCategoryKnowledge,
		Condition:   models.BadgeCondition{StatKey: models.StatQuizzes, Threshold: 1},
	},
	{
		ID:          "club_historian",
		Name:        "Club Historian",
		Description: "Complete 10 quizzes",
		Icon:        "📚",
		Category:    models.BadgeCategoryKnowledge,
		Condition:   models.BadgeCondition{StatKey: models.StatQuizzes, Threshold: 10},
	},
	{
		ID:          "scout",
		Name:        "Scout",
		Description: "Compare 5 pairs of players",
		Icon:        "🔍",
		Category:    models.BadgeCategoryKnowledge,
		Condition:   models.BadgeCondition{StatKey: models.StatComparisons, Threshold: 5},
	},

	// Loyalty
	{
		ID:          "regular",
		Name:        "Regular",
		Description: "Visit 3 days in a row",
		Icon:        "📅",
		Category:    models.BadgeCategoryLoyalty,
		Condition:   models.BadgeCondition{StatKey: models.StatVisitStreak, Threshold: 3},
	},
	{
		ID:          "season_ticket",
		Name:        "Season Ticket",
		Description: "Visit 7 days in a row",
		Icon:        "🎟️",
		Category:    models.BadgeCategoryLoyalty,
		Condition:   models.BadgeCondition{StatKey: models.StatVisitStreak, Threshold: 7},
	},
	{
		ID:          "gaffer",
		Name:        "Gaffer",
		Description: "Build your first dream team",
		Icon:        "📋",
		Category:    models.BadgeCategoryLoyalty,
		Condition:   models.BadgeCondition{StatKey: models.StatDreamTeams, Threshold: 1},
	},
}

// BadgeCatalog returns the ordered badge definitions. The returned slice is
// shared; callers must not modify it.
func BadgeCatalog() []models.Badge {
	return badgeCatalog
}

// BadgeByID looks a badge up by id
func BadgeByID(id string) (models.Badge, bool) {
	for _, b := range badgeCatalog {
		if b.ID == id {
			return b, true
		}
	}
	return models.Badge{}, false
}
