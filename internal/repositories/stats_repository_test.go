package repositories

import (
	"testing"
	"time"

	"fanpulse/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountersDocument_RoundTrip(t *testing.T) {
	stats := models.NewUserStats(7)
	stats.Set(models.StatReactions, 12)
	stats.Set(models.StatVisitStreak, 3)

	raw, err := encodeCounters(stats.Counters)
	require.NoError(t, err)

	counters, err := decodeCounters(raw)
	require.NoError(t, err)
	assert.Equal(t, stats.Counters, counters)

	// every known key survives, including untouched zeros
	for _, key := range models.StatKeys {
		_, ok := counters[key]
		assert.True(t, ok, key)
	}
}

func TestCountersDocument_ToleratesUnknownKeys(t *testing.T) {
	// a document written by an older build may carry since-removed counters
	counters, err := decodeCounters([]byte(`{"reactions":4,"retired_counter":9}`))
	require.NoError(t, err)
	assert.Equal(t, 4, counters[models.StatReactions])
}

func TestBadgesDocument_PreservesUnlockOrder(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	badges := []models.UnlockedBadge{
		{Badge: models.Badge{ID: "first_reaction", Name: "First Reaction"}, UnlockedAt: now},
		{Badge: models.Badge{ID: "first_comment", Name: "First Word"}, UnlockedAt: now.Add(time.Hour)},
		{Badge: models.Badge{ID: "reactor", Name: "Reactor"}, UnlockedAt: now.Add(2 * time.Hour)},
	}

	raw, err := encodeBadges(badges)
	require.NoError(t, err)

	decoded, err := decodeBadges(raw)
	require.NoError(t, err)
	require.Len(t, decoded, 3)
	for i := range badges {
		assert.Equal(t, badges[i].ID, decoded[i].ID)
		assert.True(t, badges[i].UnlockedAt.Equal(decoded[i].UnlockedAt))
	}
}

func TestLastVisit_IsCalendarDayString(t *testing.T) {
	// last_visit is a TEXT column holding a 2006-01-02 day; a fresh record
	// carries the empty string, which must stay a valid column value
	stats := models.NewUserStats(1)
	assert.Equal(t, "", stats.LastVisit)

	day := time.Date(2026, 3, 1, 23, 59, 0, 0, time.UTC).Format("2006-01-02")
	stats.LastVisit = day
	assert.Equal(t, "2026-03-01", stats.LastVisit)
}
