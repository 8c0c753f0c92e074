package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/PrayerWall/models"
)

func viewerWithPreference(pref string) models.UserProfile {
	return models.UserProfile{
		User_Profile_ID:      1,
		Username:             "testuser",
		Display_Name:         "Test User",
		Religious_Preference: pref,
	}
}

func TestFeedQueryUnknownFeed(t *testing.T) {
	_, _, cleanup := setupMockDB(t)
	defer cleanup()

	_, err := FeedQuery("trending", viewerWithPreference(models.PreferenceChristian))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown feed")
}

func TestFeedQueryAudienceByPreference(t *testing.T) {
	_, _, cleanup := setupMockDB(t)
	defer cleanup()

	tests := []struct {
		name        string
		preference  string
		contains    []string
		notContains []string
	}{
		{
			name:       "christian sees all and christians_only",
			preference: models.PreferenceChristian,
			contains:   []string{"'all'", "'christians_only'"},
		},
		{
			name:       "non-christian sees all and non_christians_only",
			preference: models.PreferenceNonChristian,
			contains:   []string{"'all'", "'non_christians_only'"},
		},
		{
			name:        "unspecified sees only all",
			preference:  models.PreferenceUnspecified,
			contains:    []string{"'all'"},
			notContains: []string{"'christians_only'", "'non_christians_only'"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, err := FeedQuery(FeedAll, viewerWithPreference(tt.preference))
			assert.NoError(t, err)

			sql, _, err := query.ToSQL()
			assert.NoError(t, err)
			for _, fragment := range tt.contains {
				assert.Contains(t, sql, fragment)
			}
			for _, fragment := range tt.notContains {
				assert.NotContains(t, sql, fragment)
			}
		})
	}
}

func TestFeedQueryAllExcludesFlaggedAndArchived(t *testing.T) {
	_, _, cleanup := setupMockDB(t)
	defer cleanup()

	query, err := FeedQuery(FeedAll, viewerWithPreference(models.PreferenceChristian))
	assert.NoError(t, err)

	sql, _, err := query.ToSQL()
	assert.NoError(t, err)
	assert.Contains(t, sql, `"prayer"."flagged" IS FALSE`)
	assert.Contains(t, sql, "NOT IN")
	assert.Contains(t, sql, "'archived'")
}

func TestFeedQueryMyRequestsIncludesFlagged(t *testing.T) {
	_, _, cleanup := setupMockDB(t)
	defer cleanup()

	query, err := FeedQuery(FeedMyRequests, viewerWithPreference(models.PreferenceChristian))
	assert.NoError(t, err)

	sql, _, err := query.ToSQL()
	assert.NoError(t, err)
	// the author's own listing has no flagged or audience filtering
	assert.NotContains(t, sql, `"flagged" IS FALSE`)
	assert.NotContains(t, sql, `"target_audience" IN`)
	assert.Contains(t, sql, `"prayer"."created_by" = 1`)
}

func TestFeedQueryArchivedIsViewerPrivate(t *testing.T) {
	_, _, cleanup := setupMockDB(t)
	defer cleanup()

	query, err := FeedQuery(FeedArchived, viewerWithPreference(models.PreferenceChristian))
	assert.NoError(t, err)

	sql, _, err := query.ToSQL()
	assert.NoError(t, err)
	assert.Contains(t, sql, `"prayer"."created_by" = 1`)
	assert.Contains(t, sql, "'archived'")
}

func TestFeedQueryMyPrayersUsesPersonalMarks(t *testing.T) {
	_, _, cleanup := setupMockDB(t)
	defer cleanup()

	query, err := FeedQuery(FeedMyPrayers, viewerWithPreference(models.PreferenceNonChristian))
	assert.NoError(t, err)

	sql, _, err := query.ToSQL()
	assert.NoError(t, err)
	assert.Contains(t, sql, `"user_profile_id" = 1`)
	assert.Contains(t, sql, `"last_marked_at" DESC`)
}

func TestPartnerMatchQueryExcludesOwnMarks(t *testing.T) {
	_, _, cleanup := setupMockDB(t)
	defer cleanup()

	sql, _, err := PartnerMatchQuery(viewerWithPreference(models.PreferenceChristian)).ToSQL()
	assert.NoError(t, err)
	assert.Contains(t, sql, "NOT IN (SELECT prayer_id FROM prayer_mark WHERE user_profile_id = 1)")
	assert.Contains(t, sql, "RANDOM()")
	assert.Contains(t, sql, "LIMIT 1")
}
