package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var rankNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func daysAgo(n int) time.Time {
	return rankNow.AddDate(0, 0, -n)
}

func TestFreshnessScore(t *testing.T) {
	tests := []struct {
		name     string
		ageDays  int
		expected int
	}{
		{"brand new", 0, 30},
		{"five days old", 5, 25},
		{"twenty-nine days old", 29, 1},
		{"thirty days old", 30, 0},
		{"thirty-five days old", 35, 0},
		{"four hundred days old", 400, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FreshnessScore(daysAgo(tt.ageDays), rankNow))
		})
	}
}

func TestScarcityScore(t *testing.T) {
	assert.Equal(t, 20, ScarcityScore(0))
	assert.Equal(t, 15, ScarcityScore(5))
	assert.Equal(t, 1, ScarcityScore(19))
	assert.Equal(t, 0, ScarcityScore(20))
	assert.Equal(t, 0, ScarcityScore(500))
}

func TestMarkPenalty(t *testing.T) {
	sameDay := rankNow.Add(-2 * time.Hour)
	threeDays := daysAgo(3)
	sevenDays := daysAgo(7)
	eightDays := daysAgo(8)

	tests := []struct {
		name     string
		marks    int
		last     *time.Time
		expected int
	}{
		{"never marked", 0, nil, 0},
		{"marked today", 1, &sameDay, 52},
		{"marked three days ago", 1, &threeDays, 32},
		{"marked seven days ago", 1, &sevenDays, 17},
		{"marked eight days ago", 1, &eightDays, 2},
		{"repeat cap", 20, &eightDays, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MarkPenalty(tt.marks, tt.last, rankNow))
		})
	}
}

func TestSkipPenalty(t *testing.T) {
	sameDay := rankNow.Add(-1 * time.Hour)
	twoDays := daysAgo(2)
	tenDays := daysAgo(10)

	assert.Equal(t, 0, SkipPenalty(0, nil, rankNow))
	assert.Equal(t, 26, SkipPenalty(1, &sameDay, rankNow))
	assert.Equal(t, 17, SkipPenalty(2, &twoDays, rankNow))
	assert.Equal(t, 3, SkipPenalty(3, &tenDays, rankNow))

	// repeat cap of 8 with no recency penalty beyond 7 days
	assert.Equal(t, 8, SkipPenalty(50, &tenDays, rankNow))
}

func TestScoreFreshnessOrdering(t *testing.T) {
	ages := []int{0, 5, 35, 400}
	scores := make([]int, len(ages))
	for i, age := range ages {
		scores[i] = Score(QueueCandidate{Prayer_ID: i + 1, Datetime_Create: daysAgo(age)}, rankNow)
	}

	assert.Greater(t, scores[0], scores[1])
	assert.Greater(t, scores[1], scores[2])
	// both past the freshness horizon: identical scores
	assert.Equal(t, scores[2], scores[3])
}

func TestScorePersonalMarkPenalty(t *testing.T) {
	markedToday := rankNow.Add(-30 * time.Minute)

	unmarked := QueueCandidate{Prayer_ID: 1, Datetime_Create: daysAgo(2)}
	marked := QueueCandidate{
		Prayer_ID:          2,
		Datetime_Create:    daysAgo(2),
		Personal_Marks:     1,
		Last_Personal_Mark: &markedToday,
	}

	diff := Score(unmarked, rankNow) - Score(marked, rankNow)
	assert.GreaterOrEqual(t, diff, 50)
}

func TestRankQueue(t *testing.T) {
	candidates := []QueueCandidate{
		{Prayer_ID: 1, Datetime_Create: daysAgo(40)}, // stale
		{Prayer_ID: 2, Datetime_Create: daysAgo(0)},  // freshest
		{Prayer_ID: 3, Datetime_Create: daysAgo(10)}, // middle
	}

	ids := RankQueue(candidates, rankNow)
	assert.Equal(t, []int{2, 3, 1}, ids)
}

func TestRankQueueCapsAtTen(t *testing.T) {
	var candidates []QueueCandidate
	for i := 1; i <= 25; i++ {
		candidates = append(candidates, QueueCandidate{Prayer_ID: i, Datetime_Create: daysAgo(i)})
	}

	ids := RankQueue(candidates, rankNow)
	assert.Len(t, ids, QueueSize)
	// freshest first
	assert.Equal(t, 1, ids[0])
}

func TestRankQueueStableOnTies(t *testing.T) {
	// identical candidates score identically; stable sort keeps input order
	candidates := []QueueCandidate{
		{Prayer_ID: 7, Datetime_Create: daysAgo(3)},
		{Prayer_ID: 4, Datetime_Create: daysAgo(3)},
		{Prayer_ID: 9, Datetime_Create: daysAgo(3)},
	}

	ids := RankQueue(candidates, rankNow)
	assert.Equal(t, []int{7, 4, 9}, ids)
}

func TestRankQueueEmpty(t *testing.T) {
	assert.Empty(t, RankQueue(nil, rankNow))
}

func TestClampPosition(t *testing.T) {
	assert.Equal(t, 0, ClampPosition(-1, 5))
	assert.Equal(t, 0, ClampPosition(5, 5))
	assert.Equal(t, 0, ClampPosition(12, 5))
	assert.Equal(t, 3, ClampPosition(3, 5))
	assert.Equal(t, 0, ClampPosition(0, 0))
}
