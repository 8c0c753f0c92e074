package services

import (
	"sort"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/PrayerWall/initializers"
	"github.com/PrayerWall/models"
)

// QueueSize caps the number of prayers returned by prayer mode.
const QueueSize = 10

// QueueCandidate carries the aggregates the scorer needs for one eligible
// prayer, from the viewer's perspective.
type QueueCandidate struct {
	Prayer_ID          int        `db:"prayer_id"`
	Datetime_Create    time.Time  `db:"datetime_create"`
	Total_Marks        int        `db:"total_marks"`
	Personal_Marks     int        `db:"personal_marks"`
	Last_Personal_Mark *time.Time `db:"last_personal_mark"`
	Personal_Skips     int        `db:"personal_skips"`
	Last_Personal_Skip *time.Time `db:"last_personal_skip"`
}

// daysBetween is the calendar-day difference from a to b, not elapsed hours
// divided by 24. Two timestamps on the same date are zero days apart.
func daysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	start := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	end := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(end.Sub(start).Hours() / 24)
}

// FreshnessScore awards up to 30 points for new prayers, tapering to zero
// at 30 days old.
func FreshnessScore(created, now time.Time) int {
	age := daysBetween(created, now)
	if age < 0 {
		age = 0
	}
	if age >= 30 {
		return 0
	}
	return 30 - age
}

// ScarcityScore awards up to 20 points for prayers few people have prayed
// for, across all users.
func ScarcityScore(totalMarks int) int {
	if totalMarks >= 20 {
		return 0
	}
	return 20 - totalMarks
}

// MarkPenalty charges for prayers the viewer has recently or repeatedly
// marked: 50 same-day, 30 within 3 days, 15 within 7, plus up to 10 more
// for heavy repeat marking.
func MarkPenalty(personalMarks int, lastMark *time.Time, now time.Time) int {
	if personalMarks == 0 || lastMark == nil {
		return 0
	}
	penalty := 0
	switch d := daysBetween(*lastMark, now); {
	case d <= 0:
		penalty = 50
	case d <= 3:
		penalty = 30
	case d <= 7:
		penalty = 15
	}
	repeat := personalMarks * 2
	if repeat > 10 {
		repeat = 10
	}
	return penalty + repeat
}

// SkipPenalty is the milder analogue for skips: 25 same-day, 15 within 3
// days, 8 within 7, plus up to 8 more for repeat skipping.
func SkipPenalty(personalSkips int, lastSkip *time.Time, now time.Time) int {
	if personalSkips == 0 || lastSkip == nil {
		return 0
	}
	penalty := 0
	switch d := daysBetween(*lastSkip, now); {
	case d <= 0:
		penalty = 25
	case d <= 3:
		penalty = 15
	case d <= 7:
		penalty = 8
	}
	repeat := personalSkips
	if repeat > 8 {
		repeat = 8
	}
	return penalty + repeat
}

// Score is the additive ranking heuristic for one candidate. Higher scores
// rank earlier in the queue.
func Score(c QueueCandidate, now time.Time) int {
	score := FreshnessScore(c.Datetime_Create, now)
	score += ScarcityScore(c.Total_Marks)
	score -= MarkPenalty(c.Personal_Marks, c.Last_Personal_Mark, now)
	score -= SkipPenalty(c.Personal_Skips, c.Last_Personal_Skip, now)
	return score
}

// RankQueue orders candidates by descending score and returns the top
// QueueSize prayer ids. The sort is stable, so equal scores keep the
// candidates' original order.
func RankQueue(candidates []QueueCandidate, now time.Time) []int {
	scores := make([]int, len(candidates))
	for i, c := range candidates {
		scores[i] = Score(c, now)
	}

	order := make([]int, len(candidates))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	limit := len(order)
	if limit > QueueSize {
		limit = QueueSize
	}
	ids := make([]int, 0, limit)
	for _, idx := range order[:limit] {
		ids = append(ids, candidates[idx].Prayer_ID)
	}
	return ids
}

// ClampPosition resets out-of-range queue positions to the start rather
// than failing.
func ClampPosition(position, queueLen int) int {
	if position < 0 || position >= queueLen {
		return 0
	}
	return position
}

// personalSkips aggregates only the viewer's own skips.
func personalSkips(userID int) *goqu.SelectDataset {
	return goqu.From("prayer_skip").
		Select(
			goqu.C("prayer_id"),
			goqu.COUNT("*").As("skip_count"),
			goqu.MAX(goqu.C("datetime_create")).As("last_skipped_at"),
		).
		Where(goqu.C("user_profile_id").Eq(userID)).
		GroupBy(goqu.C("prayer_id"))
}

// FetchQueueCandidates loads every eligible prayer for the viewer with its
// global mark total and the viewer's personal mark/skip aggregates.
func FetchQueueCandidates(viewer models.UserProfile) ([]QueueCandidate, error) {
	query := initializers.DB.From("prayer").
		Select(
			goqu.I("prayer.prayer_id"),
			goqu.I("prayer.datetime_create"),
			goqu.L("COALESCE(marks.mark_count, 0)").As("total_marks"),
			goqu.L("COALESCE(mine.mark_count, 0)").As("personal_marks"),
			goqu.L("mine.last_marked_at").As("last_personal_mark"),
			goqu.L("COALESCE(skips.skip_count, 0)").As("personal_skips"),
			goqu.L("skips.last_skipped_at").As("last_personal_skip"),
		).
		LeftJoin(globalMarks().As("marks"), goqu.On(goqu.Ex{"prayer.prayer_id": goqu.I("marks.prayer_id")})).
		LeftJoin(personalMarks(viewer.User_Profile_ID).As("mine"), goqu.On(goqu.Ex{"prayer.prayer_id": goqu.I("mine.prayer_id")})).
		LeftJoin(personalSkips(viewer.User_Profile_ID).As("skips"), goqu.On(goqu.Ex{"prayer.prayer_id": goqu.I("skips.prayer_id")})).
		Where(eligibleFilters(viewer)...)

	var candidates []QueueCandidate
	if err := query.ScanStructs(&candidates); err != nil {
		return nil, err
	}
	return candidates, nil
}

// PrayerQueue computes the ordered prayer-mode queue for the viewer.
func PrayerQueue(viewer models.UserProfile, now time.Time) ([]int, error) {
	candidates, err := FetchQueueCandidates(viewer)
	if err != nil {
		return nil, err
	}
	return RankQueue(candidates, now), nil
}
