package services

import (
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/PrayerWall/initializers"
	"github.com/PrayerWall/models"
)

// Named feeds served by GET /prayers/feed/:feed.
const (
	FeedAll            = "all"
	FeedNewUnprayed    = "new_unprayed"
	FeedMostPrayed     = "most_prayed"
	FeedMyPrayers      = "my_prayers"
	FeedMyRequests     = "my_requests"
	FeedAnswered       = "answered"
	FeedArchived       = "archived"
	FeedRecentActivity = "recent_activity"
)

// currentAttributeSnapshot is the Postgres DISTINCT ON form of "latest row
// per prayer for this attribute". The outer filter keeps only prayers whose
// current value is the literal 'true'.
const currentTrueAttributeSQL = `(SELECT prayer_id FROM (
	SELECT DISTINCT ON (prayer_id) prayer_id, attribute_value
	FROM prayer_attribute
	WHERE attribute_name = ?
	ORDER BY prayer_id, datetime_create DESC, prayer_attribute_id DESC
) cur WHERE cur.attribute_value = 'true')`

func hasCurrentTrueAttribute(name string) exp.Expression {
	return goqu.L("prayer.prayer_id IN "+currentTrueAttributeSQL, name)
}

func lacksCurrentTrueAttribute(name string) exp.Expression {
	return goqu.L("prayer.prayer_id NOT IN "+currentTrueAttributeSQL, name)
}

// audienceFilter restricts prayers to the viewer's religious preference.
// Unspecified viewers only ever see prayers targeted at everyone.
func audienceFilter(viewer models.UserProfile) exp.Expression {
	switch viewer.Religious_Preference {
	case models.PreferenceChristian:
		return goqu.I("prayer.target_audience").In(models.AudienceAll, models.AudienceChristiansOnly)
	case models.PreferenceNonChristian:
		return goqu.I("prayer.target_audience").In(models.AudienceAll, models.AudienceNonChristiansOnly)
	default:
		return goqu.I("prayer.target_audience").Eq(models.AudienceAll)
	}
}

// eligibleFilters is the predicate shared by the public feeds and prayer
// mode: unflagged, no current archived attribute, audience-compatible.
func eligibleFilters(viewer models.UserProfile) []exp.Expression {
	return []exp.Expression{
		goqu.I("prayer.flagged").IsFalse(),
		lacksCurrentTrueAttribute(models.AttrArchived),
		audienceFilter(viewer),
	}
}

func feedColumns() []interface{} {
	return []interface{}{
		goqu.I("prayer.prayer_id"),
		goqu.I("prayer.created_by"),
		goqu.I("prayer.request_text"),
		goqu.I("prayer.generated_prayer"),
		goqu.I("prayer.project_tag"),
		goqu.I("prayer.flagged"),
		goqu.I("prayer.target_audience"),
		goqu.I("prayer.datetime_create"),
		goqu.L("COALESCE(marks.mark_count, 0)").As("mark_count"),
		goqu.L("marks.last_marked_at").As("last_marked_at"),
	}
}

// globalMarks aggregates prayer_mark rows across all users.
func globalMarks() *goqu.SelectDataset {
	return goqu.From("prayer_mark").
		Select(
			goqu.C("prayer_id"),
			goqu.COUNT("*").As("mark_count"),
			goqu.MAX(goqu.C("datetime_create")).As("last_marked_at"),
		).
		GroupBy(goqu.C("prayer_id"))
}

// personalMarks aggregates only the viewer's own marks.
func personalMarks(userID int) *goqu.SelectDataset {
	return goqu.From("prayer_mark").
		Select(
			goqu.C("prayer_id"),
			goqu.COUNT("*").As("mark_count"),
			goqu.MAX(goqu.C("datetime_create")).As("last_marked_at"),
		).
		Where(goqu.C("user_profile_id").Eq(userID)).
		GroupBy(goqu.C("prayer_id"))
}

// FeedQuery translates a feed name and viewing user into a select dataset
// producing FeedPrayer rows. Unknown feed names are an error.
func FeedQuery(feed string, viewer models.UserProfile) (*goqu.SelectDataset, error) {
	base := initializers.DB.From("prayer").Select(feedColumns()...)

	switch feed {
	case FeedAll:
		return base.
			LeftJoin(globalMarks().As("marks"), goqu.On(goqu.Ex{"prayer.prayer_id": goqu.I("marks.prayer_id")})).
			Where(eligibleFilters(viewer)...).
			Order(goqu.I("prayer.datetime_create").Desc()), nil

	case FeedNewUnprayed:
		return base.
			LeftJoin(globalMarks().As("marks"), goqu.On(goqu.Ex{"prayer.prayer_id": goqu.I("marks.prayer_id")})).
			Where(eligibleFilters(viewer)...).
			Where(goqu.L("marks.prayer_id IS NULL")).
			Order(goqu.I("prayer.datetime_create").Desc()), nil

	case FeedMostPrayed:
		return base.
			Join(globalMarks().As("marks"), goqu.On(goqu.Ex{"prayer.prayer_id": goqu.I("marks.prayer_id")})).
			Where(eligibleFilters(viewer)...).
			Order(goqu.I("marks.mark_count").Desc()), nil

	case FeedMyPrayers:
		// Personally marked prayers regardless of archived/answered status,
		// most recently marked first. Flagged prayers stay hidden.
		return base.
			Join(personalMarks(viewer.User_Profile_ID).As("marks"), goqu.On(goqu.Ex{"prayer.prayer_id": goqu.I("marks.prayer_id")})).
			Where(goqu.I("prayer.flagged").IsFalse()).
			Order(goqu.I("marks.last_marked_at").Desc()), nil

	case FeedMyRequests:
		// Ownership view: the author sees their own prayers no matter what,
		// flagged included.
		return base.
			LeftJoin(globalMarks().As("marks"), goqu.On(goqu.Ex{"prayer.prayer_id": goqu.I("marks.prayer_id")})).
			Where(goqu.I("prayer.created_by").Eq(viewer.User_Profile_ID)).
			Order(goqu.I("prayer.datetime_create").Desc()), nil

	case FeedAnswered:
		return base.
			LeftJoin(globalMarks().As("marks"), goqu.On(goqu.Ex{"prayer.prayer_id": goqu.I("marks.prayer_id")})).
			Where(
				goqu.I("prayer.flagged").IsFalse(),
				hasCurrentTrueAttribute(models.AttrAnswered),
			).
			Order(goqu.I("prayer.datetime_create").Desc()), nil

	case FeedArchived:
		// A user's archived list is private to them.
		return base.
			LeftJoin(globalMarks().As("marks"), goqu.On(goqu.Ex{"prayer.prayer_id": goqu.I("marks.prayer_id")})).
			Where(
				hasCurrentTrueAttribute(models.AttrArchived),
				goqu.I("prayer.created_by").Eq(viewer.User_Profile_ID),
			).
			Order(goqu.I("prayer.datetime_create").Desc()), nil

	case FeedRecentActivity:
		return base.
			Join(globalMarks().As("marks"), goqu.On(goqu.Ex{"prayer.prayer_id": goqu.I("marks.prayer_id")})).
			Where(eligibleFilters(viewer)...).
			Where(goqu.L("marks.last_marked_at >= NOW() - INTERVAL '7 days'")).
			Order(goqu.I("marks.last_marked_at").Desc()), nil

	default:
		return nil, fmt.Errorf("unknown feed: %s", feed)
	}
}

// PartnerMatchQuery picks eligible prayers the candidate user has never
// marked, for pairing a request with a compatible stranger.
func PartnerMatchQuery(viewer models.UserProfile) *goqu.SelectDataset {
	return initializers.DB.From("prayer").Select(feedColumns()...).
		LeftJoin(globalMarks().As("marks"), goqu.On(goqu.Ex{"prayer.prayer_id": goqu.I("marks.prayer_id")})).
		Where(eligibleFilters(viewer)...).
		Where(goqu.L("prayer.prayer_id NOT IN (SELECT prayer_id FROM prayer_mark WHERE user_profile_id = ?)", viewer.User_Profile_ID)).
		Order(goqu.L("RANDOM()").Asc()).
		Limit(1)
}
