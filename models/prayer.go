package models

import "time"

// Target audience values for prayer.target_audience
const (
	AudienceAll               = "all"
	AudienceChristiansOnly    = "christians_only"
	AudienceNonChristiansOnly = "non_christians_only"
)

type Prayer struct {
	Prayer_ID        int       `json:"prayerId" goqu:"skipinsert"`
	Created_By       int       `json:"createdBy"`
	Request_Text     string    `json:"requestText"`
	Generated_Prayer *string   `json:"generatedPrayer"`
	Project_Tag      *string   `json:"projectTag"`
	Flagged          bool      `json:"flagged" goqu:"skipinsert"`
	Target_Audience  string    `json:"targetAudience"`
	Datetime_Create  time.Time `json:"datetimeCreate" goqu:"skipinsert"`
}

type PrayerCreate struct {
	Request_Text     string  `json:"requestText"`
	Generated_Prayer *string `json:"generatedPrayer"`
	Project_Tag      *string `json:"projectTag"`
	Target_Audience  string  `json:"targetAudience"`
}

// FeedPrayer is a prayer row decorated with mark aggregates for feed responses.
type FeedPrayer struct {
	Prayer_ID        int        `json:"prayerId" db:"prayer_id"`
	Created_By       int        `json:"createdBy" db:"created_by"`
	Request_Text     string     `json:"requestText" db:"request_text"`
	Generated_Prayer *string    `json:"generatedPrayer" db:"generated_prayer"`
	Project_Tag      *string    `json:"projectTag" db:"project_tag"`
	Flagged          bool       `json:"flagged" db:"flagged"`
	Target_Audience  string     `json:"targetAudience" db:"target_audience"`
	Datetime_Create  time.Time  `json:"datetimeCreate" db:"datetime_create"`
	Mark_Count       int        `json:"markCount" db:"mark_count"`
	Last_Marked_At   *time.Time `json:"lastMarkedAt" db:"last_marked_at"`
}

// ValidAudience reports whether a is a recognized target audience value.
func ValidAudience(a string) bool {
	return a == AudienceAll || a == AudienceChristiansOnly || a == AudienceNonChristiansOnly
}
