package models

import "time"

// PrayerSkip records one "skip" action in prayer mode. Multiple skips per
// user per prayer are allowed.
type PrayerSkip struct {
	Prayer_Skip_ID  int       `json:"prayerSkipId" goqu:"skipinsert"`
	User_Profile_ID int       `json:"userProfileId"`
	Prayer_ID       int       `json:"prayerId"`
	Datetime_Create time.Time `json:"datetimeCreate" goqu:"skipinsert"`
}
