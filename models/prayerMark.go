package models

import "time"

// PrayerMark records one "I prayed for this" action. Repeat marks by the
// same user on the same prayer are first-class; one row per action.
type PrayerMark struct {
	Prayer_Mark_ID  int       `json:"prayerMarkId" goqu:"skipinsert"`
	User_Profile_ID int       `json:"userProfileId"`
	Prayer_ID       int       `json:"prayerId"`
	Datetime_Create time.Time `json:"datetimeCreate" goqu:"skipinsert"`
}
