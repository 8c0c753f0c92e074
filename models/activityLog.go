package models

import "time"

// Activity log action prefixes. A set of attribute "archived" records
// action "set_archived"; a removal records "remove_archived".
const (
	ActionSetPrefix    = "set_"
	ActionRemovePrefix = "remove_"
)

// PrayerActivityLog is an append-only audit row. Rows are never updated or
// deleted, even when the prayer or user they reference is; user_profile_id
// is null for system-initiated mutations.
type PrayerActivityLog struct {
	Prayer_Activity_Log_ID int       `json:"prayerActivityLogId" goqu:"skipinsert"`
	Prayer_ID              int       `json:"prayerId"`
	User_Profile_ID        *int      `json:"userProfileId"`
	Action                 string    `json:"action"`
	Old_Value              *string   `json:"oldValue"`
	New_Value              *string   `json:"newValue"`
	Datetime_Create        time.Time `json:"datetimeCreate" goqu:"skipinsert"`
}
