package models

import "time"

// Religious preference values for user_profile.religious_preference
const (
	PreferenceChristian    = "christian"
	PreferenceNonChristian = "non_christian"
	PreferenceUnspecified  = "unspecified"
)

type UserProfile struct {
	User_Profile_ID      int       `json:"userProfileId" goqu:"skipinsert"`
	Username             string    `json:"username"`
	Password             string    `json:"-"`
	Email                string    `json:"email"`
	Display_Name         string    `json:"displayName"`
	Religious_Preference string    `json:"religiousPreference"`
	Prayer_Style         *string   `json:"prayerStyle"`
	Invited_By_User_ID   *int      `json:"invitedByUserId"`
	Invite_Token_ID      *int      `json:"inviteTokenId"`
	Admin                bool      `json:"admin" goqu:"skipinsert"`
	Datetime_Create      time.Time `json:"datetimeCreate" goqu:"skipinsert"`
	Datetime_Update      time.Time `json:"datetimeUpdate" goqu:"skipinsert"`
}

type UserProfileSignup struct {
	Username             string  `json:"username"`
	Password             string  `json:"password"`
	Email                string  `json:"email"`
	Display_Name         string  `json:"displayName"`
	Religious_Preference string  `json:"religiousPreference"`
	Prayer_Style         *string `json:"prayerStyle"`
	Invite_Code          string  `json:"inviteCode"`
}

type Login struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ValidPreference reports whether p is a recognized religious preference value.
func ValidPreference(p string) bool {
	return p == PreferenceChristian || p == PreferenceNonChristian || p == PreferenceUnspecified
}
