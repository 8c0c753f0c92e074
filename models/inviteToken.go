package models

import "time"

type InviteToken struct {
	Invite_Token_ID  int       `json:"inviteTokenId" goqu:"skipinsert"`
	Token            string    `json:"token"`
	Created_By       int       `json:"createdBy"`
	Used             bool      `json:"used" goqu:"skipinsert"`
	Used_By          *int      `json:"usedBy" goqu:"skipinsert"`
	Datetime_Expires time.Time `json:"datetimeExpires"`
	Datetime_Create  time.Time `json:"datetimeCreate" goqu:"skipinsert"`
}

type InviteTokenCreate struct {
	Email *string `json:"email"`
}
