package models

import "time"

// Well-known attribute names. The attribute store accepts arbitrary names;
// these are the ones the application itself reads back.
const (
	AttrArchived        = "archived"
	AttrAnswered        = "answered"
	AttrAnswerDate      = "answer_date"
	AttrAnswerTestimony = "answer_testimony"
	AttrFlagged         = "flagged"
)

// PrayerAttribute is one append-only fact row. The current value of an
// attribute is the most recent row for the (prayer_id, attribute_name) pair;
// duplicates are legal and expected.
type PrayerAttribute struct {
	Prayer_Attribute_ID int       `json:"prayerAttributeId" goqu:"skipinsert"`
	Prayer_ID           int       `json:"prayerId"`
	Attribute_Name      string    `json:"attributeName"`
	Attribute_Value     string    `json:"attributeValue"`
	Datetime_Create     time.Time `json:"datetimeCreate" goqu:"skipinsert"`
	Created_By          *int      `json:"createdBy"`
}
