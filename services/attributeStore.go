package services

import (
	"errors"

	"github.com/doug-martin/goqu/v9"

	"github.com/PrayerWall/initializers"
	"github.com/PrayerWall/models"
)

// ErrNoSession is returned when an attribute mutation is attempted outside
// an open database transaction.
var ErrNoSession = errors.New("attribute mutation requires an active database session")

// Actor identifies who initiated an attribute mutation. System-initiated
// mutations are audit-logged with a null user id instead of being skipped,
// so the activity log stays complete.
type Actor struct {
	userID int
	system bool
}

func HumanActor(userID int) Actor {
	return Actor{userID: userID}
}

func SystemActor() Actor {
	return Actor{system: true}
}

// AuditUserID returns the user id to record in the activity log, or nil for
// the system actor.
func (a Actor) AuditUserID() *int {
	if a.system {
		return nil
	}
	id := a.userID
	return &id
}

// currentAttributeRow fetches the most recent row for (prayer, name).
// "Most recent" is creation timestamp, with the autoincrement id as the
// tiebreak when two rows share a timestamp.
func currentAttributeRow(db *goqu.TxDatabase, prayerID int, name string) (*models.PrayerAttribute, error) {
	query := initializers.DB.From("prayer_attribute")
	if db != nil {
		query = db.From("prayer_attribute")
	}

	var row models.PrayerAttribute
	found, err := query.
		Where(goqu.C("prayer_id").Eq(prayerID), goqu.C("attribute_name").Eq(name)).
		Order(goqu.C("datetime_create").Desc(), goqu.C("prayer_attribute_id").Desc()).
		Limit(1).
		ScanStruct(&row)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &row, nil
}

// GetAttribute returns the current value for (prayer, name), or nil if no
// row exists.
func GetAttribute(prayerID int, name string) (*string, error) {
	row, err := currentAttributeRow(nil, prayerID, name)
	if err != nil || row == nil {
		return nil, err
	}
	value := row.Attribute_Value
	return &value, nil
}

// HasAttribute reports whether the current value for (prayer, name) is the
// literal string "true".
func HasAttribute(prayerID int, name string) (bool, error) {
	value, err := GetAttribute(prayerID, name)
	if err != nil {
		return false, err
	}
	return value != nil && *value == "true", nil
}

// SetAttribute appends a new attribute row and one matching activity-log row
// within tx. The prior row, if any, is left in place; the new row becomes
// the current value. A nil value is stored as the literal string "None".
func SetAttribute(tx *goqu.TxDatabase, prayerID int, name string, value *string, actor Actor) error {
	if tx == nil {
		return ErrNoSession
	}

	stored := "None"
	if value != nil {
		stored = *value
	}

	var oldValue *string
	prior, err := currentAttributeRow(tx, prayerID, name)
	if err != nil {
		return err
	}
	if prior != nil {
		v := prior.Attribute_Value
		oldValue = &v
	}

	attribute := models.PrayerAttribute{
		Prayer_ID:       prayerID,
		Attribute_Name:  name,
		Attribute_Value: stored,
		Created_By:      actor.AuditUserID(),
	}
	if _, err := tx.Insert("prayer_attribute").Rows(attribute).Executor().Exec(); err != nil {
		return err
	}

	newValue := stored
	entry := models.PrayerActivityLog{
		Prayer_ID:       prayerID,
		User_Profile_ID: actor.AuditUserID(),
		Action:          models.ActionSetPrefix + name,
		Old_Value:       oldValue,
		New_Value:       &newValue,
	}
	_, err = tx.Insert("prayer_activity_log").Rows(entry).Executor().Exec()
	return err
}

// RemoveAttribute deletes all rows for (prayer, name) within tx and logs a
// single remove entry with the removed current value. Removing an attribute
// that does not exist is a no-op with no audit entry.
func RemoveAttribute(tx *goqu.TxDatabase, prayerID int, name string, actor Actor) error {
	if tx == nil {
		return ErrNoSession
	}

	current, err := currentAttributeRow(tx, prayerID, name)
	if err != nil {
		return err
	}
	if current == nil {
		return nil
	}

	_, err = tx.Delete("prayer_attribute").
		Where(goqu.C("prayer_id").Eq(prayerID), goqu.C("attribute_name").Eq(name)).
		Executor().Exec()
	if err != nil {
		return err
	}

	oldValue := current.Attribute_Value
	entry := models.PrayerActivityLog{
		Prayer_ID:       prayerID,
		User_Profile_ID: actor.AuditUserID(),
		Action:          models.ActionRemovePrefix + name,
		Old_Value:       &oldValue,
		New_Value:       nil,
	}
	_, err = tx.Insert("prayer_activity_log").Rows(entry).Executor().Exec()
	return err
}

// Convenience accessors. These hold no state of their own; each is a direct
// derivation of GetAttribute/HasAttribute.

func IsArchived(prayerID int) (bool, error) {
	return HasAttribute(prayerID, models.AttrArchived)
}

func IsAnswered(prayerID int) (bool, error) {
	return HasAttribute(prayerID, models.AttrAnswered)
}

func AnswerDate(prayerID int) (*string, error) {
	return GetAttribute(prayerID, models.AttrAnswerDate)
}

func AnswerTestimony(prayerID int) (*string, error) {
	return GetAttribute(prayerID, models.AttrAnswerTestimony)
}

func IsFlaggedAttr(prayerID int) (bool, error) {
	return HasAttribute(prayerID, models.AttrFlagged)
}
