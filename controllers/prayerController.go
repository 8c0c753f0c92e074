package controllers

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/PrayerWall/initializers"
	"github.com/PrayerWall/models"
	"github.com/PrayerWall/services"
	"github.com/doug-martin/goqu/v9"
)

func fetchPrayer(prayerID int) (models.Prayer, bool, error) {
	var prayer models.Prayer
	found, err := initializers.DB.From("prayer").
		Where(goqu.C("prayer_id").Eq(prayerID)).
		ScanStruct(&prayer)
	return prayer, found, err
}

func audienceCompatible(prayer models.Prayer, viewer models.UserProfile) bool {
	switch prayer.Target_Audience {
	case models.AudienceChristiansOnly:
		return viewer.Religious_Preference == models.PreferenceChristian
	case models.AudienceNonChristiansOnly:
		return viewer.Religious_Preference == models.PreferenceNonChristian
	default:
		return true
	}
}

func CreatePrayer(c *gin.Context) {
	user := c.MustGet("currentUser").(models.UserProfile)

	var newPrayer models.PrayerCreate
	if err := c.BindJSON(&newPrayer); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if newPrayer.Request_Text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Request text is required"})
		return
	}

	if newPrayer.Target_Audience == "" {
		newPrayer.Target_Audience = models.AudienceAll
	}
	if !models.ValidAudience(newPrayer.Target_Audience) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid target audience"})
		return
	}

	prayer := models.Prayer{
		Created_By:       user.User_Profile_ID,
		Request_Text:     newPrayer.Request_Text,
		Generated_Prayer: newPrayer.Generated_Prayer,
		Project_Tag:      newPrayer.Project_Tag,
		Target_Audience:  newPrayer.Target_Audience,
	}

	insert := initializers.DB.Insert("prayer").Rows(prayer).Returning("prayer_id")

	var insertedPrayerID int
	if _, err := insert.Executor().ScanVal(&insertedPrayerID); err != nil {
		log.Println(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create prayer record", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Prayer created successfully.",
		"prayerId": insertedPrayerID,
	})
}

func GetPrayer(c *gin.Context) {
	user := c.MustGet("currentUser").(models.UserProfile)
	admin := c.MustGet("admin").(bool)

	prayerID, err := strconv.Atoi(c.Param("prayer_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid prayer ID", "details": err.Error()})
		return
	}

	prayer, found, err := fetchPrayer(prayerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch prayer record", "details": err.Error()})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Prayer record not found"})
		return
	}

	isAuthor := prayer.Created_By == user.User_Profile_ID
	if !admin && !isAuthor {
		if prayer.Flagged || !audienceCompatible(prayer, user) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "You are not authorized to view this prayer record"})
			return
		}
	}

	attributes, err := currentAttributes(prayerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch prayer attributes", "details": err.Error()})
		return
	}

	var markCount int64
	_, err = initializers.DB.From("prayer_mark").
		Select(goqu.COUNT("*")).
		Where(goqu.C("prayer_id").Eq(prayerID)).
		ScanVal(&markCount)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count prayer marks", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"prayer":     prayer,
		"attributes": attributes,
		"markCount":  markCount,
		"age":        services.FormatTimeAgo(prayer.Datetime_Create, time.Now()),
	})
}

// GetPrayers is the admin moderation listing: every prayer, flagged
// included.
func GetPrayers(c *gin.Context) {
	var prayers []models.Prayer
	err := initializers.DB.From("prayer").
		Order(goqu.I("prayer.datetime_create").Desc()).
		ScanStructs(&prayers)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch prayer records", "details": err.Error()})
		return
	}

	if len(prayers) == 0 {
		c.JSON(http.StatusOK, gin.H{"message": "No prayer records found."})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Prayer records retrieved successfully.",
		"prayers": prayers,
	})
}

func UpdatePrayer(c *gin.Context) {
	userID := c.MustGet("currentUser").(models.UserProfile).User_Profile_ID
	admin := c.MustGet("admin").(bool)

	prayerID, err := strconv.Atoi(c.Param("prayer_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid prayer ID", "details": err.Error()})
		return
	}

	prayer, found, err := fetchPrayer(prayerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch prayer record", "details": err.Error()})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Prayer record not found"})
		return
	}

	if !admin && prayer.Created_By != userID {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Only the prayer author can edit"})
		return
	}

	var updated models.PrayerCreate
	if err := c.BindJSON(&updated); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	// retain existing values for fields the caller omitted
	if updated.Request_Text == "" {
		updated.Request_Text = prayer.Request_Text
	}
	if updated.Generated_Prayer == nil {
		updated.Generated_Prayer = prayer.Generated_Prayer
	}
	if updated.Project_Tag == nil {
		updated.Project_Tag = prayer.Project_Tag
	}
	if updated.Target_Audience == "" {
		updated.Target_Audience = prayer.Target_Audience
	}
	if !models.ValidAudience(updated.Target_Audience) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid target audience"})
		return
	}

	updateQuery := initializers.DB.Update("prayer").
		Set(goqu.Record{
			"request_text":     updated.Request_Text,
			"generated_prayer": updated.Generated_Prayer,
			"project_tag":      updated.Project_Tag,
			"target_audience":  updated.Target_Audience,
		}).
		Where(goqu.C("prayer_id").Eq(prayerID))

	result, err := updateQuery.Executor().Exec()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update prayer record", "details": err.Error()})
		return
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No rows were updated"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Prayer record updated successfully"})
}

// FlagPrayer toggles the moderation flag. The flag is a first-class column,
// separate from the attribute system, and hides the prayer from every feed
// but the author's own.
func FlagPrayer(c *gin.Context) {
	prayerID, err := strconv.Atoi(c.Param("prayer_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid prayer ID", "details": err.Error()})
		return
	}

	var body struct {
		Flagged *bool `json:"flagged" binding:"required"`
	}
	if err := c.BindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	_, found, err := fetchPrayer(prayerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch prayer record", "details": err.Error()})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Prayer record not found"})
		return
	}

	update := initializers.DB.Update("prayer").
		Set(goqu.Record{"flagged": *body.Flagged}).
		Where(goqu.C("prayer_id").Eq(prayerID))
	if _, err := update.Executor().Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update prayer flag", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Prayer flag updated successfully"})
}

// mutateAttributes runs fn against the attribute store inside a single
// transaction, enforcing the author-or-admin rule first.
func mutateAttributes(c *gin.Context, fn func(tx *goqu.TxDatabase, prayerID int, actor services.Actor) error) {
	user := c.MustGet("currentUser").(models.UserProfile)
	admin := c.MustGet("admin").(bool)

	prayerID, err := strconv.Atoi(c.Param("prayer_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid prayer ID", "details": err.Error()})
		return
	}

	prayer, found, err := fetchPrayer(prayerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch prayer record", "details": err.Error()})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Prayer record not found"})
		return
	}

	if !admin && prayer.Created_By != user.User_Profile_ID {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Only the prayer author can change its status"})
		return
	}

	tx, err := initializers.DB.Begin()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open database session", "details": err.Error()})
		return
	}

	if err := fn(tx, prayerID, services.HumanActor(user.User_Profile_ID)); err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update prayer status", "details": err.Error()})
		return
	}

	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit prayer status change", "details": err.Error()})
		return
	}

	c.Set("mutatedPrayer", prayer)
	c.JSON(http.StatusOK, gin.H{"message": "Prayer status updated successfully"})
}

func strPtr(s string) *string {
	return &s
}

// ArchivePrayer sets archived=true. Other attributes (answered, testimony)
// are left untouched; statuses are independent and combinable.
func ArchivePrayer(c *gin.Context) {
	mutateAttributes(c, func(tx *goqu.TxDatabase, prayerID int, actor services.Actor) error {
		return services.SetAttribute(tx, prayerID, models.AttrArchived, strPtr("true"), actor)
	})
}

// RestorePrayer removes the archived attribute. A restore on a prayer that
// was never archived is a silent no-op.
func RestorePrayer(c *gin.Context) {
	mutateAttributes(c, func(tx *goqu.TxDatabase, prayerID int, actor services.Actor) error {
		return services.RemoveAttribute(tx, prayerID, models.AttrArchived, actor)
	})
}

type answerRequest struct {
	Answer_Date *string `json:"answerDate"`
	Testimony   *string `json:"testimony"`
}

// AnswerPrayer marks a prayer answered, recording the answer date and an
// optional testimony, then emails everyone who prayed for it.
func AnswerPrayer(c *gin.Context) {
	var body answerRequest
	if err := c.BindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	answerDate := time.Now().Format("2006-01-02")
	if body.Answer_Date != nil {
		answerDate = *body.Answer_Date
	}

	mutateAttributes(c, func(tx *goqu.TxDatabase, prayerID int, actor services.Actor) error {
		if err := services.SetAttribute(tx, prayerID, models.AttrAnswered, strPtr("true"), actor); err != nil {
			return err
		}
		if err := services.SetAttribute(tx, prayerID, models.AttrAnswerDate, strPtr(answerDate), actor); err != nil {
			return err
		}
		if body.Testimony != nil {
			return services.SetAttribute(tx, prayerID, models.AttrAnswerTestimony, body.Testimony, actor)
		}
		return nil
	})

	if prayer, ok := c.Get("mutatedPrayer"); ok {
		p := prayer.(models.Prayer)
		testimony := ""
		if body.Testimony != nil {
			testimony = *body.Testimony
		}
		go services.NotifyMarkersOfAnswer(p.Prayer_ID, p.Request_Text, testimony)
	}
}

type attributeRequest struct {
	Name  string  `json:"name" binding:"required"`
	Value *string `json:"value"`
}

// SetPrayerAttribute is the generic attribute endpoint; the named status
// endpoints above are conveniences over the same store.
func SetPrayerAttribute(c *gin.Context) {
	var body attributeRequest
	if err := c.BindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	mutateAttributes(c, func(tx *goqu.TxDatabase, prayerID int, actor services.Actor) error {
		return services.SetAttribute(tx, prayerID, body.Name, body.Value, actor)
	})
}

func RemovePrayerAttribute(c *gin.Context) {
	name := c.Param("attribute_name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Attribute name is required"})
		return
	}

	mutateAttributes(c, func(tx *goqu.TxDatabase, prayerID int, actor services.Actor) error {
		return services.RemoveAttribute(tx, prayerID, name, actor)
	})
}

// currentAttributes snapshots the current value of every attribute on a
// prayer, newest row winning per name.
func currentAttributes(prayerID int) (map[string]string, error) {
	var rows []models.PrayerAttribute
	err := initializers.DB.From("prayer_attribute").
		Where(goqu.C("prayer_id").Eq(prayerID)).
		Order(goqu.C("datetime_create").Asc(), goqu.C("prayer_attribute_id").Asc()).
		ScanStructs(&rows)
	if err != nil {
		return nil, err
	}

	attributes := make(map[string]string)
	for _, row := range rows {
		attributes[row.Attribute_Name] = row.Attribute_Value
	}
	return attributes, nil
}

func GetPrayerAttributes(c *gin.Context) {
	prayerID, err := strconv.Atoi(c.Param("prayer_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid prayer ID", "details": err.Error()})
		return
	}

	attributes, err := currentAttributes(prayerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch prayer attributes", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"attributes": attributes})
}

// ActivityEntry is one row of a prayer's audit trail.
type ActivityEntry struct {
	Activity_ID     int       `json:"activityId" db:"prayer_activity_log_id"`
	Action          string    `json:"action" db:"action"`
	Actor_Name      string    `json:"actorName" db:"actor_name"`
	Old_Value       *string   `json:"oldValue" db:"old_value"`
	New_Value       *string   `json:"newValue" db:"new_value"`
	DateTime_Create time.Time `json:"datetimeCreate" db:"datetime_create"`
}

// GetPrayerActivity returns the chronological audit trail of attribute
// mutations. System-initiated entries show "System" as the actor.
func GetPrayerActivity(c *gin.Context) {
	userID := c.MustGet("currentUser").(models.UserProfile).User_Profile_ID
	admin := c.MustGet("admin").(bool)

	prayerID, err := strconv.Atoi(c.Param("prayer_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid prayer ID", "details": err.Error()})
		return
	}

	prayer, found, err := fetchPrayer(prayerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch prayer record", "details": err.Error()})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Prayer record not found"})
		return
	}

	if !admin && prayer.Created_By != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the prayer author can view its activity"})
		return
	}

	var activity []ActivityEntry
	err = initializers.DB.From("prayer_activity_log").
		Select(
			goqu.I("prayer_activity_log.prayer_activity_log_id"),
			goqu.I("prayer_activity_log.action"),
			goqu.L("COALESCE(user_profile.display_name, 'System')").As("actor_name"),
			goqu.I("prayer_activity_log.old_value"),
			goqu.I("prayer_activity_log.new_value"),
			goqu.I("prayer_activity_log.datetime_create"),
		).
		LeftJoin(
			goqu.T("user_profile"),
			goqu.On(goqu.I("prayer_activity_log.user_profile_id").Eq(goqu.I("user_profile.user_profile_id"))),
		).
		Where(goqu.I("prayer_activity_log.prayer_id").Eq(prayerID)).
		Order(goqu.I("prayer_activity_log.datetime_create").Asc()).
		ScanStructs(&activity)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch prayer activity", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"activity": activity})
}
