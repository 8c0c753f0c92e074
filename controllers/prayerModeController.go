package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/PrayerWall/initializers"
	"github.com/PrayerWall/models"
	"github.com/PrayerWall/services"
	"github.com/doug-martin/goqu/v9"
)

// GetPrayerMode returns the ranked queue for focused praying plus the
// prayer at the caller's position. Out-of-range positions reset to the
// front; an empty queue is its own state, not an error.
func GetPrayerMode(c *gin.Context) {
	user := c.MustGet("currentUser").(models.UserProfile)

	position := 0
	if raw := c.Query("position"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid position", "details": err.Error()})
			return
		}
		position = parsed
	}

	queue, err := services.PrayerQueue(user, time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build prayer queue", "details": err.Error()})
		return
	}

	if len(queue) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"message": "No prayers need praying for right now.",
			"queue":   []int{},
		})
		return
	}

	position = services.ClampPosition(position, len(queue))

	prayer, found, err := fetchPrayer(queue[position])
	if err != nil || !found {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch prayer at queue position"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"queue":    queue,
		"position": position,
		"prayer":   prayer,
		"age":      services.FormatTimeAgo(prayer.Datetime_Create, time.Now()),
	})
}

// MarkPrayer records one "I prayed for this" action. Repeat marks are
// first-class; every press is a new row.
func MarkPrayer(c *gin.Context) {
	user := c.MustGet("currentUser").(models.UserProfile)

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

	mark := models.PrayerMark{
		User_Profile_ID: user.User_Profile_ID,
		Prayer_ID:       prayerID,
	}
	if _, err := initializers.DB.Insert("prayer_mark").Rows(mark).Executor().Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record prayer mark", "details": err.Error()})
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

	if prayer.Created_By != user.User_Profile_ID {
		go services.NotifyAuthorOfMark(prayer.Created_By, prayerID, user.Display_Name)
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Prayer mark recorded",
		"markCount": markCount,
	})
}

// SkipPrayer records one "skip" action from prayer mode.
func SkipPrayer(c *gin.Context) {
	user := c.MustGet("currentUser").(models.UserProfile)

	prayerID, err := strconv.Atoi(c.Param("prayer_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid prayer ID", "details": err.Error()})
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

	skip := models.PrayerSkip{
		User_Profile_ID: user.User_Profile_ID,
		Prayer_ID:       prayerID,
	}
	if _, err := initializers.DB.Insert("prayer_skip").Rows(skip).Executor().Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record prayer skip", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Prayer skipped"})
}
