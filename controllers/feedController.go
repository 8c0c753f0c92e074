package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/PrayerWall/models"
	"github.com/PrayerWall/services"
)

// GetFeed serves the named prayer feeds. The feed engine decides both the
// predicate set and the ordering; this handler only runs the query.
func GetFeed(c *gin.Context) {
	user := c.MustGet("currentUser").(models.UserProfile)

	feed := c.Param("feed")
	query, err := services.FeedQuery(feed, user)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var prayers []models.FeedPrayer
	if err := query.ScanStructs(&prayers); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch feed", "details": err.Error()})
		return
	}

	if len(prayers) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"message": "No prayers in this feed.",
			"feed":    feed,
			"prayers": []models.FeedPrayer{},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"feed":    feed,
		"prayers": prayers,
	})
}

// GetPartnerMatch assigns the viewer one compatible prayer they have never
// marked, for the "pray for a stranger" pairing.
func GetPartnerMatch(c *gin.Context) {
	user := c.MustGet("currentUser").(models.UserProfile)

	var prayers []models.FeedPrayer
	if err := services.PartnerMatchQuery(user).ScanStructs(&prayers); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to find a prayer partner match", "details": err.Error()})
		return
	}

	if len(prayers) == 0 {
		c.JSON(http.StatusOK, gin.H{"message": "No unprayed requests are available for you right now."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"prayer": prayers[0]})
}
