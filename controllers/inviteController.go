package controllers

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/PrayerWall/initializers"
	"github.com/PrayerWall/models"
	"github.com/PrayerWall/services"
)

// CreateInviteToken issues a single-use invite code with a 7-day expiry.
// If the request names an email address, the code is mailed out too.
func CreateInviteToken(c *gin.Context) {
	currentUser := c.MustGet("currentUser").(models.UserProfile)

	var req models.InviteTokenCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	inviteToken := models.InviteToken{
		Token:            generateInviteCode(currentUser.User_Profile_ID),
		Created_By:       currentUser.User_Profile_ID,
		Datetime_Expires: time.Now().AddDate(0, 0, 7),
	}

	insert := initializers.DB.Insert("invite_token").Rows(inviteToken).Returning("token")

	var insertedToken string
	if _, err := insert.Executor().ScanVal(&insertedToken); err != nil {
		log.Println(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate invite code", "details": err.Error()})
		return
	}

	if req.Email != nil && *req.Email != "" {
		go func(email string, inviterName string, code string) {
			service := services.GetEmailService()
			if service == nil {
				return
			}
			if err := service.SendInviteEmail(email, inviterName, code); err != nil {
				log.Printf("Failed to email invite code to %s: %v", email, err)
			}
		}(*req.Email, currentUser.Display_Name, insertedToken)
	}

	c.JSON(http.StatusOK, gin.H{"inviteCode": insertedToken, "expiresAt": inviteToken.Datetime_Expires})
}

// loadInviteTree rebuilds the invitation forest from the flat user table.
func loadInviteTree() (*services.InviteTree, error) {
	var users []services.InviteNode
	err := initializers.DB.From("user_profile").
		Select("user_profile_id", "display_name", "invited_by_user_id", "datetime_create").
		ScanStructs(&users)
	if err != nil {
		return nil, err
	}
	return services.NewInviteTree(users), nil
}

func GetInviteStats(c *gin.Context) {
	tree, err := loadInviteTree()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load invite tree", "details": err.Error()})
		return
	}

	var tokens []models.InviteToken
	err = initializers.DB.From("invite_token").
		Select("invite_token_id", "token", "created_by", "used", "used_by", "datetime_expires", "datetime_create").
		ScanStructs(&tokens)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load invite tokens", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, tree.Stats(tokens, time.Now()))
}

// GetUserDescendants lists everyone a user transitively invited. Unknown
// users yield an empty list, not an error.
func GetUserDescendants(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("user_profile_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID", "details": err.Error()})
		return
	}

	tree, err := loadInviteTree()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load invite tree", "details": err.Error()})
		return
	}

	descendants := tree.Descendants(userID)
	if descendants == nil {
		descendants = []services.InviteNode{}
	}

	c.JSON(http.StatusOK, gin.H{
		"userProfileId": userID,
		"descendants":   descendants,
	})
}

// GetUserInvitePath returns the inviter chain from the root down to the
// user, root first.
func GetUserInvitePath(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("user_profile_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID", "details": err.Error()})
		return
	}

	tree, err := loadInviteTree()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load invite tree", "details": err.Error()})
		return
	}

	path := tree.InvitePath(userID)
	if path == nil {
		path = []services.InviteNode{}
	}

	c.JSON(http.StatusOK, gin.H{
		"userProfileId": userID,
		"path":          path,
	})
}

func generateInviteCode(id int) string {
	randomBytes := make([]byte, 4)
	_, err := rand.Read(randomBytes)
	if err != nil {
		panic(err)
	}

	randomString := hex.EncodeToString(randomBytes)

	return strings.ToUpper(fmt.Sprintf("%04d-%s", id, randomString))
}
