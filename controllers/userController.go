package controllers

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"

	"github.com/PrayerWall/initializers"
	"github.com/PrayerWall/models"
	"github.com/doug-martin/goqu/v9"
	"golang.org/x/crypto/bcrypt"
)

func Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

func UserLogin(c *gin.Context) {
	var login models.Login

	if err := c.ShouldBindJSON(&login); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var dbUser models.UserProfile
	_, err := initializers.DB.From("user_profile").Select("*").Where(goqu.C("username").Eq(login.Username)).ScanStruct(&dbUser)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	err = bcrypt.CompareHashAndPassword([]byte(dbUser.Password), []byte(login.Password))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid password"})
		return
	}

	role := "user"
	if dbUser.Admin {
		role = "admin"
	}

	generateToken := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":   dbUser.User_Profile_ID,
		"exp":  time.Now().Add(time.Hour * 24).Unix(),
		"role": role,
	})

	token, err := generateToken.SignedString([]byte(os.Getenv("SECRET")))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User logged in successfully.",
		"token":   token,
		"user":    dbUser,
	})
}

// PublicUserSignup creates an account from a valid invite code and records
// the invitation lineage on the new user row.
func PublicUserSignup(c *gin.Context) {
	var signup models.UserProfileSignup

	if err := c.ShouldBindJSON(&signup); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if signup.Username == "" || signup.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required."})
		return
	}

	if signup.Religious_Preference == "" {
		signup.Religious_Preference = models.PreferenceUnspecified
	}
	if !models.ValidPreference(signup.Religious_Preference) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid religious preference"})
		return
	}

	userCount, err := initializers.DB.From("user_profile").Select("username").Where(goqu.C("username").Eq(signup.Username)).Count()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if userCount > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username already exists."})
		return
	}

	var token models.InviteToken
	tokenFound, err := initializers.DB.From("invite_token").
		Where(
			goqu.C("token").Eq(signup.Invite_Code),
			goqu.C("used").IsFalse(),
			goqu.C("datetime_expires").Gt(goqu.L("NOW()")),
		).
		ScanStruct(&token)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify invite code", "details": err.Error()})
		return
	}
	if !tokenFound {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired invite code"})
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(signup.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	newUser := models.UserProfile{
		Username:             signup.Username,
		Password:             string(passwordHash),
		Email:                signup.Email,
		Display_Name:         signup.Display_Name,
		Religious_Preference: signup.Religious_Preference,
		Prayer_Style:         signup.Prayer_Style,
		Invited_By_User_ID:   &token.Created_By,
		Invite_Token_ID:      &token.Invite_Token_ID,
	}

	insert := initializers.DB.Insert("user_profile").Rows(newUser).Returning("user_profile_id")

	var newUserID int
	if _, err := insert.Executor().ScanVal(&newUserID); err != nil {
		log.Println(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	update := initializers.DB.Update("invite_token").
		Set(goqu.Record{"used": true, "used_by": newUserID}).
		Where(goqu.C("invite_token_id").Eq(token.Invite_Token_ID))
	if _, err := update.Executor().Exec(); err != nil {
		log.Printf("Failed to mark invite token %d used: %v", token.Invite_Token_ID, err)
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       "User created successfully.",
		"userProfileId": newUserID,
	})
}

// UserSignup is the admin-only variant; no invite code is consumed and no
// lineage is recorded.
func UserSignup(c *gin.Context) {
	admin := c.MustGet("admin").(bool)
	if !admin {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "must be logged in as an admin to create a user."})
		return
	}

	var signup models.UserProfileSignup
	if err := c.ShouldBindJSON(&signup); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if signup.Religious_Preference == "" {
		signup.Religious_Preference = models.PreferenceUnspecified
	}
	if !models.ValidPreference(signup.Religious_Preference) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid religious preference"})
		return
	}

	userCount, err := initializers.DB.From("user_profile").Select("username").Where(goqu.C("username").Eq(signup.Username)).Count()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if userCount > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username already exists."})
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(signup.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	newUser := models.UserProfile{
		Username:             signup.Username,
		Password:             string(passwordHash),
		Email:                signup.Email,
		Display_Name:         signup.Display_Name,
		Religious_Preference: signup.Religious_Preference,
		Prayer_Style:         signup.Prayer_Style,
	}

	insert := initializers.DB.Insert("user_profile").Rows(newUser).Executor()
	if _, err := insert.Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User created successfully."})
}

func GetUserProfile(c *gin.Context) {
	user, _ := c.Get("currentUser")

	c.JSON(http.StatusOK, gin.H{
		"user":  user,
		"admin": c.MustGet("admin"),
	})
}

// StorePushToken registers or refreshes a device push token for the
// authenticated user.
func StorePushToken(c *gin.Context) {
	userID := c.MustGet("currentUser").(models.UserProfile).User_Profile_ID

	var req models.PushTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	var existingCount int64
	_, err := initializers.DB.From("user_push_token").
		Select(goqu.COUNT("*")).
		Where(goqu.C("user_profile_id").Eq(userID), goqu.C("push_token").Eq(req.PushToken)).
		ScanVal(&existingCount)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check existing push token", "details": err.Error()})
		return
	}

	if existingCount > 0 {
		update := initializers.DB.Update("user_push_token").
			Set(goqu.Record{"platform": req.Platform, "datetime_update": goqu.L("NOW()")}).
			Where(goqu.C("user_profile_id").Eq(userID), goqu.C("push_token").Eq(req.PushToken))
		if _, err := update.Executor().Exec(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to refresh push token", "details": err.Error()})
			return
		}
	} else {
		tokenRow := models.PushToken{
			User_Profile_ID: userID,
			Push_Token:      req.PushToken,
			Platform:        req.Platform,
		}
		if _, err := initializers.DB.Insert("user_push_token").Rows(tokenRow).Executor().Exec(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store push token", "details": err.Error()})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Push token stored successfully"})
}
