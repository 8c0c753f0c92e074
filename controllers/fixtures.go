package controllers

import (
	"time"

	"github.com/PrayerWall/models"
	"golang.org/x/crypto/bcrypt"
)

// Test fixture data for use in tests

// MockUser creates a sample user profile for testing
func MockUser() models.UserProfile {
	return models.UserProfile{
		User_Profile_ID:      1,
		Username:             "testuser",
		Email:                "test@example.com",
		Display_Name:         "Test User",
		Religious_Preference: models.PreferenceChristian,
		Admin:                false,
		Datetime_Create:      time.Now(),
		Datetime_Update:      time.Now(),
	}
}

// MockUserWithPassword creates a sample user with a bcrypt hashed password
// Password is "password123" - use this in tests
func MockUserWithPassword() models.UserProfile {
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	user := MockUser()
	user.Password = string(hashedPassword)
	return user
}

// MockUnspecifiedUser creates a user with no stated religious preference
func MockUnspecifiedUser() models.UserProfile {
	return models.UserProfile{
		User_Profile_ID:      3,
		Username:             "quietuser",
		Email:                "quiet@example.com",
		Display_Name:         "Quiet User",
		Religious_Preference: models.PreferenceUnspecified,
		Admin:                false,
		Datetime_Create:      time.Now(),
		Datetime_Update:      time.Now(),
	}
}

// MockAdminUser creates a sample admin user for testing
func MockAdminUser() models.UserProfile {
	return models.UserProfile{
		User_Profile_ID:      2,
		Username:             "adminuser",
		Email:                "admin@example.com",
		Display_Name:         "Admin User",
		Religious_Preference: models.PreferenceUnspecified,
		Admin:                true,
		Datetime_Create:      time.Now(),
		Datetime_Update:      time.Now(),
	}
}

// MockPrayer creates a sample prayer authored by MockUser
func MockPrayer() models.Prayer {
	return models.Prayer{
		Prayer_ID:       1,
		Created_By:      1,
		Request_Text:    "Please pray for my family",
		Target_Audience: models.AudienceAll,
		Datetime_Create: time.Now(),
	}
}
