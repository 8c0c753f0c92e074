package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/PrayerWall/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func userProfileColumns() []string {
	return []string{
		"user_profile_id", "username", "password", "email", "display_name",
		"religious_preference", "prayer_style", "invited_by_user_id",
		"invite_token_id", "admin", "datetime_create", "datetime_update",
	}
}

func mockUserRow(user models.UserProfile) *sqlmock.Rows {
	return sqlmock.NewRows(userProfileColumns()).AddRow(
		user.User_Profile_ID, user.Username, user.Password, user.Email,
		user.Display_Name, user.Religious_Preference, nil, nil, nil,
		user.Admin, user.Datetime_Create, user.Datetime_Update,
	)
}

// TestPing tests the health check endpoint
func TestPing(t *testing.T) {
	c, w := SetupTestContext()

	Ping(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "pong")
}

// TestUserLogin tests login with password verification and JWT issuance
func TestUserLogin(t *testing.T) {
	os.Setenv("SECRET", "test-secret")
	defer os.Unsetenv("SECRET")

	tests := []struct {
		name           string
		body           string
		mockUser       models.UserProfile
		expectedStatus int
		expectToken    bool
	}{
		{
			name:           "successful login",
			body:           `{"username": "testuser", "password": "password123"}`,
			mockUser:       MockUserWithPassword(),
			expectedStatus: http.StatusOK,
			expectToken:    true,
		},
		{
			name:           "wrong password",
			body:           `{"username": "testuser", "password": "wrongpassword"}`,
			mockUser:       MockUserWithPassword(),
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, mock, cleanup := SetupTestDB(t)
			defer cleanup()

			mock.ExpectQuery("SELECT").WillReturnRows(mockUserRow(tt.mockUser))

			c, w := SetupTestContext()
			c.Request = httptest.NewRequest("POST", "/login", bytes.NewBufferString(tt.body))

			UserLogin(c)

			assert.Equal(t, tt.expectedStatus, w.Code)

			var response map[string]interface{}
			err := json.Unmarshal(w.Body.Bytes(), &response)
			require.NoError(t, err)

			if tt.expectToken {
				assert.NotEmpty(t, response["token"])
				assert.NotNil(t, response["user"])
			} else {
				assert.NotNil(t, response["error"])
			}
		})
	}
}

// TestPublicUserSignup tests invite-gated account creation
func TestPublicUserSignup(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		usernameCount  int64
		tokenRows      *sqlmock.Rows
		mockInsert     bool
		expectedStatus int
		expectError    bool
	}{
		{
			name:          "successful signup with valid invite",
			body:          `{"username": "newuser", "password": "secret123", "email": "new@example.com", "displayName": "New User", "religiousPreference": "christian", "inviteCode": "0001-ABCD1234"}`,
			usernameCount: 0,
			tokenRows: sqlmock.NewRows(inviteTokenColumns()).
				AddRow(10, "0001-ABCD1234", 1, false, nil, time.Now().AddDate(0, 0, 5), time.Now()),
			mockInsert:     true,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "invalid invite code",
			body:           `{"username": "newuser", "password": "secret123", "inviteCode": "0001-EXPIRED0"}`,
			usernameCount:  0,
			tokenRows:      sqlmock.NewRows(inviteTokenColumns()),
			expectedStatus: http.StatusBadRequest,
			expectError:    true,
		},
		{
			name:           "username taken",
			body:           `{"username": "testuser", "password": "secret123", "inviteCode": "0001-ABCD1234"}`,
			usernameCount:  1,
			expectedStatus: http.StatusBadRequest,
			expectError:    true,
		},
		{
			name:           "missing credentials",
			body:           `{"inviteCode": "0001-ABCD1234"}`,
			expectedStatus: http.StatusBadRequest,
			expectError:    true,
		},
		{
			name:           "invalid religious preference",
			body:           `{"username": "newuser", "password": "secret123", "religiousPreference": "agnostic", "inviteCode": "0001-ABCD1234"}`,
			expectedStatus: http.StatusBadRequest,
			expectError:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, mock, cleanup := SetupTestDB(t)
			defer cleanup()

			var signup models.UserProfileSignup
			_ = json.Unmarshal([]byte(tt.body), &signup)

			if signup.Username != "" && signup.Password != "" &&
				(signup.Religious_Preference == "" || models.ValidPreference(signup.Religious_Preference)) {
				mock.ExpectQuery("SELECT COUNT").WillReturnRows(
					sqlmock.NewRows([]string{"count"}).AddRow(tt.usernameCount),
				)
				if tt.tokenRows != nil {
					mock.ExpectQuery("SELECT").WillReturnRows(tt.tokenRows)
				}
			}
			if tt.mockInsert {
				mock.ExpectQuery(`INSERT INTO "user_profile"`).
					WillReturnRows(sqlmock.NewRows([]string{"user_profile_id"}).AddRow(5))
				mock.ExpectExec(`UPDATE "invite_token"`).WillReturnResult(sqlmock.NewResult(0, 1))
			}

			c, w := SetupTestContext()
			c.Request = httptest.NewRequest("POST", "/signup", bytes.NewBufferString(tt.body))

			PublicUserSignup(c)

			assert.Equal(t, tt.expectedStatus, w.Code)

			var response map[string]interface{}
			_ = json.Unmarshal(w.Body.Bytes(), &response)
			if tt.expectError {
				assert.NotNil(t, response["error"])
			} else {
				assert.Equal(t, float64(5), response["userProfileId"])
				assert.NoError(t, mock.ExpectationsWereMet())
			}
		})
	}
}

// TestUserSignup tests the admin-only variant
func TestUserSignup(t *testing.T) {
	tests := []struct {
		name           string
		isAdmin        bool
		body           string
		mockQueries    bool
		expectedStatus int
	}{
		{
			name:           "admin creates user without invite code",
			isAdmin:        true,
			body:           `{"username": "staffuser", "password": "secret123", "displayName": "Staff"}`,
			mockQueries:    true,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "non-admin rejected",
			isAdmin:        false,
			body:           `{"username": "staffuser", "password": "secret123"}`,
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, mock, cleanup := SetupTestDB(t)
			defer cleanup()

			if tt.mockQueries {
				mock.ExpectQuery("SELECT COUNT").WillReturnRows(
					sqlmock.NewRows([]string{"count"}).AddRow(0),
				)
				mock.ExpectExec(`INSERT INTO "user_profile"`).WillReturnResult(sqlmock.NewResult(1, 1))
			}

			c, w := SetupTestContext()
			SetAuthenticatedUser(c, MockAdminUser(), tt.isAdmin)
			c.Request = httptest.NewRequest("POST", "/users", bytes.NewBufferString(tt.body))

			UserSignup(c)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

// TestGetUserProfile tests the authenticated profile endpoint
func TestGetUserProfile(t *testing.T) {
	tests := []struct {
		name          string
		mockUser      models.UserProfile
		mockAdmin     bool
		expectedAdmin bool
	}{
		{
			name:          "regular user profile",
			mockUser:      MockUser(),
			mockAdmin:     false,
			expectedAdmin: false,
		},
		{
			name:          "admin user profile",
			mockUser:      MockAdminUser(),
			mockAdmin:     true,
			expectedAdmin: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := SetupTestContext()
			SetAuthenticatedUser(c, tt.mockUser, tt.mockAdmin)

			GetUserProfile(c)

			assert.Equal(t, http.StatusOK, w.Code)

			var response map[string]interface{}
			err := json.Unmarshal(w.Body.Bytes(), &response)
			require.NoError(t, err)
			assert.NotNil(t, response["user"])
			assert.Equal(t, tt.expectedAdmin, response["admin"])
		})
	}
}

// TestStorePushToken tests device token registration and refresh
func TestStorePushToken(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		existingCount  int64
		mockWrite      string
		expectedStatus int
	}{
		{
			name:           "new token inserted",
			body:           `{"pushToken": "device-token-1", "platform": "ios"}`,
			existingCount:  0,
			mockWrite:      `INSERT INTO "user_push_token"`,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "existing token refreshed",
			body:           `{"pushToken": "device-token-1", "platform": "android"}`,
			existingCount:  1,
			mockWrite:      `UPDATE "user_push_token"`,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "invalid platform",
			body:           `{"pushToken": "device-token-1", "platform": "blackberry"}`,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, mock, cleanup := SetupTestDB(t)
			defer cleanup()

			if tt.mockWrite != "" {
				mock.ExpectQuery("SELECT COUNT").WillReturnRows(
					sqlmock.NewRows([]string{"count"}).AddRow(tt.existingCount),
				)
				mock.ExpectExec(tt.mockWrite).WillReturnResult(sqlmock.NewResult(1, 1))
			}

			c, w := SetupTestContext()
			SetAuthenticatedUser(c, MockUser(), false)
			c.Request = httptest.NewRequest("POST", "/users/push-token", bytes.NewBufferString(tt.body))

			StorePushToken(c)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.mockWrite != "" {
				assert.NoError(t, mock.ExpectationsWereMet())
			}
		})
	}
}
