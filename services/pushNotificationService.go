package services

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"github.com/PrayerWall/initializers"
	"github.com/PrayerWall/models"
	"github.com/doug-martin/goqu/v9"
)

type PushNotificationService struct {
	fcmClient *messaging.Client
}

type NotificationPayload struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

var pushService *PushNotificationService

func InitPushNotificationService() {
	pushService = &PushNotificationService{}

	serviceAccountPath := os.Getenv("FIREBASE_SERVICE_ACCOUNT_PATH")

	var app *firebase.App
	var err error

	if serviceAccountPath != "" {
		opt := option.WithCredentialsFile(serviceAccountPath)
		app, err = firebase.NewApp(context.Background(), nil, opt)
		if err != nil {
			log.Printf("Failed to initialize Firebase app with service account: %v", err)
			return
		}
	} else {
		// Application Default Credentials
		app, err = firebase.NewApp(context.Background(), nil)
		if err != nil {
			log.Printf("Failed to initialize Firebase app with ADC: %v", err)
			return
		}
	}

	pushService.fcmClient, err = app.Messaging(context.Background())
	if err != nil {
		log.Printf("Failed to get Firebase messaging client: %v", err)
		return
	}

	log.Println("Push notification service initialized successfully with FCM")
}

func GetPushNotificationService() *PushNotificationService {
	return pushService
}

// SendNotificationToUser delivers a payload to every registered push token
// of a user. A failure on one token does not stop the others.
func (s *PushNotificationService) SendNotificationToUser(userID int, payload NotificationPayload) error {
	var tokens []models.PushToken
	err := initializers.DB.From("user_push_token").
		Where(goqu.C("user_profile_id").Eq(userID)).
		ScanStructs(&tokens)
	if err != nil {
		return fmt.Errorf("failed to get push tokens for user %d: %v", userID, err)
	}

	if len(tokens) == 0 {
		return fmt.Errorf("no push tokens found for user %d", userID)
	}

	for _, token := range tokens {
		if err := s.sendToToken(token, payload); err != nil {
			log.Printf("Failed to send notification to token %s: %v", token.Push_Token, err)
		}
	}

	return nil
}

func (s *PushNotificationService) sendToToken(pushToken models.PushToken, payload NotificationPayload) error {
	if s.fcmClient == nil {
		return fmt.Errorf("FCM client not initialized")
	}

	message := &messaging.Message{
		Token: pushToken.Push_Token,
		Notification: &messaging.Notification{
			Title: payload.Title,
			Body:  payload.Body,
		},
		Data: payload.Data,
	}

	if pushToken.Platform == "android" {
		message.Android = &messaging.AndroidConfig{Priority: "normal"}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	response, err := s.fcmClient.Send(ctx, message)
	if err != nil {
		return err
	}

	log.Printf("FCM message sent: %s", response)
	return nil
}

// NotifyAuthorOfMark tells a prayer's author that someone just prayed for
// their request. Fire-and-forget; callers run it in a goroutine.
func NotifyAuthorOfMark(authorID int, prayerID int, markerName string) {
	if pushService == nil {
		return
	}

	payload := NotificationPayload{
		Title: "Someone prayed for you",
		Body:  fmt.Sprintf("%s just prayed for your request", markerName),
		Data: map[string]string{
			"type":     "PRAYER_MARKED",
			"prayerId": fmt.Sprintf("%d", prayerID),
		},
	}

	if err := pushService.SendNotificationToUser(authorID, payload); err != nil {
		log.Printf("Failed to notify author %d of prayer mark: %v", authorID, err)
	}
}

// NotifyMarkersOfAnswer emails everyone who prayed for a request once its
// author marks it answered. Fire-and-forget; callers run it in a goroutine.
func NotifyMarkersOfAnswer(prayerID int, requestText string, testimony string) {
	service := GetEmailService()
	if service == nil {
		return
	}

	type marker struct {
		Email        string `db:"email"`
		Display_Name string `db:"display_name"`
	}

	var markers []marker
	err := initializers.DB.From("prayer_mark").
		Select(goqu.DISTINCT("user_profile.email").As("email"), goqu.I("user_profile.display_name")).
		Join(
			goqu.T("user_profile"),
			goqu.On(goqu.Ex{"prayer_mark.user_profile_id": goqu.I("user_profile.user_profile_id")}),
		).
		Where(goqu.I("prayer_mark.prayer_id").Eq(prayerID)).
		ScanStructs(&markers)
	if err != nil {
		log.Printf("Failed to load markers for prayer %d: %v", prayerID, err)
		return
	}

	for _, m := range markers {
		if err := service.SendPrayerAnsweredEmail(m.Email, m.Display_Name, requestText, testimony); err != nil {
			log.Printf("Failed to send answered email to %s: %v", m.Email, err)
		}
	}
}
