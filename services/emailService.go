package services

import (
	"fmt"
	"log"
	"os"

	"github.com/resend/resend-go/v2"
)

type EmailService struct {
	client *resend.Client
}

var emailService *EmailService

// InitEmailService initializes the email service with Resend API
func InitEmailService() {
	apiKey := os.Getenv("RESEND_API_KEY")

	if apiKey == "" {
		log.Println("WARNING: RESEND_API_KEY not set. Email service will not be available.")
		return
	}

	emailService = &EmailService{
		client: resend.NewClient(apiKey),
	}

	log.Println("Email service initialized successfully with Resend")
}

// GetEmailService returns the singleton email service instance
func GetEmailService() *EmailService {
	return emailService
}

// SendInviteEmail delivers an invite code to a prospective member.
func (s *EmailService) SendInviteEmail(toEmail string, inviterName string, inviteCode string) error {
	if s.client == nil {
		return fmt.Errorf("email service not initialized")
	}

	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<body style="font-family: -apple-system, 'Segoe UI', Roboto, Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; color: #333;">
    <h1 style="color: #90c590;">prayerwall</h1>
    <p>%s has invited you to join the prayerwall community.</p>
    <p>Use this invite code when you sign up:</p>
    <div style="background-color: #f5f5f5; border: 2px solid #90c590; border-radius: 8px; padding: 20px; text-align: center;">
        <span style="font-size: 28px; font-weight: bold; letter-spacing: 4px; font-family: monospace; color: #90c590;">%s</span>
    </div>
    <p><strong>This code expires in 7 days and can only be used once.</strong></p>
</body>
</html>`, inviterName, inviteCode)

	textBody := fmt.Sprintf(`%s has invited you to join the prayerwall community.

Your invite code: %s

This code expires in 7 days and can only be used once.

The prayerwall Team
`, inviterName, inviteCode)

	params := &resend.SendEmailRequest{
		From:    os.Getenv("RESEND_FROM_EMAIL"),
		To:      []string{toEmail},
		Subject: fmt.Sprintf("%s invited you to prayerwall", inviterName),
		Html:    htmlBody,
		Text:    textBody,
	}

	sent, err := s.client.Emails.Send(params)
	if err != nil {
		log.Printf("Failed to send invite email to %s: %v", toEmail, err)
		return fmt.Errorf("failed to send email: %v", err)
	}

	log.Printf("Successfully sent invite email to %s. Email ID: %s", toEmail, sent.Id)
	return nil
}

// SendPrayerAnsweredEmail tells someone who prayed for a request that it
// was answered.
func (s *EmailService) SendPrayerAnsweredEmail(toEmail string, displayName string, requestText string, testimony string) error {
	if s.client == nil {
		return fmt.Errorf("email service not initialized")
	}

	testimonyBlock := ""
	if testimony != "" {
		testimonyBlock = fmt.Sprintf(`<blockquote style="border-left: 3px solid #90c590; margin: 16px 0; padding-left: 12px; color: #555;">%s</blockquote>`, testimony)
	}

	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<body style="font-family: -apple-system, 'Segoe UI', Roboto, Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; color: #333;">
    <h1 style="color: #90c590;">prayerwall</h1>
    <p>Hi %s,</p>
    <p>A prayer you prayed for has been answered:</p>
    <p style="font-style: italic;">"%s"</p>
    %s
    <p>Thank you for praying.</p>
</body>
</html>`, displayName, requestText, testimonyBlock)

	textBody := fmt.Sprintf(`Hi %s,

A prayer you prayed for has been answered:

"%s"

%s

Thank you for praying.

The prayerwall Team
`, displayName, requestText, testimony)

	params := &resend.SendEmailRequest{
		From:    os.Getenv("RESEND_FROM_EMAIL"),
		To:      []string{toEmail},
		Subject: "A prayer you prayed for was answered",
		Html:    htmlBody,
		Text:    textBody,
	}

	sent, err := s.client.Emails.Send(params)
	if err != nil {
		log.Printf("Failed to send answered email to %s: %v", toEmail, err)
		return fmt.Errorf("failed to send email: %v", err)
	}

	log.Printf("Successfully sent answered email to %s. Email ID: %s", toEmail, sent.Id)
	return nil
}
