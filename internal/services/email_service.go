package services

import (
	"fmt"
	"os"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type EmailService struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
}

func NewEmailService() *EmailService {
	apiKey := os.Getenv("SENDGRID_API_KEY")
	fromEmail := os.Getenv("SENDGRID_NOTIFICATIONS_FROM_EMAIL")
	fromName := os.Getenv("SENDGRID_FROM_NAME")

	client := sendgrid.NewSendClient(apiKey)

	return &EmailService{
		client:    client,
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

// SendWelcomeEmail greets a first-time user and points them at onboarding
func (s *EmailService) SendWelcomeEmail(userEmail, userName string) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail(userName, userEmail)
	subject := "Welcome to Donna"
	plainContent := fmt.Sprintf("Hi %s, welcome to Donna! Link your WhatsApp number on the dashboard and start sending me your tasks.", userName)
	htmlContent := fmt.Sprintf("<p>Hi %s,</p><p>Welcome to <strong>Donna</strong>! Link your WhatsApp number on the dashboard and start sending me your tasks.</p>", userName)

	message := mail.NewSingleEmail(from, subject, to, plainContent, htmlContent)
	response, err := s.client.Send(message)
	if err != nil {
		return err
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("failed to send welcome email to %s: %d", userEmail, response.StatusCode)
	}
	return nil
}
