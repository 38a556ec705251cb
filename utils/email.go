package utils

import (
	"fmt"
	"html"
	"log"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendEmail sends an email using SendGrid
func SendEmail(apiKey, toName, toEmail, subject, textContent, htmlContent string) error {
	if apiKey == "" {
		return fmt.Errorf("SENDGRID_API_KEY is not set in environment variables")
	}

	from := mail.NewEmail("Catalog Parser", "no-reply@catalog-parser.local")
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, textContent, htmlContent)
	client := sendgrid.NewSendClient(apiKey)

	response, err := client.Send(message)
	if err != nil {
		log.Printf("Error sending email to %s: %v", toEmail, err)
		return err
	}

	if response.StatusCode >= 400 {
		log.Printf("SendGrid API Error: Status Code %d, Body: %s", response.StatusCode, response.Body)
		return fmt.Errorf("failed to send email, status code: %d", response.StatusCode)
	}

	log.Printf("Email sent successfully to %s. Status Code: %d", toEmail, response.StatusCode)
	return nil
}

// SendReport mails a plain line-per-entry report, mirrored as a <pre> block for html clients
func SendReport(apiKey, toEmail, subject string, lines []string) error {
	if toEmail == "" {
		return nil
	}
	text := strings.Join(lines, "\n")
	htmlContent := "<pre>" + html.EscapeString(text) + "</pre>"
	return SendEmail(apiKey, "", toEmail, subject, text, htmlContent)
}
