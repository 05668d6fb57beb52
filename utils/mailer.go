// utils/mailer.go
package utils

import (
	"fmt"
	"os"

	"gopkg.in/gomail.v2"
)

// SendApprovalEmail mails a pharmacy or delivery partner about the
// admin's approval decision. Email is informational only; callers log
// failures and move on.
func SendApprovalEmail(to, accountName string, approved bool) error {
	smtpHost := os.Getenv("SMTP_HOST")
	smtpUser := os.Getenv("SMTP_USER")
	smtpPass := os.Getenv("SMTP_PASS")
	smtpPort := 587
	if portStr := os.Getenv("SMTP_PORT"); portStr != "" {
		fmt.Sscanf(portStr, "%d", &smtpPort)
	}
	if smtpHost == "" || to == "" {
		return fmt.Errorf("smtp not configured or recipient missing")
	}

	subject := "Your account has been approved"
	body := fmt.Sprintf("Dear %s,\n\nYour account has been approved. You can now log in and start receiving orders.\n\nImmunePlus Team", accountName)
	if !approved {
		subject = "Your account application was declined"
		body = fmt.Sprintf("Dear %s,\n\nWe are sorry to inform you that your account application was declined. Please contact support for details.\n\nImmunePlus Team", accountName)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", smtpUser)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	d := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPass)
	return d.DialAndSend(m)
}
