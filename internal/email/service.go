package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"
	"time"
)

// Service sends one-time codes over SMTP. It is a fire-and-forget
// collaborator: callers only care whether delivery was accepted.
type Service struct {
	smtpHost     string
	smtpPort     string
	smtpUser     string
	smtpPassword string
	fromEmail    string
	senderName   string
}

func NewService(smtpHost, smtpPort, smtpUser, smtpPassword, senderName string) *Service {
	return &Service{
		smtpHost:     smtpHost,
		smtpPort:     smtpPort,
		smtpUser:     smtpUser,
		smtpPassword: smtpPassword,
		fromEmail:    smtpUser,
		senderName:   senderName,
	}
}

var otpTemplate = template.Must(template.New("otp").Parse(`
<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <p>Hello,</p>
    <p>Your one-time password for accessing Hirel is: <strong>{{.Code}}</strong></p>
    <p>This code is valid for {{.ValidMinutes}} minutes.</p>
    <p>If you did not request this code, you can safely ignore this email.</p>
    <p>Thanks,<br>{{.SenderName}}</p>
</body>
</html>
`))

// SendOTPEmail delivers a one-time code to the given address. Designed to be
// called from a goroutine; the context is accepted for future transports.
func (s *Service) SendOTPEmail(ctx context.Context, toEmail, code string, validFor time.Duration) error {
	subject := fmt.Sprintf("Your OTP for Hirel: %s", code)

	var buf bytes.Buffer
	data := struct {
		Code         string
		ValidMinutes int
		SenderName   string
	}{
		Code:         code,
		ValidMinutes: int(validFor.Minutes()),
		SenderName:   s.senderName,
	}
	if err := otpTemplate.Execute(&buf, data); err != nil {
		return fmt.Errorf("execute template: %w", err)
	}

	if err := s.sendEmail(toEmail, subject, buf.String()); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	return nil
}

func (s *Service) sendEmail(to, subject, body string) error {
	auth := smtp.PlainAuth("", s.smtpUser, s.smtpPassword, s.smtpHost)

	msg := []byte(fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=UTF-8\r\n"+
			"\r\n"+
			"%s\r\n",
		s.fromEmail, to, subject, body,
	))

	addr := fmt.Sprintf("%s:%s", s.smtpHost, s.smtpPort)
	return smtp.SendMail(addr, auth, s.fromEmail, []string{to}, msg)
}
