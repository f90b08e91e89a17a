package util

import (
	"bytes"
	"embed"
	"html/template"

	"github.com/ferdian3456/snapgram/internal/model"

	"github.com/knadh/koanf/v2"
	"gopkg.in/gomail.v2"
)

//go:embed template/*
var TemplateFS embed.FS

var welcomeTemplate = template.Must(template.ParseFS(TemplateFS, "template/welcome.html"))

type Mailer struct {
	SMTPHost       string
	SMTPPort       int
	SenderName     string
	SenderEmail    string
	SenderPassword string
}

func NewMailer(config *koanf.Koanf) *Mailer {
	return &Mailer{
		SMTPHost:       config.String("SMTP_HOST"),
		SMTPPort:       config.Int("SMTP_PORT"),
		SenderName:     config.String("SENDER_NAME"),
		SenderEmail:    config.String("SENDER_EMAIL"),
		SenderPassword: config.String("SENDER_PASSWORD"),
	}
}

func (mailer *Mailer) Send(receiverEmail string, subject string, body string) error {
	return SendEmail(mailer.SMTPHost, mailer.SMTPPort, mailer.SenderName, mailer.SenderEmail, mailer.SenderPassword, receiverEmail, subject, body)
}

func RenderWelcomeEmail(data model.WelcomeTemplateData) (string, error) {
	var body bytes.Buffer
	err := welcomeTemplate.Execute(&body, data)
	if err != nil {
		return "", err
	}

	return body.String(), nil
}

func SendEmail(smtpHost string, smtpPort int, senderName string, senderEmail string, senderPassword string, receiverEmail string, subject string, body string) error {
	mailer := gomail.NewMessage()
	mailer.SetHeader("From", mailer.FormatAddress(senderEmail, senderName))
	mailer.SetHeader("To", receiverEmail)
	mailer.SetHeader("Subject", subject)
	mailer.SetBody("text/html", body)

	dialer := gomail.NewDialer(
		smtpHost,
		smtpPort,
		senderEmail,
		senderPassword,
	)

	err := dialer.DialAndSend(mailer)
	if err != nil {
		return err
	}

	return nil
}
