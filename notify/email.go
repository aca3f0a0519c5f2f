package notify

import (
	"fmt"
	"log"
	"net/smtp"
	"os"
)

// EmailSink forwards operator events to the ops mailbox. User-facing events
// are skipped; users get in-app notifications from DBSink.
type EmailSink struct {
	To string
}

func (s *EmailSink) Notify(e Event) {
	if e.UserID != "" || s.To == "" {
		return
	}
	go func() {
		if err := SendEmail(s.To, "[artmarket] "+e.Type, e.Message); err != nil {
			log.Println("notify: failed to send ops email:", err)
		}
	}()
}

func SendEmail(to string, subject string, body string) error {
	smtpServer := os.Getenv("SMTP_SERVER")
	smtpPort := os.Getenv("SMTP_PORT")
	smtpUser := os.Getenv("SMTP_USER")
	smtpPass := os.Getenv("SMTP_PASS")
	fromAddr := os.Getenv("FROM_ADDR")
	fromName := os.Getenv("FROM_NAME")

	if smtpServer == "" || smtpPort == "" || smtpUser == "" || smtpPass == "" || fromAddr == "" {
		return fmt.Errorf("missing required SMTP environment variables")
	}

	msg := []byte(fmt.Sprintf("From: %s <%s>\r\n"+
		"To: %s\r\n"+
		"Subject: %s\r\n"+
		"Content-Type: text/plain; charset=UTF-8\r\n\r\n"+
		"%s",
		fromName, fromAddr, to, subject, body))

	auth := smtp.PlainAuth("", smtpUser, smtpPass, smtpServer)

	err := smtp.SendMail(smtpServer+":"+smtpPort, auth, fromAddr, []string{to}, msg)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
