package service

import (
	"fmt"
	"log"
	"net/smtp"
	"strings"

	"surveyhub/config"
	"surveyhub/pkg/provider"

	"github.com/shopspring/decimal"
)

// EmailService sends the transactional mails (welcome, survey digest, earnings
// update). Delivery failures are logged and swallowed; mail is best effort and
// never blocks the ledger or the poller.
type EmailService struct {
	cfg config.SMTPConfig
}

func NewEmailService(cfg config.SMTPConfig) *EmailService {
	return &EmailService{cfg: cfg}
}

func (s *EmailService) SendWelcomeEmail(toEmail, userName string) error {
	subject := "Welcome to Survey Hub!"
	body := fmt.Sprintf(`<h2>Welcome to Survey Hub, %s!</h2>
<p>Thank you for joining Survey Hub. You're now ready to start earning money from surveys!</p>
<h3>Next Steps:</h3>
<ol>
  <li><strong>Complete your profile</strong> - This helps us match you with relevant surveys</li>
  <li><strong>Connect survey accounts</strong> - Link your existing accounts from Pollfish, Dynata, and more</li>
  <li><strong>Start earning</strong> - Begin taking surveys and track your earnings in one place</li>
</ol>
<p>If you have any questions, feel free to contact our support team.</p>
<p>Happy earning!<br>The Survey Hub Team</p>`, userName)
	return s.send(toEmail, subject, body)
}

func (s *EmailService) SendSurveyNotification(toEmail, userName string, surveys []provider.ExternalSurvey) error {
	if len(surveys) == 0 {
		return nil
	}
	maxReward := surveys[0].Reward
	for _, sv := range surveys[1:] {
		if sv.Reward.GreaterThan(maxReward) {
			maxReward = sv.Reward
		}
	}
	subject := fmt.Sprintf("New surveys available - Earn up to £%s!", maxReward.StringFixed(2))

	var items strings.Builder
	for i, sv := range surveys {
		if i == 5 {
			break
		}
		fmt.Fprintf(&items, "<li><strong>%s</strong> - £%s (%d min)</li>", sv.Title, sv.Reward.StringFixed(2), sv.EstimatedMinutes)
	}
	more := ""
	if len(surveys) > 5 {
		more = fmt.Sprintf("<p>...and %d more!</p>", len(surveys)-5)
	}
	body := fmt.Sprintf(`<h2>New Surveys Available, %s!</h2>
<p>We've found %d new surveys that match your profile:</p>
<ul>%s</ul>
%s
<p>Don't miss out on these earning opportunities!</p>
<p>Best regards,<br>The Survey Hub Team</p>`, userName, len(surveys), items.String(), more)
	return s.send(toEmail, subject, body)
}

func (s *EmailService) SendEarningsUpdate(toEmail, userName string, amount decimal.Decimal, surveyTitle string) error {
	subject := fmt.Sprintf("Survey completed - £%s earned!", amount.StringFixed(2))
	body := fmt.Sprintf(`<h2>Congratulations, %s!</h2>
<p>You've successfully completed the survey: <strong>%s</strong></p>
<div style="background-color:#d4edda;border:1px solid #c3e6cb;border-radius:5px;padding:15px;margin:20px 0;">
  <h3 style="color:#155724;margin:0;">Earnings: £%s</h3>
</div>
<p>Keep up the great work!</p>
<p>Best regards,<br>The Survey Hub Team</p>`, userName, surveyTitle, amount.StringFixed(2))
	return s.send(toEmail, subject, body)
}

func (s *EmailService) send(toEmail, subject, htmlBody string) error {
	if s.cfg.Host == "" {
		log.Printf("[email] SMTP not configured, skipping mail to %s (%s)", toEmail, subject)
		return nil
	}
	msg := strings.Join([]string{
		fmt.Sprintf("From: %s <%s>", s.cfg.FromName, s.cfg.FromEmail),
		"To: " + toEmail,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		`Content-Type: text/html; charset="UTF-8"`,
		"",
		htmlBody,
	}, "\r\n")

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	if err := smtp.SendMail(addr, auth, s.cfg.FromEmail, []string{toEmail}, []byte(msg)); err != nil {
		log.Printf("[email] send to %s failed: %v", toEmail, err)
		return err
	}
	log.Printf("[email] sent %q to %s", subject, toEmail)
	return nil
}
