package email

import (
	"fmt"
	"log"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Service handles email sending
type Service struct {
	fromEmail   string
	fromName    string
	baseURL     string
	sendGridKey string
	useSendGrid bool
}

// NewService creates a new email service
// If sendGridAPIKey is provided, emails will be sent via SendGrid
// Otherwise, emails will be logged to console (development mode)
func NewService(fromEmail, fromName, baseURL, sendGridAPIKey string) *Service {
	useSendGrid := sendGridAPIKey != ""
	if useSendGrid {
		log.Printf("✅ Email service initialized with SendGrid")
	} else {
		log.Printf("⚠️  Email service in console-only mode (set SENDGRID_API_KEY for production)")
	}

	return &Service{
		fromEmail:   fromEmail,
		fromName:    fromName,
		baseURL:     baseURL,
		sendGridKey: sendGridAPIKey,
		useSendGrid: useSendGrid,
	}
}

// SendWelcomeEmail greets a newly registered partner
func (s *Service) SendWelcomeEmail(toEmail, toName, kind string) error {
	subject := "Welcome to the Cartbridge Partner Hub!"
	body := fmt.Sprintf(`
		<html>
		<body>
			<h2>Welcome to the Cartbridge Partner Hub!</h2>
			<p>Hi %s,</p>
			<p>Your %s partner account is ready. Here's how to get going:</p>
			<ul>
				<li>Submit your first lead from the deals page</li>
				<li>Preview your earnings with the commission calculator</li>
				<li>Track every deal through the pipeline</li>
			</ul>
			<p><a href="%s/deals" style="background-color: #4CAF50; color: white; padding: 14px 20px; text-decoration: none; border-radius: 4px; display: inline-block;">Go to My Deals</a></p>
			<p>Thanks,<br>The Cartbridge Partnerships Team</p>
		</body>
		</html>
	`, toName, kind, s.baseURL)

	plainText := fmt.Sprintf(`
Hi %s,

Your %s partner account is ready. Here's how to get going:

- Submit your first lead from the deals page
- Preview your earnings with the commission calculator
- Track every deal through the pipeline

Visit your deals: %s/deals

Thanks,
The Cartbridge Partnerships Team
	`, toName, kind, s.baseURL)

	if s.useSendGrid {
		return s.sendViaSendGrid(toEmail, toName, subject, body, plainText)
	}

	log.Printf("📧 [EMAIL] Welcome email to: %s <%s>", toName, toEmail)
	return nil
}

// SendGoLiveEmail congratulates a partner when a deal goes live
func (s *Service) SendGoLiveEmail(toEmail, toName, brandName, commission string) error {
	subject := fmt.Sprintf("%s is live on Cartbridge 🎉", brandName)
	body := fmt.Sprintf(`
		<html>
		<body>
			<h2>%s is live!</h2>
			<p>Hi %s,</p>
			<p><strong>%s</strong> has gone live on Cartbridge. Your commission of <strong>%s</strong> has moved from pending to earned.</p>
			<p><a href="%s/commission" style="background-color: #4A90E2; color: white; padding: 14px 20px; text-decoration: none; border-radius: 4px; display: inline-block;">View My Earnings</a></p>
			<p>Thanks,<br>The Cartbridge Partnerships Team</p>
		</body>
		</html>
	`, brandName, toName, brandName, commission, s.baseURL)

	plainText := fmt.Sprintf(`
Hi %s,

%s has gone live on Cartbridge. Your commission of %s has moved from
pending to earned.

View your earnings: %s/commission

Thanks,
The Cartbridge Partnerships Team
	`, toName, brandName, commission, s.baseURL)

	if s.useSendGrid {
		return s.sendViaSendGrid(toEmail, toName, subject, body, plainText)
	}

	return s.logEmailToConsole(toEmail, toName, subject, s.baseURL+"/commission")
}

// SendPayoutEmail notifies a partner that a payout run paid them
func (s *Service) SendPayoutEmail(toEmail, toName, amount string) error {
	subject := "Your Cartbridge commission payout is on its way"
	body := fmt.Sprintf(`
		<html>
		<body>
			<h2>Payout initiated</h2>
			<p>Hi %s,</p>
			<p>We've initiated a payout of <strong>%s</strong> for your earned commissions. It should reach your account within 2-3 business days.</p>
			<p><a href="%s/commission" style="background-color: #4CAF50; color: white; padding: 14px 20px; text-decoration: none; border-radius: 4px; display: inline-block;">View Payout Details</a></p>
			<p>Thanks,<br>The Cartbridge Partnerships Team</p>
		</body>
		</html>
	`, toName, amount, s.baseURL)

	plainText := fmt.Sprintf(`
Hi %s,

We've initiated a payout of %s for your earned commissions. It should
reach your account within 2-3 business days.

View payout details: %s/commission

Thanks,
The Cartbridge Partnerships Team
	`, toName, amount, s.baseURL)

	if s.useSendGrid {
		return s.sendViaSendGrid(toEmail, toName, subject, body, plainText)
	}

	return s.logEmailToConsole(toEmail, toName, subject, s.baseURL+"/commission")
}

// sendViaSendGrid sends email using SendGrid API
func (s *Service) sendViaSendGrid(toEmail, toName, subject, htmlBody, plainTextBody string) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail(toName, toEmail)

	message := mail.NewSingleEmail(from, subject, to, plainTextBody, htmlBody)

	client := sendgrid.NewSendClient(s.sendGridKey)
	response, err := client.Send(message)

	if err != nil {
		log.Printf("❌ SendGrid error: %v", err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	if response.StatusCode >= 400 {
		log.Printf("❌ SendGrid returned error status %d: %s", response.StatusCode, response.Body)
		return fmt.Errorf("sendgrid returned error status: %d", response.StatusCode)
	}

	log.Printf("✅ Email sent successfully to %s (SendGrid status: %d)", toEmail, response.StatusCode)
	return nil
}

// logEmailToConsole logs email details to console (development mode)
func (s *Service) logEmailToConsole(toEmail, toName, subject, actionURL string) error {
	log.Printf("📧 [EMAIL] %s", subject)
	log.Printf("   To: %s <%s>", toName, toEmail)
	log.Printf("   From: %s <%s>", s.fromName, s.fromEmail)
	log.Printf("   Action URL: %s", actionURL)
	log.Printf("   ⚠️  Email NOT sent (development mode)")
	return nil
}
