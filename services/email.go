package services

import (
	"fmt"
	"strconv"
	"time"

	"coursehub/config"
	"coursehub/logger"
	"coursehub/models"
	"coursehub/services/kafka"

	"gopkg.in/gomail.v2"
)

// SendEmailDirect sends an email via SMTP, optionally with one attachment
func SendEmailDirect(to, subject, body string, attachment ...string) error {
	m := gomail.NewMessage()

	from := config.AppConfig.EmailFrom
	if from == "" {
		from = config.AppConfig.SMTPUser
	}
	if from == "" {
		return fmt.Errorf("email sender not configured (set EMAIL_FROM or SMTP_USER)")
	}

	m.SetHeader("From", from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if len(attachment) > 0 {
		m.Attach(attachment[0])
	}

	port := 587
	if p := config.AppConfig.SMTPPort; p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	if config.AppConfig.SMTPUser == "" || config.AppConfig.SMTPPass == "" {
		return fmt.Errorf("smtp credentials not configured (set SMTP_USER and SMTP_PASS)")
	}

	d := gomail.NewDialer(config.AppConfig.SMTPHost, port, config.AppConfig.SMTPUser, config.AppConfig.SMTPPass)

	if err := d.DialAndSend(m); err != nil {
		logger.Error("Failed to send email to %s: %v", to, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	logger.Info("Email sent to %s", to)
	return nil
}

// SendEnrollmentConfirmation mails the buyer a purchase confirmation with the
// payment receipt attached. Best effort: failures are logged, never bubbled
// into the payment flow.
func SendEnrollmentConfirmation(order *models.Order) {
	emailBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background-color: #4CAF50; color: white; padding: 20px; text-align: center; border-radius: 5px; }
        .content { background-color: #f9f9f9; padding: 20px; margin-top: 20px; border-radius: 5px; }
        .course-info { background-color: #e8f5e9; padding: 15px; margin: 15px 0; border-left: 4px solid #4CAF50; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header"><h2>You're enrolled!</h2></div>
        <div class="content">
            <p>Dear <strong>%s</strong>,</p>
            <p>Your payment was received and you now have full access to your course.</p>
            <div class="course-info">
                <p><strong>Course:</strong> %s</p>
                <p><strong>Instructor:</strong> %s</p>
                <p><strong>Amount Paid:</strong> INR %.2f</p>
                <p><strong>Order Reference:</strong> %s</p>
            </div>
            <p>Your receipt is attached. Happy learning!</p>
            <p>Best regards,<br/>The CourseHub Team</p>
        </div>
    </div>
</body>
</html>
	`, order.UserName, order.CourseTitle, order.InstructorName, order.AmountInRupees(), order.Receipt)

	subject := fmt.Sprintf("Enrollment confirmed: %s", order.CourseTitle)

	receiptPath, err := GenerateReceipt(order)
	if err != nil {
		logger.Warn("Could not generate receipt for order %d: %v", order.ID, err)
		receiptPath = ""
	}

	var sendErr error
	if receiptPath != "" {
		sendErr = SendEmailDirect(order.UserEmail, subject, emailBody, receiptPath)
	} else {
		sendErr = SendEmailDirect(order.UserEmail, subject, emailBody)
	}
	if sendErr != nil {
		logger.Warn("Could not send enrollment confirmation for order %d: %v", order.ID, sendErr)
		return
	}

	// Audit trail for downstream consumers.
	if err := kafka.Publish(kafka.TopicEmails, fmt.Sprintf("email-%s", order.UserEmail), map[string]interface{}{
		"event":     "email.sent",
		"recipient": order.UserEmail,
		"subject":   subject,
		"orderId":   order.ID,
		"ts":        time.Now().UTC().Format(time.RFC3339),
	}); err != nil {
		logger.Warn("Failed to publish email.sent event: %v", err)
	}
}
