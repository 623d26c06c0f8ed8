// File: /services/email_service.go
package services

import (
	"fmt"
	"html"

	"carrental-api/config"
	"carrental-api/models"
	"gopkg.in/gomail.v2"
)

// Notifier tells people about booking activity. Implementations may block on
// network I/O; callers run them off the request path.
type Notifier interface {
	BookingRequested(owner *models.User, car *models.Car, booking *models.Booking) error
	BookingStatusChanged(renter *models.User, car *models.Car, booking *models.Booking) error
}

type EmailService struct {
	config *config.Config
	dialer *gomail.Dialer
}

func NewEmailService(cfg *config.Config) *EmailService {
	dialer := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)
	return &EmailService{config: cfg, dialer: dialer}
}

// NewNotifier returns an SMTP notifier, or a no-op one when SMTP_HOST is unset.
func NewNotifier(cfg *config.Config) Notifier {
	if cfg.SMTPHost == "" {
		return NoopNotifier{}
	}
	return NewEmailService(cfg)
}

func (es *EmailService) BookingRequested(owner *models.User, car *models.Car, booking *models.Booking) error {
	subject := fmt.Sprintf("New booking request for your %s %s", car.Brand, car.Model)

	textBody := fmt.Sprintf(`
Hello %s,

You have a new booking request for your %s %s.

Pickup:  %s
Return:  %s
Price:   %.2f

Open your dashboard to confirm or cancel the request.

The %s Team
This is an automated email, please do not reply.
`, owner.Name, car.Brand, car.Model, formatDate(booking.PickupDate), formatDate(booking.ReturnDate), booking.Price, es.config.FromName)

	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>New booking request</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { text-align: center; background: #2563eb; color: white; padding: 20px; border-radius: 10px 10px 0 0; }
        .content { background: #f8f9fa; padding: 30px; border-radius: 0 0 10px 10px; }
        .footer { text-align: center; margin-top: 20px; color: #666; font-size: 14px; }
        td { padding: 4px 12px 4px 0; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header"><h1>New booking request</h1></div>
        <div class="content">
            <h2>Hello %s!</h2>
            <p>You have a new booking request for your <strong>%s %s</strong>.</p>
            <table>
                <tr><td>Pickup</td><td>%s</td></tr>
                <tr><td>Return</td><td>%s</td></tr>
                <tr><td>Price</td><td>%.2f</td></tr>
            </table>
            <p>Open your dashboard to confirm or cancel the request.</p>
        </div>
        <div class="footer"><p>This is an automated email, please do not reply.</p></div>
    </div>
</body>
</html>`, html.EscapeString(owner.Name), html.EscapeString(car.Brand), html.EscapeString(car.Model),
		formatDate(booking.PickupDate), formatDate(booking.ReturnDate), booking.Price)

	return es.send(owner.Email, subject, textBody, htmlBody)
}

func (es *EmailService) BookingStatusChanged(renter *models.User, car *models.Car, booking *models.Booking) error {
	carName := "your car"
	if car != nil {
		carName = car.Brand + " " + car.Model
	}
	subject := fmt.Sprintf("Your booking for %s is %s", carName, booking.Status)

	textBody := fmt.Sprintf(`
Hello %s,

Your booking for %s from %s to %s is now %s.

The %s Team
This is an automated email, please do not reply.
`, renter.Name, carName, formatDate(booking.PickupDate), formatDate(booking.ReturnDate), booking.Status, es.config.FromName)

	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><title>Booking update</title></head>
<body style="font-family: Arial, sans-serif; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2>Hello %s!</h2>
        <p>Your booking for <strong>%s</strong> from %s to %s is now <strong>%s</strong>.</p>
        <p style="color: #666; font-size: 14px;">This is an automated email, please do not reply.</p>
    </div>
</body>
</html>`, html.EscapeString(renter.Name), html.EscapeString(carName),
		formatDate(booking.PickupDate), formatDate(booking.ReturnDate), booking.Status)

	return es.send(renter.Email, subject, textBody, htmlBody)
}

func (es *EmailService) send(to, subject, textBody, htmlBody string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(es.config.FromEmail, es.config.FromName))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", textBody)
	m.AddAlternative("text/html", htmlBody)

	if err := es.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// NoopNotifier drops every notification.
type NoopNotifier struct{}

func (NoopNotifier) BookingRequested(*models.User, *models.Car, *models.Booking) error {
	return nil
}

func (NoopNotifier) BookingStatusChanged(*models.User, *models.Car, *models.Booking) error {
	return nil
}
