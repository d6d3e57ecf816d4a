package mail

import (
	"bytes"
	"context"
	"crypto/tls"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"path"
	"time"

	"github.com/joy095/parlour/logger"
	"github.com/joy095/parlour/models/booking_models"
	gomail "gopkg.in/gomail.v2"
)

// Email template paths
const (
	bookingConfirmedTemplate    = "templates/email/booking_confirmed.html"
	bookingPaidOperatorTemplate = "templates/email/booking_paid_operator.html"
)

//go:embed templates/email/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/email/*.html"))

type SMTPConfig struct {
	Host          string
	Port          int
	Username      string
	Password      string
	FromEmail     string
	FromName      string
	BusinessEmail string
}

// Mailer sends booking notifications over SMTP. Without an SMTP host it only
// logs what would have been sent.
type Mailer struct {
	cfg    SMTPConfig
	dialer *gomail.Dialer
	send   func(*gomail.Message) error
}

func NewMailer(cfg SMTPConfig) *Mailer {
	m := &Mailer{cfg: cfg}
	if cfg.Host == "" {
		logger.WarnLogger.Warn("SMTP_HOST not set, booking emails will only be logged")
		m.send = logOnly
		return m
	}

	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	dialer.TLSConfig = &tls.Config{
		InsecureSkipVerify: false,
		ServerName:         cfg.Host,
	}
	dialer.SSL = cfg.Port == 465
	m.dialer = dialer
	m.send = func(msg *gomail.Message) error {
		return dialer.DialAndSend(msg)
	}
	return m
}

func logOnly(msg *gomail.Message) error {
	logger.InfoLogger.Infof("Email not sent (SMTP disabled): to=%v subject=%v", msg.GetHeader("To"), msg.GetHeader("Subject"))
	return nil
}

type bookingEmailData struct {
	booking_models.Booking
	BusinessName string
	Year         int
}

// NotifyBookingPaid mails the customer (when an address is on file) and the operator.
func (m *Mailer) NotifyBookingPaid(ctx context.Context, b booking_models.Booking) error {
	data := bookingEmailData{Booking: b, BusinessName: m.cfg.FromName, Year: time.Now().Year()}

	var errs []error
	if b.Email != "" {
		subject := "Booking Confirmed: " + b.BookingID
		if err := m.sendEmail(ctx, b.Email, subject, bookingConfirmedTemplate, data); err != nil {
			errs = append(errs, err)
		}
	}
	if m.cfg.BusinessEmail != "" {
		subject := "Booking Paid & Confirmed: " + b.BookingID
		if err := m.sendEmail(ctx, m.cfg.BusinessEmail, subject, bookingPaidOperatorTemplate, data); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *Mailer) sendEmail(ctx context.Context, toEmail, subject, templatePath string, data interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var body bytes.Buffer
	if err := templates.ExecuteTemplate(&body, path.Base(templatePath), data); err != nil {
		logger.ErrorLogger.Errorf("Failed to execute email template %s: %v", templatePath, err)
		return fmt.Errorf("failed to execute email template: %w", err)
	}

	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.cfg.FromEmail, m.cfg.FromName)
	msg.SetHeader("To", toEmail)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body.String())

	if err := m.deliver(ctx, msg); err != nil {
		logger.ErrorLogger.Errorf("Failed to send email to %s: %v", toEmail, err)
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	logger.InfoLogger.Infof("Sent %q to %s", subject, toEmail)
	return nil
}

// deliver runs the send on its own goroutine so a stalled SMTP server cannot
// outlive ctx. The abandoned send finishes or fails on its own.
func (m *Mailer) deliver(ctx context.Context, msg *gomail.Message) error {
	result := make(chan error, 1)
	go func() {
		result <- m.send(msg)
	}()

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
