package mailer

import (
	"github.com/openshelf/libris/pkg/logger"
)

// DevMailer logs outgoing mail instead of delivering it.
type DevMailer struct{}

func NewDevMailer() *DevMailer {
	return &DevMailer{}
}

func (d *DevMailer) SendAccountApproved(toEmail, toName string) error {
	logger.Info("[DEV MAIL] account approved",
		"to", toEmail,
		"name", toName,
	)
	return nil
}

func (d *DevMailer) SendReservationStatus(toEmail, toName, bookTitle, status string) error {
	logger.Info("[DEV MAIL] reservation status",
		"to", toEmail,
		"name", toName,
		"book", bookTitle,
		"status", status,
	)
	return nil
}
