package mailer

type Service interface {
	SendAccountApproved(toEmail, toName string) error
	SendReservationStatus(toEmail, toName, bookTitle, status string) error
}
