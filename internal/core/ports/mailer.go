package ports

import "context"

// VerificationMail is the message sent after signup.
type VerificationMail struct {
	To        string
	SecureURL string
}

// Mailer delivers verification mail. Delivery failures are logged, never
// surfaced to the signup caller.
type Mailer interface {
	SendVerification(ctx context.Context, mail VerificationMail) error
}

// MailEnqueuer is the interface services use to hand mail to the async
// delivery pipeline.
type MailEnqueuer interface {
	Enqueue(mail VerificationMail)
}
