// Package mail provides Mailer implementations. The only one today is a
// logging stub: the verification URL is also returned from the signup
// endpoint, so real delivery is optional in every current deployment.
package mail

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/securedocs/fileshare/internal/core/ports"
)

// LogMailer writes verification mail to the log instead of sending it.
type LogMailer struct {
	log zerolog.Logger
}

func NewLogMailer(log zerolog.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) SendVerification(_ context.Context, mail ports.VerificationMail) error {
	m.log.Info().
		Str("to", mail.To).
		Str("secure_url", mail.SecureURL).
		Msg("verification mail (log delivery)")
	return nil
}
