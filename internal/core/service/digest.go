package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/wamunyima3/CloudScribe/internal/core/ports"
	"github.com/wamunyima3/CloudScribe/internal/pkg/metrics"
)

const digestWindow = 7 * 24 * time.Hour

// Digest emails each opted-in user a summary of their last week.
type Digest struct {
	users  ports.UserRepository
	audit  ports.AuditRepository
	mailer ports.Mailer
	log    zerolog.Logger
	now    func() time.Time
}

func NewDigest(users ports.UserRepository, audit ports.AuditRepository, mailer ports.Mailer, log zerolog.Logger) *Digest {
	return &Digest{users: users, audit: audit, mailer: mailer, log: log, now: time.Now}
}

// Run sends one digest per recipient and reports how many were queued. A
// failure for one user does not stop the run.
func (d *Digest) Run(ctx context.Context) (int, error) {
	start := d.now()
	defer func() { metrics.DigestRunDuration.Observe(time.Since(start).Seconds()) }()

	recipients, err := d.users.DigestRecipients(ctx)
	if err != nil {
		return 0, err
	}
	since := start.UTC().Add(-digestWindow)

	sent := 0
	for _, u := range recipients {
		if ctx.Err() != nil {
			return sent, ctx.Err()
		}
		contributions, err := d.audit.CountSince(ctx, u.ID, since)
		if err != nil {
			d.log.Warn().Err(err).Str("user_id", u.ID).Msg("digest: count contributions failed")
			continue
		}
		err = d.mailer.Send(ctx, ports.Mail{
			To:       u.Email,
			Template: ports.MailWeeklyDigest,
			Data: map[string]any{
				"Username":      u.Username,
				"Since":         since.Format("Jan 2, 2006"),
				"Contributions": contributions,
				"Points":        u.Points,
				"Streak":        u.Streak,
			},
		})
		if err != nil {
			d.log.Warn().Err(err).Str("user_id", u.ID).Msg("digest: queue email failed")
			continue
		}
		sent++
	}
	d.log.Info().Int("recipients", len(recipients)).Int("sent", sent).Msg("weekly digest completed")
	return sent, nil
}
