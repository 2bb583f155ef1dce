package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/wamunyima3/CloudScribe/internal/core/domain"
	"github.com/wamunyima3/CloudScribe/internal/core/ports"
)

// Auditor records successful state-changing requests.
type Auditor struct {
	repo ports.AuditRepository
	now  func() time.Time
	log  zerolog.Logger
}

func NewAuditor(repo ports.AuditRepository, log zerolog.Logger) *Auditor {
	return &Auditor{repo: repo, now: time.Now, log: log}
}

// Middleware writes an audit entry for action once the handler succeeds. The
// entity is the lower-cased prefix of action, e.g. "user" for "USER_UPDATE".
// The entity id is the one set with SetAuditEntity, else the :id parameter,
// else the caller's own id for self-targeted routes like /profile.
func (a *Auditor) Middleware(action string) echo.MiddlewareFunc {
	entity := strings.ToLower(action)
	if i := strings.IndexByte(entity, '_'); i > 0 {
		entity = entity[:i]
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := next(c); err != nil {
				return err
			}
			id, ok := IdentityFrom(c)
			status := c.Response().Status
			if !ok || status >= http.StatusBadRequest {
				return nil
			}

			ctx, cancel := detached(c)
			defer cancel()
			entry := &domain.AuditEntry{
				UserID:    id.UserID,
				Action:    action,
				Entity:    entity,
				EntityID:  auditEntityID(c, id),
				Status:    status,
				CreatedAt: a.now(),
			}
			if err := a.repo.Insert(ctx, entry); err != nil {
				a.log.Error().Err(err).Str("action", action).Str("user_id", id.UserID).Msg("write audit entry")
			}
			return nil
		}
	}
}

func auditEntityID(c echo.Context, id domain.Identity) string {
	if v, ok := c.Get(auditEntityKey).(string); ok && v != "" {
		return v
	}
	if p := c.Param("id"); p != "" {
		return p
	}
	return id.UserID
}
