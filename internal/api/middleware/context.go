package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/wamunyima3/CloudScribe/internal/core/domain"
)

// IdentityKey is the echo context key holding the domain.Identity.
const IdentityKey = "identity"

// IdentityFrom returns the identity attached by the authentication middleware.
func IdentityFrom(c echo.Context) (domain.Identity, bool) {
	id, ok := c.Get(IdentityKey).(domain.Identity)
	return id, ok && id.UserID != ""
}

const auditEntityKey = "audit_entity_id"

// SetAuditEntity names the entity a handler acted on when the route has no
// :id parameter, such as the id of a newly created record.
func SetAuditEntity(c echo.Context, id string) {
	c.Set(auditEntityKey, id)
}

func setIdentity(c echo.Context, id domain.Identity) {
	c.Set(IdentityKey, id)
}
