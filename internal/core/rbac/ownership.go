package rbac

import "github.com/wamunyima3/CloudScribe/internal/core/domain"

// SeesUnpublished reports whether id may see content that is not yet public:
// its author always may, as may any role holding reviewer.
func (t *Table) SeesUnpublished(id domain.Identity, authorID string, reviewer domain.Permission) bool {
	if id.UserID != "" && id.UserID == authorID {
		return true
	}
	return id.Role != "" && t.HasPermission(id.Role, reviewer)
}

// RequireOwnership reports whether id may act on a resource owned by ownerID.
// ADMIN always may; an empty owner matches nobody else.
func RequireOwnership(id domain.Identity, ownerID string) bool {
	if id.Role == domain.RoleAdmin {
		return true
	}
	return ownerID != "" && id.UserID == ownerID
}
