package domain

// Permission is a resource:action capability. The set is closed: only the
// constants below are valid.
type Permission string

const (
	PermWordCreate  Permission = "word:create"
	PermWordRead    Permission = "word:read"
	PermWordUpdate  Permission = "word:update"
	PermWordDelete  Permission = "word:delete"
	PermWordApprove Permission = "word:approve"

	PermTranslationCreate Permission = "translation:create"
	PermTranslationRead   Permission = "translation:read"
	PermTranslationUpdate Permission = "translation:update"
	PermTranslationDelete Permission = "translation:delete"
	PermTranslationVerify Permission = "translation:verify"

	PermStoryCreate   Permission = "story:create"
	PermStoryRead     Permission = "story:read"
	PermStoryUpdate   Permission = "story:update"
	PermStoryDelete   Permission = "story:delete"
	PermStoryModerate Permission = "story:moderate"

	PermUserRead   Permission = "user:read"
	PermUserUpdate Permission = "user:update"
	PermUserDelete Permission = "user:delete"
	PermUserManage Permission = "user:manage"

	PermAdminAccess    Permission = "admin:access"
	PermSystemSettings Permission = "system:settings"
)

var allPermissions = []Permission{
	PermWordCreate, PermWordRead, PermWordUpdate, PermWordDelete, PermWordApprove,
	PermTranslationCreate, PermTranslationRead, PermTranslationUpdate, PermTranslationDelete, PermTranslationVerify,
	PermStoryCreate, PermStoryRead, PermStoryUpdate, PermStoryDelete, PermStoryModerate,
	PermUserRead, PermUserUpdate, PermUserDelete, PermUserManage,
	PermAdminAccess, PermSystemSettings,
}

// AllPermissions returns a fresh copy of every known permission.
func AllPermissions() []Permission {
	out := make([]Permission, len(allPermissions))
	copy(out, allPermissions)
	return out
}

// Known reports whether p is part of the closed set.
func (p Permission) Known() bool {
	for _, k := range allPermissions {
		if k == p {
			return true
		}
	}
	return false
}

// ParsePermission converts a configuration string into a Permission.
func ParsePermission(s string) (Permission, error) {
	p := Permission(s)
	if !p.Known() {
		return "", ConfigError("unknown permission %q", s)
	}
	return p, nil
}
