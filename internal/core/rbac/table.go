// Package rbac resolves role permissions. A Table is built once at startup and
// is read-only afterwards, so it is safe to share between goroutines.
package rbac

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/wamunyima3/CloudScribe/internal/core/domain"
)

// Wildcard grants every permission. Only ADMIN holds it in the default table.
const Wildcard = "*"

// Table maps each role to its permission set.
type Table struct {
	grants map[domain.Role]map[domain.Permission]struct{}
	all    map[domain.Role]bool
	log    zerolog.Logger
}

// Option configures a Table.
type Option func(*Table)

// WithLogger routes "unknown permission" reports to l.
func WithLogger(l zerolog.Logger) Option {
	return func(t *Table) { t.log = l }
}

// NewTable validates raw and freezes it. Every role must have an entry, and
// each entry is either the wildcard alone or a list of known permissions.
func NewTable(raw map[domain.Role][]string, opts ...Option) (*Table, error) {
	t := &Table{
		grants: make(map[domain.Role]map[domain.Permission]struct{}, len(raw)),
		all:    make(map[domain.Role]bool),
		log:    zerolog.Nop(),
	}
	for _, o := range opts {
		o(t)
	}

	for role := range raw {
		if !role.Valid() {
			return nil, domain.ConfigError("rbac: unknown role %q", role)
		}
	}

	for _, role := range domain.Roles() {
		names, ok := raw[role]
		if !ok {
			return nil, domain.ConfigError("rbac: role %s has no permission entry", role)
		}
		set := make(map[domain.Permission]struct{}, len(names))
		for _, n := range names {
			if n == Wildcard {
				if len(names) != 1 {
					return nil, domain.ConfigError("rbac: role %s: wildcard must stand alone", role)
				}
				t.all[role] = true
				continue
			}
			p, err := domain.ParsePermission(n)
			if err != nil {
				return nil, domain.ConfigError("rbac: role %s: unknown permission %q", role, n)
			}
			set[p] = struct{}{}
		}
		t.grants[role] = set
	}
	return t, nil
}

// DefaultMapping is the platform's role table.
func DefaultMapping() map[domain.Role][]string {
	return map[domain.Role][]string{
		domain.RoleAdmin: {Wildcard},
		domain.RoleCurator: {
			"word:create", "word:read", "word:update", "word:approve",
			"translation:create", "translation:read", "translation:update", "translation:verify",
			"story:create", "story:read", "story:update", "story:moderate",
			"user:read",
		},
		domain.RoleContributor: {
			"word:create", "word:read", "word:update",
			"translation:create", "translation:read", "translation:update",
			"story:create", "story:read", "story:update",
		},
		domain.RoleUser: {
			"word:read", "translation:read", "translation:create",
			"story:read", "story:create",
		},
		domain.RoleVisitor: {"word:read", "translation:read", "story:read"},
	}
}

// DefaultTable builds the table from DefaultMapping. It panics only if the
// compiled-in mapping is broken.
func DefaultTable(opts ...Option) *Table {
	t, err := NewTable(DefaultMapping(), opts...)
	if err != nil {
		panic(err)
	}
	return t
}

// HasPermission reports whether role holds p. Unknown roles and unknown
// permissions are denied; the latter is logged.
func (t *Table) HasPermission(role domain.Role, p domain.Permission) bool {
	if !p.Known() {
		t.log.Error().Str("permission", string(p)).Str("role", string(role)).Msg("unknown permission")
		return false
	}
	if t.all[role] {
		return true
	}
	set, ok := t.grants[role]
	if !ok {
		return false
	}
	_, ok = set[p]
	return ok
}

// RequireAll reports whether role holds every permission in ps.
func (t *Table) RequireAll(role domain.Role, ps []domain.Permission) bool {
	for _, p := range ps {
		if !t.HasPermission(role, p) {
			return false
		}
	}
	return true
}

// RequireAny reports whether role holds at least one permission in ps. An
// empty list is never satisfied.
func (t *Table) RequireAny(role domain.Role, ps []domain.Permission) bool {
	for _, p := range ps {
		if t.HasPermission(role, p) {
			return true
		}
	}
	return false
}

// Permissions lists the effective permissions of role in sorted order.
func (t *Table) Permissions(role domain.Role) []domain.Permission {
	var out []domain.Permission
	if t.all[role] {
		out = domain.AllPermissions()
	} else {
		for p := range t.grants[role] {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
