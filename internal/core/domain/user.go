package domain

import "time"

// Role is one of the fixed platform roles.
type Role string

const (
	RoleAdmin       Role = "ADMIN"
	RoleCurator     Role = "CURATOR"
	RoleContributor Role = "CONTRIBUTOR"
	RoleUser        Role = "USER"
	RoleVisitor     Role = "VISITOR"
)

// Roles lists every role in descending privilege order.
func Roles() []Role {
	return []Role{RoleAdmin, RoleCurator, RoleContributor, RoleUser, RoleVisitor}
}

// ParseRole converts s into a Role. The comparison is exact.
func ParseRole(s string) (Role, bool) {
	for _, r := range Roles() {
		if string(r) == s {
			return r, true
		}
	}
	return "", false
}

func (r Role) Valid() bool {
	_, ok := ParseRole(string(r))
	return ok
}

// NotificationSwitches controls which channels and notification types reach a user.
type NotificationSwitches struct {
	Email     bool   `json:"email" bson:"email"`
	Push      bool   `json:"push" bson:"push"`
	InApp     bool   `json:"in_app" bson:"in_app"`
	Frequency string `json:"frequency,omitempty" bson:"frequency,omitempty"`
}

// Preferences are user-editable settings.
type Preferences struct {
	Language      string               `json:"language,omitempty" bson:"language,omitempty"`
	Theme         string               `json:"theme,omitempty" bson:"theme,omitempty"`
	Notifications NotificationSwitches `json:"notifications" bson:"notifications"`
}

// DefaultPreferences applies to new accounts.
func DefaultPreferences() Preferences {
	return Preferences{
		Theme:         "system",
		Notifications: NotificationSwitches{Email: true, Push: true, InApp: true, Frequency: "weekly"},
	}
}

// User models an account in the credential store.
type User struct {
	ID            string      `json:"id"`
	Email         string      `json:"email"`
	Username      string      `json:"username"`
	PasswordHash  string      `json:"-"`
	Role          Role        `json:"role"`
	EmailVerified bool        `json:"email_verified"`
	Preferences   Preferences `json:"preferences"`
	Points        int         `json:"points"`
	Streak        int         `json:"streak"`

	VerifyToken   string     `json:"-"`
	ResetToken    string     `json:"-"`
	ResetTokenExp *time.Time `json:"-"`

	LastActive    *time.Time `json:"last_active,omitempty"`
	LastLoginDate *time.Time `json:"last_login_date,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// UserUpdate carries the mutable fields of a user; nil means unchanged.
type UserUpdate struct {
	Email         *string
	Username      *string
	PasswordHash  *string
	Role          *Role
	EmailVerified *bool
	Preferences   *Preferences
	VerifyToken   *string
	ResetToken    *string
	ResetTokenExp *time.Time
	LastLoginDate *time.Time
	LastActive    *time.Time
}

// PublicUser is the subset of User safe to return to any authenticated caller.
type PublicUser struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Email: u.Email, Username: u.Username, Role: u.Role}
}
