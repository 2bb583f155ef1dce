package domain

import "time"

// AuditEntry records a state-changing request made by a user.
type AuditEntry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Action    string    `json:"action"`
	Entity    string    `json:"entity"`
	EntityID  string    `json:"entity_id,omitempty"`
	Status    int       `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}
