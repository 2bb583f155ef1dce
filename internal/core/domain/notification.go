package domain

import "time"

// NotificationType selects a notification template.
type NotificationType string

const (
	NotifyContributionApproved NotificationType = "contributionApproved"
	NotifyNewComment           NotificationType = "newComment"
	NotifyAchievementUnlocked  NotificationType = "achievementUnlocked"
	NotifyTranslationSuggested NotificationType = "translationSuggested"
	NotifyStreakReminder       NotificationType = "streakReminder"
	NotifySystemUpdate         NotificationType = "systemUpdate"
)

// Notification is an in-app message addressed to one user.
type Notification struct {
	ID        string            `json:"id"`
	UserID    string            `json:"user_id"`
	Type      NotificationType  `json:"type"`
	Title     string            `json:"title"`
	Body      string            `json:"body"`
	Icon      string            `json:"icon"`
	Link      string            `json:"link"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Read      bool              `json:"read"`
	ReadAt    *time.Time        `json:"read_at,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}
