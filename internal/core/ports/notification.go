package ports

import (
	"context"
	"time"

	"github.com/wamunyima3/CloudScribe/internal/core/domain"
)

type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) (*domain.Notification, error)
	ListUnread(ctx context.Context, userID string) ([]*domain.Notification, error)
	// MarkRead and Delete are scoped to userID and return
	// domain.ErrNotificationNotFound for other users' notifications.
	MarkRead(ctx context.Context, userID, id string, at time.Time) error
	Delete(ctx context.Context, userID, id string) error
}

// Pusher delivers a payload to a user's live connection, if any.
type Pusher interface {
	Push(userID string, payload any) bool
}

// Mail template names.
const (
	MailVerification         = "verification"
	MailPasswordReset        = "passwordReset"
	MailContributionApproved = "contributionApproved"
	MailWeeklyDigest         = "weeklyDigest"
)

// Mail is a templated message for one recipient.
type Mail struct {
	To       string
	Template string
	Data     map[string]any
}

// Mailer sends mail. Implementations may queue and deliver asynchronously.
type Mailer interface {
	Send(ctx context.Context, m Mail) error
}

type NotificationService interface {
	Notify(ctx context.Context, userID string, typ domain.NotificationType, data map[string]string) (*domain.Notification, error)
	Unread(ctx context.Context, userID string) ([]*domain.Notification, error)
	MarkRead(ctx context.Context, userID, id string) error
	Delete(ctx context.Context, userID, id string) error
	UpdatePreferences(ctx context.Context, userID string, sw domain.NotificationSwitches) (*domain.User, error)
}
