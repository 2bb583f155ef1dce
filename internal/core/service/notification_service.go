package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/wamunyima3/CloudScribe/internal/core/domain"
	"github.com/wamunyima3/CloudScribe/internal/core/ports"
	"github.com/wamunyima3/CloudScribe/internal/pkg/metrics"
)

const unreadCacheTTL = 5 * time.Minute

// PushMessage is the envelope sent over a live connection.
type PushMessage struct {
	Type string               `json:"type"`
	Data *domain.Notification `json:"data"`
}

type notificationService struct {
	repo   ports.NotificationRepository
	users  ports.UserRepository
	pusher ports.Pusher
	cache  ports.Cache
	log    zerolog.Logger
}

func NewNotificationService(
	repo ports.NotificationRepository,
	users ports.UserRepository,
	pusher ports.Pusher,
	cache ports.Cache,
	log zerolog.Logger,
) ports.NotificationService {
	return &notificationService{repo: repo, users: users, pusher: pusher, cache: cache, log: log}
}

func unreadKey(userID string) string { return "notifications:" + userID + ":unread" }

// Notify stores a notification rendered from typ and pushes it to the user's
// live connection when push is enabled.
func (s *notificationService) Notify(ctx context.Context, userID string, typ domain.NotificationType, data map[string]string) (*domain.Notification, error) {
	tmpl, ok := notificationTemplates[typ]
	if !ok {
		return nil, domain.ErrUnknownTemplate.WithMessage("Unknown notification template " + string(typ))
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	content := tmpl(data)
	n, err := s.repo.Create(ctx, &domain.Notification{
		UserID:    userID,
		Type:      typ,
		Title:     content.Title,
		Body:      content.Body,
		Icon:      content.Icon,
		Link:      content.Link,
		Metadata:  data,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	metrics.NotificationsCreatedTotal.WithLabelValues(string(typ)).Inc()
	s.invalidate(ctx, userID)

	if user.Preferences.Notifications.Push && s.pusher != nil {
		s.pusher.Push(userID, PushMessage{Type: "NOTIFICATION", Data: n})
	}
	return n, nil
}

func (s *notificationService) Unread(ctx context.Context, userID string) ([]*domain.Notification, error) {
	var cached []*domain.Notification
	if hit, err := s.cache.Get(ctx, unreadKey(userID), &cached); err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("notification cache read failed")
	} else if hit {
		return cached, nil
	}

	list, err := s.repo.ListUnread(ctx, userID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []*domain.Notification{}
	}
	if err := s.cache.Set(ctx, unreadKey(userID), list, unreadCacheTTL); err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("notification cache write failed")
	}
	return list, nil
}

func (s *notificationService) MarkRead(ctx context.Context, userID, id string) error {
	if err := s.repo.MarkRead(ctx, userID, id, time.Now().UTC()); err != nil {
		return err
	}
	s.invalidate(ctx, userID)
	return nil
}

func (s *notificationService) Delete(ctx context.Context, userID, id string) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return err
	}
	s.invalidate(ctx, userID)
	return nil
}

func (s *notificationService) UpdatePreferences(ctx context.Context, userID string, sw domain.NotificationSwitches) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	prefs := user.Preferences
	prefs.Notifications = sw
	return s.users.Update(ctx, userID, domain.UserUpdate{Preferences: &prefs})
}

func (s *notificationService) invalidate(ctx context.Context, userID string) {
	if err := s.cache.DeletePattern(ctx, "notifications:"+userID+":*"); err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("notification cache invalidation failed")
	}
}
