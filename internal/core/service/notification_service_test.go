package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/wamunyima3/CloudScribe/internal/core/domain"
	"github.com/wamunyima3/CloudScribe/internal/core/ports"
)

type stubNotificationRepo struct {
	mu     sync.Mutex
	items  map[string]*domain.Notification
	nextID int
	lists  int // ListUnread calls
}

func newStubNotificationRepo() *stubNotificationRepo {
	return &stubNotificationRepo{items: make(map[string]*domain.Notification)}
}

func (r *stubNotificationRepo) Create(_ context.Context, n *domain.Notification) (*domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	c := *n
	c.ID = fmt.Sprintf("n%d", r.nextID)
	r.items[c.ID] = &c
	out := c
	return &out, nil
}

func (r *stubNotificationRepo) ListUnread(_ context.Context, userID string) ([]*domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lists++
	var out []*domain.Notification
	for _, n := range r.items {
		if n.UserID == userID && !n.Read {
			c := *n
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *stubNotificationRepo) MarkRead(_ context.Context, userID, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.items[id]
	if !ok || n.UserID != userID {
		return domain.ErrNotificationNotFound
	}
	n.Read = true
	n.ReadAt = &at
	return nil
}

func (r *stubNotificationRepo) Delete(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.items[id]
	if !ok || n.UserID != userID {
		return domain.ErrNotificationNotFound
	}
	delete(r.items, id)
	return nil
}

type notifyFixture struct {
	svc    ports.NotificationService
	repo   *stubNotificationRepo
	users  *stubUserRepo
	pusher *stubPusher
	cache  *memCache
}

func newNotifyFixture() *notifyFixture {
	f := &notifyFixture{
		repo:   newStubNotificationRepo(),
		users:  newStubUserRepo(),
		pusher: &stubPusher{},
		cache:  newMemCache(),
	}
	f.users.put(&domain.User{ID: "u1", Username: "alice", Preferences: domain.DefaultPreferences()})
	f.svc = NewNotificationService(f.repo, f.users, f.pusher, f.cache, zerolog.Nop())
	return f
}

func TestNotificationService_NotifyRendersAndPushes(t *testing.T) {
	f := newNotifyFixture()

	n, err := f.svc.Notify(context.Background(), "u1", domain.NotifyNewComment, map[string]string{
		"commenter": "bob", "type": "STORY", "id": "s1", "commentId": "c9",
	})
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	if n.Title != "New Comment" || !strings.Contains(n.Body, "bob commented on your story") {
		t.Fatalf("unexpected content %+v", n)
	}
	if n.Link != "/storys/s1#comment-c9" {
		t.Fatalf("unexpected link %q", n.Link)
	}
	if len(f.pusher.pushed["u1"]) != 1 {
		t.Fatalf("expected one push to u1")
	}
}

func TestNotificationService_UnknownType(t *testing.T) {
	f := newNotifyFixture()
	_, err := f.svc.Notify(context.Background(), "u1", domain.NotificationType("bogus"), nil)
	if !errors.Is(err, domain.ErrUnknownTemplate) {
		t.Fatalf("expected ErrUnknownTemplate, got %v", err)
	}
}

func TestNotificationService_PushDisabled(t *testing.T) {
	f := newNotifyFixture()
	prefs := domain.DefaultPreferences()
	prefs.Notifications.Push = false
	f.users.put(&domain.User{ID: "u2", Preferences: prefs})

	if _, err := f.svc.Notify(context.Background(), "u2", domain.NotifySystemUpdate, map[string]string{"message": "hi"}); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(f.pusher.pushed["u2"]) != 0 {
		t.Fatalf("push must respect preferences")
	}
}

func TestNotificationService_UnreadIsCachedAndInvalidated(t *testing.T) {
	f := newNotifyFixture()
	ctx := context.Background()
	n, _ := f.svc.Notify(ctx, "u1", domain.NotifySystemUpdate, map[string]string{"message": "hi"})

	if list, _ := f.svc.Unread(ctx, "u1"); len(list) != 1 {
		t.Fatalf("expected one unread, got %d", len(list))
	}
	_, _ = f.svc.Unread(ctx, "u1")
	if f.repo.lists != 1 {
		t.Fatalf("second read should hit the cache, repo lists=%d", f.repo.lists)
	}

	if err := f.svc.MarkRead(ctx, "u1", n.ID); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if list, _ := f.svc.Unread(ctx, "u1"); len(list) != 0 {
		t.Fatalf("expected cache to be invalidated after mark read, got %d", len(list))
	}
}

func TestNotificationService_ScopedToOwner(t *testing.T) {
	f := newNotifyFixture()
	ctx := context.Background()
	n, _ := f.svc.Notify(ctx, "u1", domain.NotifySystemUpdate, map[string]string{"message": "hi"})

	if err := f.svc.MarkRead(ctx, "intruder", n.ID); !errors.Is(err, domain.ErrNotificationNotFound) {
		t.Fatalf("expected not found for another user, got %v", err)
	}
	if err := f.svc.Delete(ctx, "intruder", n.ID); !errors.Is(err, domain.ErrNotificationNotFound) {
		t.Fatalf("expected not found for another user, got %v", err)
	}
}

func TestNotificationService_UpdatePreferences(t *testing.T) {
	f := newNotifyFixture()
	u, err := f.svc.UpdatePreferences(context.Background(), "u1", domain.NotificationSwitches{Email: false, Push: true, InApp: true})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if u.Preferences.Notifications.Email {
		t.Fatalf("expected email switch off")
	}
	if u.Preferences.Theme != "system" {
		t.Fatalf("other preferences must be preserved")
	}
}
