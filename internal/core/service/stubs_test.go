package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/wamunyima3/CloudScribe/internal/core/domain"
	"github.com/wamunyima3/CloudScribe/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	mu      sync.Mutex
	users   map[string]*domain.User
	nextID  int
	updates int // number of Update calls
	lastAct int // number of UpdateLastActive calls
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) clash(id, email, username string) bool {
	for _, u := range r.users {
		if u.ID != id && (u.Email == email || u.Username == username) {
			return true
		}
	}
	return false
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.clash("", user.Email, user.Username) {
		return nil, domain.ErrUserExists
	}
	r.nextID++
	c := cloneUser(user)
	c.ID = fmt.Sprintf("u%d", r.nextID)
	r.users[c.ID] = c
	return cloneUser(c), nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) Update(_ context.Context, id string, upd domain.UserUpdate) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates++
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	email, username := u.Email, u.Username
	if upd.Email != nil {
		email = *upd.Email
	}
	if upd.Username != nil {
		username = *upd.Username
	}
	if r.clash(id, email, username) {
		return nil, domain.ErrUserExists
	}
	u.Email, u.Username = email, username
	if upd.PasswordHash != nil {
		u.PasswordHash = *upd.PasswordHash
	}
	if upd.Role != nil {
		u.Role = *upd.Role
	}
	if upd.EmailVerified != nil {
		u.EmailVerified = *upd.EmailVerified
	}
	if upd.Preferences != nil {
		u.Preferences = *upd.Preferences
	}
	if upd.VerifyToken != nil {
		u.VerifyToken = *upd.VerifyToken
	}
	if upd.ResetToken != nil {
		u.ResetToken = *upd.ResetToken
	}
	if upd.ResetTokenExp != nil {
		exp := *upd.ResetTokenExp
		u.ResetTokenExp = &exp
	}
	if upd.LastLoginDate != nil {
		at := *upd.LastLoginDate
		u.LastLoginDate = &at
	}
	if upd.LastActive != nil {
		at := *upd.LastActive
		u.LastActive = &at
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) UpdateLastActive(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastAct++
	if u, ok := r.users[id]; ok {
		u.LastActive = &at
	}
	return nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *stubUserRepo) Search(_ context.Context, f ports.UserFilter) ([]*domain.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.User
	for _, u := range r.users {
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		if f.Query != "" && !strings.Contains(u.Email, f.Query) && !strings.Contains(u.Username, f.Query) {
			continue
		}
		out = append(out, cloneUser(u))
	}
	return out, int64(len(out)), nil
}

func (r *stubUserRepo) ConsumeVerifyToken(_ context.Context, hash string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if hash != "" && u.VerifyToken == hash {
			u.VerifyToken = ""
			u.EmailVerified = true
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrInvalidVerifyToken
}

func (r *stubUserRepo) ConsumeResetToken(_ context.Context, hash, pw string, now time.Time) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if hash != "" && u.ResetToken == hash && u.ResetTokenExp != nil && now.Before(*u.ResetTokenExp) {
			u.ResetToken = ""
			u.ResetTokenExp = nil
			u.PasswordHash = pw
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrInvalidResetToken
}

func (r *stubUserRepo) DigestRecipients(_ context.Context) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.User
	for _, u := range r.users {
		if u.EmailVerified && u.Preferences.Notifications.Email {
			out = append(out, cloneUser(u))
		}
	}
	return out, nil
}

// put seeds a user directly, bypassing Create.
func (r *stubUserRepo) put(u *domain.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID] = cloneUser(u)
}

type stubDenylist struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	err     error
}

func newStubDenylist() *stubDenylist { return &stubDenylist{revoked: make(map[string]time.Time)} }

func (d *stubDenylist) Revoke(_ context.Context, id string, until time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.revoked[id] = until
	return nil
}

func (d *stubDenylist) IsRevoked(_ context.Context, id string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return false, d.err
	}
	_, ok := d.revoked[id]
	return ok, nil
}

type stubMailer struct {
	mu   sync.Mutex
	sent []ports.Mail
}

func (m *stubMailer) Send(_ context.Context, msg ports.Mail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

func (m *stubMailer) last() (ports.Mail, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return ports.Mail{}, false
	}
	return m.sent[len(m.sent)-1], true
}

// tokenFromLink extracts the ?token= value of a mailed link.
func tokenFromLink(link string) string {
	i := strings.Index(link, "token=")
	if i < 0 {
		return ""
	}
	return link[i+len("token="):]
}

type stubAuditRepo struct {
	mu      sync.Mutex
	entries []*domain.AuditEntry
}

func (r *stubAuditRepo) Insert(_ context.Context, e *domain.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *e
	r.entries = append(r.entries, &c)
	return nil
}

func (r *stubAuditRepo) ListByUser(_ context.Context, userID string, limit int) ([]*domain.AuditEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.AuditEntry
	for i := len(r.entries) - 1; i >= 0 && len(out) < limit; i-- {
		if r.entries[i].UserID == userID {
			out = append(out, r.entries[i])
		}
	}
	return out, nil
}

func (r *stubAuditRepo) CountSince(_ context.Context, userID string, since time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, e := range r.entries {
		if e.UserID == userID && !e.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

type stubPusher struct {
	mu     sync.Mutex
	pushed map[string][]any
}

func (p *stubPusher) Push(userID string, payload any) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pushed == nil {
		p.pushed = make(map[string][]any)
	}
	p.pushed[userID] = append(p.pushed[userID], payload)
	return true
}

// memCache is a map-backed ports.Cache.
type memCache struct {
	mu   sync.Mutex
	data map[string]any
	hits int
}

func newMemCache() *memCache { return &memCache{data: make(map[string]any)} }

func (c *memCache) Get(_ context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return false, nil
	}
	c.hits++
	switch d := dst.(type) {
	case *[]*domain.Notification:
		*d = v.([]*domain.Notification)
	case *cachedWordPage:
		*d = v.(cachedWordPage)
	}
	return true, nil
}

func (c *memCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *memCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

func (c *memCache) DeletePattern(_ context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	prefix := strings.TrimSuffix(pattern, "*")
	for k := range c.data {
		if strings.HasPrefix(k, prefix) {
			delete(c.data, k)
		}
	}
	return nil
}
