package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/wamunyima3/CloudScribe/internal/core/domain"
	"github.com/wamunyima3/CloudScribe/internal/core/ports"
	"github.com/wamunyima3/CloudScribe/internal/core/rbac"
)

type stubWordRepo struct {
	mu       sync.Mutex
	words    map[string]*domain.Word
	nextID   int
	searches int
	// beforeReplace runs once, ahead of the next Replace, without the lock held.
	beforeReplace func()
}

func newStubWordRepo() *stubWordRepo { return &stubWordRepo{words: make(map[string]*domain.Word)} }

func cloneWord(w *domain.Word) *domain.Word {
	c := *w
	c.Translations = append([]domain.Translation(nil), w.Translations...)
	return &c
}

func (r *stubWordRepo) Create(_ context.Context, w *domain.Word) (*domain.Word, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, x := range r.words {
		if x.Original == w.Original && x.LanguageCode == w.LanguageCode {
			return nil, domain.ErrWordExists
		}
	}
	r.nextID++
	c := cloneWord(w)
	c.ID = fmt.Sprintf("w%d", r.nextID)
	r.words[c.ID] = c
	return cloneWord(c), nil
}

func (r *stubWordRepo) FindByID(_ context.Context, id string) (*domain.Word, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.words[id]
	if !ok {
		return nil, domain.ErrWordNotFound
	}
	return cloneWord(w), nil
}

func (r *stubWordRepo) Replace(_ context.Context, w *domain.Word) error {
	r.mu.Lock()
	hook := r.beforeReplace
	r.beforeReplace = nil
	r.mu.Unlock()
	if hook != nil {
		hook()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.words[w.ID]
	if !ok {
		return domain.ErrWordNotFound
	}
	if cur.Version != w.Version {
		return domain.ErrStaleWrite
	}
	w.Version++
	r.words[w.ID] = cloneWord(w)
	return nil
}

func (r *stubWordRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.words[id]; !ok {
		return domain.ErrWordNotFound
	}
	delete(r.words, id)
	return nil
}

func (r *stubWordRepo) Search(_ context.Context, f ports.WordFilter) ([]*domain.Word, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.searches++
	var out []*domain.Word
	for _, w := range r.words {
		if !f.IncludeUnapproved && !w.Approved {
			continue
		}
		out = append(out, cloneWord(w))
	}
	return out, int64(len(out)), nil
}

type wordFixture struct {
	svc    ports.WordService
	repo   *stubWordRepo
	notes  *stubNotificationRepo
	mailer *stubMailer
	cache  *memCache
}

func newWordFixture() *wordFixture {
	users := newStubUserRepo()
	users.put(&domain.User{ID: "contrib", Email: "c@x.io", Username: "carl", Role: domain.RoleContributor, Preferences: domain.DefaultPreferences()})
	users.put(&domain.User{ID: "curator", Email: "k@x.io", Username: "kim", Role: domain.RoleCurator, Preferences: domain.DefaultPreferences()})

	f := &wordFixture{
		repo:   newStubWordRepo(),
		notes:  newStubNotificationRepo(),
		mailer: &stubMailer{},
		cache:  newMemCache(),
	}
	notifier := NewNotificationService(f.notes, users, &stubPusher{}, f.cache, zerolog.Nop())
	f.svc = NewWordService(f.repo, users, notifier, f.mailer, f.cache, rbac.DefaultTable(), zerolog.Nop())
	return f
}

var (
	contributor = domain.Identity{UserID: "contrib", Username: "carl", Role: domain.RoleContributor}
	curator     = domain.Identity{UserID: "curator", Username: "kim", Role: domain.RoleCurator}
)

func TestWordService_CreateApprovalDependsOnRole(t *testing.T) {
	f := newWordFixture()
	ctx := context.Background()

	w, err := f.svc.Create(ctx, contributor, ports.CreateWordInput{Original: "mwana", LanguageCode: "bem", Difficulty: 1})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if w.Approved {
		t.Fatalf("contributor words start unapproved")
	}
	w2, _ := f.svc.Create(ctx, curator, ports.CreateWordInput{Original: "amenshi", LanguageCode: "bem", Difficulty: 2})
	if !w2.Approved {
		t.Fatalf("curator words are approved on creation")
	}
}

func TestWordService_DuplicateRejected(t *testing.T) {
	f := newWordFixture()
	ctx := context.Background()
	_, _ = f.svc.Create(ctx, contributor, ports.CreateWordInput{Original: "mwana", LanguageCode: "bem"})
	_, err := f.svc.Create(ctx, contributor, ports.CreateWordInput{Original: "mwana", LanguageCode: "bem"})
	if !errors.Is(err, domain.ErrWordExists) {
		t.Fatalf("expected ErrWordExists, got %v", err)
	}
}

func TestWordService_ApproveNotifiesContributor(t *testing.T) {
	f := newWordFixture()
	ctx := context.Background()
	w, _ := f.svc.Create(ctx, contributor, ports.CreateWordInput{Original: "mwana", LanguageCode: "bem"})

	approved, err := f.svc.Approve(ctx, w.ID)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if !approved.Approved {
		t.Fatalf("expected approved word")
	}
	list, _ := f.notes.ListUnread(ctx, "contrib")
	if len(list) != 1 || list[0].Type != domain.NotifyContributionApproved {
		t.Fatalf("expected approval notification, got %+v", list)
	}
	mail, ok := f.mailer.last()
	if !ok || mail.Template != ports.MailContributionApproved || mail.To != "c@x.io" {
		t.Fatalf("expected approval email, got %+v", mail)
	}
}

func TestWordService_TranslationLifecycle(t *testing.T) {
	f := newWordFixture()
	ctx := context.Background()
	w, _ := f.svc.Create(ctx, contributor, ports.CreateWordInput{Original: "mwana", LanguageCode: "bem"})

	w, err := f.svc.AddTranslation(ctx, curator, w.ID, ports.TranslationInput{Text: "child", LanguageCode: "en"})
	if err != nil {
		t.Fatalf("add translation: %v", err)
	}
	tid := w.Translations[0].ID

	author, err := f.svc.TranslationAuthor(ctx, w.ID, tid)
	if err != nil || author != "curator" {
		t.Fatalf("expected curator as author, got %q (%v)", author, err)
	}
	list, _ := f.notes.ListUnread(ctx, "contrib")
	if len(list) != 1 || list[0].Type != domain.NotifyTranslationSuggested {
		t.Fatalf("expected translation notification for owner, got %+v", list)
	}

	w, _ = f.svc.VerifyTranslation(ctx, w.ID, tid)
	if !w.Translations[0].Verified {
		t.Fatalf("expected verified translation")
	}
	w, _ = f.svc.UpdateTranslation(ctx, w.ID, tid, "kid")
	if w.Translations[0].Text != "kid" || w.Translations[0].Verified {
		t.Fatalf("edit must reset verification, got %+v", w.Translations[0])
	}

	if _, err := f.svc.VerifyTranslation(ctx, w.ID, "missing"); !errors.Is(err, domain.ErrTranslationNotFound) {
		t.Fatalf("expected ErrTranslationNotFound, got %v", err)
	}
}

func TestWordService_SearchCachedUntilWrite(t *testing.T) {
	f := newWordFixture()
	ctx := context.Background()
	_, _ = f.svc.Create(ctx, curator, ports.CreateWordInput{Original: "amenshi", LanguageCode: "bem"})

	filter := ports.WordFilter{PageRequest: domain.PageRequest{Page: 1, Limit: 10}}
	items, total, err := f.svc.Search(ctx, filter)
	if err != nil || total != 1 || len(items) != 1 {
		t.Fatalf("unexpected search result %v %d %v", items, total, err)
	}
	_, _, _ = f.svc.Search(ctx, filter)
	if f.repo.searches != 1 {
		t.Fatalf("expected cached second search, repo searches=%d", f.repo.searches)
	}

	_, _ = f.svc.Create(ctx, curator, ports.CreateWordInput{Original: "umulilo", LanguageCode: "bem"})
	_, total, _ = f.svc.Search(ctx, filter)
	if total != 2 || f.repo.searches != 2 {
		t.Fatalf("expected cache invalidated by write, total=%d searches=%d", total, f.repo.searches)
	}
}

func TestWordService_Owner(t *testing.T) {
	f := newWordFixture()
	ctx := context.Background()
	w, _ := f.svc.Create(ctx, contributor, ports.CreateWordInput{Original: "mwana", LanguageCode: "bem"})

	owner, err := f.svc.Owner(ctx, w.ID)
	if err != nil || owner != "contrib" {
		t.Fatalf("expected contrib, got %q (%v)", owner, err)
	}
	if _, err := f.svc.Owner(ctx, "nope"); !errors.Is(err, domain.ErrWordNotFound) {
		t.Fatalf("expected ErrWordNotFound, got %v", err)
	}
}

func TestWordService_TranslationOnUnapprovedWord(t *testing.T) {
	f := newWordFixture()
	ctx := context.Background()
	w, _ := f.svc.Create(ctx, contributor, ports.CreateWordInput{Original: "mwana", LanguageCode: "bem"})

	stranger := domain.Identity{UserID: "u9", Username: "una", Role: domain.RoleUser}
	if _, err := f.svc.AddTranslation(ctx, stranger, w.ID, ports.TranslationInput{Text: "child", LanguageCode: "en"}); !errors.Is(err, domain.ErrWordNotFound) {
		t.Fatalf("expected ErrWordNotFound for stranger, got %v", err)
	}
	if _, err := f.svc.AddTranslation(ctx, contributor, w.ID, ports.TranslationInput{Text: "child", LanguageCode: "en"}); err != nil {
		t.Fatalf("contributor on own word: %v", err)
	}

	if _, err := f.svc.Approve(ctx, w.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}
	out, err := f.svc.AddTranslation(ctx, stranger, w.ID, ports.TranslationInput{Text: "kid", LanguageCode: "en"})
	if err != nil || len(out.Translations) != 2 {
		t.Fatalf("stranger on approved word: %v %+v", err, out)
	}
}

func TestWordService_ConcurrentTranslationsBothKept(t *testing.T) {
	f := newWordFixture()
	ctx := context.Background()
	w, _ := f.svc.Create(ctx, curator, ports.CreateWordInput{Original: "amenshi", LanguageCode: "bem"})

	var inner error
	f.repo.beforeReplace = func() {
		_, inner = f.svc.AddTranslation(ctx, contributor, w.ID, ports.TranslationInput{Text: "waters", LanguageCode: "en"})
	}
	out, err := f.svc.AddTranslation(ctx, curator, w.ID, ports.TranslationInput{Text: "water", LanguageCode: "en"})
	if err != nil || inner != nil {
		t.Fatalf("translations: %v / %v", err, inner)
	}
	if len(out.Translations) != 2 {
		t.Fatalf("expected both translations kept, got %+v", out.Translations)
	}
	stored, _ := f.svc.Get(ctx, w.ID)
	if len(stored.Translations) != 2 || stored.Version != 2 {
		t.Fatalf("expected two translations at version 2, got %+v", stored)
	}
}

func TestWordService_ApproveTwiceNotifiesOnce(t *testing.T) {
	f := newWordFixture()
	ctx := context.Background()
	w, _ := f.svc.Create(ctx, contributor, ports.CreateWordInput{Original: "mwana", LanguageCode: "bem"})

	_, _ = f.svc.Approve(ctx, w.ID)
	again, err := f.svc.Approve(ctx, w.ID)
	if err != nil || !again.Approved || again.Version != 1 {
		t.Fatalf("second approve must be a no-op, got %v %+v", err, again)
	}
	list, _ := f.notes.ListUnread(ctx, "contrib")
	if len(list) != 1 {
		t.Fatalf("expected a single approval notification, got %+v", list)
	}
}
