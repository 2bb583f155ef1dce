package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/wamunyima3/CloudScribe/internal/core/domain"
	"github.com/wamunyima3/CloudScribe/internal/core/ports"
	"github.com/wamunyima3/CloudScribe/internal/core/rbac"
)

const wordSearchTTL = 10 * time.Minute

// maxWriteAttempts bounds the read-modify-write retries on a stale version.
const maxWriteAttempts = 3

var errUnchanged = errors.New("unchanged")

// cachedWordPage is the cached form of one search result page.
type cachedWordPage struct {
	Items []*domain.Word `json:"items"`
	Total int64          `json:"total"`
}

type wordService struct {
	repo     ports.WordRepository
	users    ports.UserRepository
	notifier ports.NotificationService
	mailer   ports.Mailer
	cache    ports.Cache
	table    *rbac.Table
	log      zerolog.Logger
}

func NewWordService(
	repo ports.WordRepository,
	users ports.UserRepository,
	notifier ports.NotificationService,
	mailer ports.Mailer,
	cache ports.Cache,
	table *rbac.Table,
	log zerolog.Logger,
) ports.WordService {
	return &wordService{
		repo:     repo,
		users:    users,
		notifier: notifier,
		mailer:   mailer,
		cache:    cache,
		table:    table,
		log:      log,
	}
}

func wordSearchKey(f ports.WordFilter) string {
	return fmt.Sprintf("words:search:q=%s:l=%s:t=%s:d=%d:u=%t:p=%d:n=%d",
		strings.ToLower(f.Query), f.LanguageCode, f.Tag, f.Difficulty, f.IncludeUnapproved, f.Page, f.Limit)
}

func (s *wordService) Search(ctx context.Context, f ports.WordFilter) ([]*domain.Word, int64, error) {
	f.PageRequest = f.PageRequest.Normalize()
	key := wordSearchKey(f)

	var page cachedWordPage
	if hit, err := s.cache.Get(ctx, key, &page); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("word cache read failed")
	} else if hit {
		return page.Items, page.Total, nil
	}

	items, total, err := s.repo.Search(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	if err := s.cache.Set(ctx, key, cachedWordPage{Items: items, Total: total}, wordSearchTTL); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("word cache write failed")
	}
	return items, total, nil
}

func (s *wordService) Get(ctx context.Context, id string) (*domain.Word, error) {
	return s.repo.FindByID(ctx, id)
}

// Create stores a new entry. Entries from callers who may approve words are
// approved immediately.
func (s *wordService) Create(ctx context.Context, actor domain.Identity, in ports.CreateWordInput) (*domain.Word, error) {
	now := time.Now().UTC()
	w := &domain.Word{
		Original:     in.Original,
		LanguageCode: in.LanguageCode,
		Difficulty:   in.Difficulty,
		Approved:     s.table.HasPermission(actor.Role, domain.PermWordApprove),
		AddedByID:    actor.UserID,
		Tags:         nonNil(in.Tags),
		Examples:     in.Examples,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	for _, t := range in.Translations {
		w.Translations = append(w.Translations, domain.Translation{
			ID:           uuid.NewString(),
			Text:         t.Text,
			LanguageCode: t.LanguageCode,
			AddedByID:    actor.UserID,
			CreatedAt:    now,
		})
	}
	if w.Translations == nil {
		w.Translations = []domain.Translation{}
	}

	created, err := s.repo.Create(ctx, w)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return created, nil
}

func (s *wordService) Update(ctx context.Context, id string, in ports.UpdateWordInput) (*domain.Word, error) {
	return s.mutate(ctx, id, func(w *domain.Word) error {
		if in.Original != nil {
			w.Original = *in.Original
		}
		if in.LanguageCode != nil {
			w.LanguageCode = *in.LanguageCode
		}
		if in.Difficulty != nil {
			w.Difficulty = *in.Difficulty
		}
		if in.Tags != nil {
			w.Tags = in.Tags
		}
		if in.Examples != nil {
			w.Examples = in.Examples
		}
		return nil
	})
}

func (s *wordService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *wordService) Approve(ctx context.Context, id string) (*domain.Word, error) {
	newlyApproved := false
	saved, err := s.mutate(ctx, id, func(w *domain.Word) error {
		if w.Approved {
			return errUnchanged
		}
		w.Approved = true
		newlyApproved = true
		return nil
	})
	if err != nil || !newlyApproved {
		return saved, err
	}

	data := map[string]string{"type": "WORD", "title": saved.Original, "id": saved.ID}
	if _, err := s.notifier.Notify(ctx, saved.AddedByID, domain.NotifyContributionApproved, data); err != nil {
		s.log.Warn().Err(err).Str("word_id", saved.ID).Msg("approval notification failed")
	}
	s.mailContributor(ctx, saved)
	return saved, nil
}

// AddTranslation suggests a translation. Unapproved words are only open to
// their contributor and to approvers.
func (s *wordService) AddTranslation(ctx context.Context, actor domain.Identity, wordID string, in ports.TranslationInput) (*domain.Word, error) {
	t := domain.Translation{
		ID:           uuid.NewString(),
		Text:         in.Text,
		LanguageCode: in.LanguageCode,
		AddedByID:    actor.UserID,
		CreatedAt:    time.Now().UTC(),
	}
	saved, err := s.mutate(ctx, wordID, func(w *domain.Word) error {
		if !w.Approved && !s.table.SeesUnpublished(actor, w.AddedByID, domain.PermWordApprove) {
			return domain.ErrWordNotFound
		}
		w.Translations = append(w.Translations, t)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if saved.AddedByID != "" && saved.AddedByID != actor.UserID {
		data := map[string]string{"translator": actor.Username, "word": saved.Original, "wordId": saved.ID}
		if _, err := s.notifier.Notify(ctx, saved.AddedByID, domain.NotifyTranslationSuggested, data); err != nil {
			s.log.Warn().Err(err).Str("word_id", saved.ID).Msg("translation notification failed")
		}
	}
	return saved, nil
}

// UpdateTranslation changes the text; an edited translation needs verifying again.
func (s *wordService) UpdateTranslation(ctx context.Context, wordID, translationID, text string) (*domain.Word, error) {
	return s.mutate(ctx, wordID, func(w *domain.Word) error {
		t := w.FindTranslation(translationID)
		if t == nil {
			return domain.ErrTranslationNotFound
		}
		t.Text = text
		t.Verified = false
		return nil
	})
}

func (s *wordService) VerifyTranslation(ctx context.Context, wordID, translationID string) (*domain.Word, error) {
	return s.mutate(ctx, wordID, func(w *domain.Word) error {
		t := w.FindTranslation(translationID)
		if t == nil {
			return domain.ErrTranslationNotFound
		}
		t.Verified = true
		return nil
	})
}

func (s *wordService) Owner(ctx context.Context, wordID string) (string, error) {
	w, err := s.repo.FindByID(ctx, wordID)
	if err != nil {
		return "", err
	}
	return w.AddedByID, nil
}

func (s *wordService) TranslationAuthor(ctx context.Context, wordID, translationID string) (string, error) {
	w, err := s.repo.FindByID(ctx, wordID)
	if err != nil {
		return "", err
	}
	t := w.FindTranslation(translationID)
	if t == nil {
		return "", domain.ErrTranslationNotFound
	}
	return t.AddedByID, nil
}

// mutate applies fn to a fresh copy of the word and stores it, starting over
// when a concurrent write got there first. fn returns errUnchanged to skip
// the write.
func (s *wordService) mutate(ctx context.Context, id string, fn func(*domain.Word) error) (*domain.Word, error) {
	for attempt := 1; ; attempt++ {
		w, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := fn(w); err != nil {
			if errors.Is(err, errUnchanged) {
				return w, nil
			}
			return nil, err
		}
		w.UpdatedAt = time.Now().UTC()
		err = s.repo.Replace(ctx, w)
		if err == nil {
			s.invalidate(ctx)
			return w, nil
		}
		if !errors.Is(err, domain.ErrStaleWrite) || attempt == maxWriteAttempts {
			return nil, err
		}
		s.log.Debug().Str("word_id", id).Int("attempt", attempt).Msg("word changed concurrently, retrying")
	}
}

func (s *wordService) invalidate(ctx context.Context) {
	if err := s.cache.DeletePattern(ctx, "words:*"); err != nil {
		s.log.Warn().Err(err).Msg("word cache invalidation failed")
	}
}

func (s *wordService) mailContributor(ctx context.Context, w *domain.Word) {
	if s.mailer == nil || w.AddedByID == "" {
		return
	}
	owner, err := s.users.FindByID(ctx, w.AddedByID)
	if err != nil || !owner.Preferences.Notifications.Email {
		return
	}
	err = s.mailer.Send(ctx, ports.Mail{
		To:       owner.Email,
		Template: ports.MailContributionApproved,
		Data:     map[string]any{"Username": owner.Username, "Type": "word", "Title": w.Original},
	})
	if err != nil {
		s.log.Error().Err(err).Str("word_id", w.ID).Msg("failed to queue approval email")
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
