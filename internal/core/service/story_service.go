package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/wamunyima3/CloudScribe/internal/core/domain"
	"github.com/wamunyima3/CloudScribe/internal/core/ports"
	"github.com/wamunyima3/CloudScribe/internal/core/rbac"
)

type storyService struct {
	repo     ports.StoryRepository
	users    ports.UserRepository
	notifier ports.NotificationService
	mailer   ports.Mailer
	table    *rbac.Table
	log      zerolog.Logger
}

func NewStoryService(
	repo ports.StoryRepository,
	users ports.UserRepository,
	notifier ports.NotificationService,
	mailer ports.Mailer,
	table *rbac.Table,
	log zerolog.Logger,
) ports.StoryService {
	return &storyService{repo: repo, users: users, notifier: notifier, mailer: mailer, table: table, log: log}
}

func (s *storyService) Search(ctx context.Context, f ports.StoryFilter) ([]*domain.Story, int64, error) {
	f.PageRequest = f.PageRequest.Normalize()
	if f.Sort == "" {
		f.Sort = ports.SortNewest
	}
	return s.repo.Search(ctx, f)
}

func (s *storyService) Get(ctx context.Context, id string) (*domain.Story, error) {
	return s.repo.FindByID(ctx, id)
}

// Create stores a story awaiting moderation.
func (s *storyService) Create(ctx context.Context, actor domain.Identity, in ports.CreateStoryInput) (*domain.Story, error) {
	now := time.Now().UTC()
	return s.repo.Create(ctx, &domain.Story{
		Title:        in.Title,
		Content:      in.Content,
		LanguageCode: in.LanguageCode,
		Type:         in.Type,
		Status:       domain.StoryPending,
		UserID:       actor.UserID,
		Tags:         nonNil(in.Tags),
		Comments:     []domain.Comment{},
		Ratings:      []domain.Rating{},
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

func (s *storyService) Update(ctx context.Context, id string, in ports.UpdateStoryInput) (*domain.Story, error) {
	return s.mutate(ctx, id, func(st *domain.Story) error {
		if in.Title != nil {
			st.Title = *in.Title
		}
		if in.Content != nil {
			st.Content = *in.Content
		}
		if in.LanguageCode != nil {
			st.LanguageCode = *in.LanguageCode
		}
		if in.Type != nil {
			st.Type = *in.Type
		}
		if in.Tags != nil {
			st.Tags = in.Tags
		}
		return nil
	})
}

func (s *storyService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *storyService) Moderate(ctx context.Context, id string, status domain.StoryStatus, reason string) (*domain.Story, error) {
	if status != domain.StoryApproved && status != domain.StoryRejected {
		return nil, domain.ValidationFailed([]domain.FieldIssue{{Field: "status", Message: "must be APPROVED or REJECTED"}})
	}
	var wasApproved bool
	saved, err := s.mutate(ctx, id, func(st *domain.Story) error {
		wasApproved = st.Status == domain.StoryApproved
		st.Status = status
		st.ModerationReason = reason
		return nil
	})
	if err != nil {
		return nil, err
	}

	if status == domain.StoryApproved && !wasApproved {
		data := map[string]string{"type": string(saved.Type), "title": saved.Title, "id": saved.ID}
		if _, err := s.notifier.Notify(ctx, saved.UserID, domain.NotifyContributionApproved, data); err != nil {
			s.log.Warn().Err(err).Str("story_id", saved.ID).Msg("approval notification failed")
		}
		s.mailAuthor(ctx, saved)
	}
	return saved, nil
}

// AddComment appends a comment. Stories the actor may not see yet are
// reported as not found.
func (s *storyService) AddComment(ctx context.Context, actor domain.Identity, storyID, content string) (*domain.Story, error) {
	c := domain.Comment{
		ID:        uuid.NewString(),
		UserID:    actor.UserID,
		Username:  actor.Username,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	saved, err := s.mutate(ctx, storyID, func(st *domain.Story) error {
		if !s.visible(actor, st) {
			return domain.ErrStoryNotFound
		}
		st.Comments = append(st.Comments, c)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if saved.UserID != actor.UserID {
		data := map[string]string{"commenter": actor.Username, "type": string(saved.Type), "id": saved.ID, "commentId": c.ID}
		if _, err := s.notifier.Notify(ctx, saved.UserID, domain.NotifyNewComment, data); err != nil {
			s.log.Warn().Err(err).Str("story_id", saved.ID).Msg("comment notification failed")
		}
	}
	return saved, nil
}

func (s *storyService) DeleteComment(ctx context.Context, storyID, commentID string) (*domain.Story, error) {
	return s.mutate(ctx, storyID, func(st *domain.Story) error {
		kept := make([]domain.Comment, 0, len(st.Comments))
		for _, c := range st.Comments {
			if c.ID != commentID {
				kept = append(kept, c)
			}
		}
		if len(kept) == len(st.Comments) {
			return domain.ErrCommentNotFound
		}
		st.Comments = kept
		return nil
	})
}

// Rate records value for actor, replacing any earlier rating by the same user.
func (s *storyService) Rate(ctx context.Context, actor domain.Identity, storyID string, value int) (*domain.Story, error) {
	if value < 1 || value > 5 {
		return nil, domain.ValidationFailed([]domain.FieldIssue{{Field: "rating", Message: "must be between 1 and 5"}})
	}
	return s.mutate(ctx, storyID, func(st *domain.Story) error {
		if !s.visible(actor, st) {
			return domain.ErrStoryNotFound
		}
		for i := range st.Ratings {
			if st.Ratings[i].UserID == actor.UserID {
				st.Ratings[i].Value = value
				return nil
			}
		}
		st.Ratings = append(st.Ratings, domain.Rating{UserID: actor.UserID, Value: value})
		return nil
	})
}

func (s *storyService) Owner(ctx context.Context, storyID string) (string, error) {
	st, err := s.repo.FindByID(ctx, storyID)
	if err != nil {
		return "", err
	}
	return st.UserID, nil
}

func (s *storyService) CommentAuthor(ctx context.Context, storyID, commentID string) (string, error) {
	st, err := s.repo.FindByID(ctx, storyID)
	if err != nil {
		return "", err
	}
	c := st.FindComment(commentID)
	if c == nil {
		return "", domain.ErrCommentNotFound
	}
	return c.UserID, nil
}

func (s *storyService) visible(actor domain.Identity, st *domain.Story) bool {
	return st.Status == domain.StoryApproved || s.table.SeesUnpublished(actor, st.UserID, domain.PermStoryModerate)
}

// mutate applies fn to a fresh copy of the story and stores it, starting over
// when a concurrent write got there first.
func (s *storyService) mutate(ctx context.Context, id string, fn func(*domain.Story) error) (*domain.Story, error) {
	for attempt := 1; ; attempt++ {
		st, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := fn(st); err != nil {
			return nil, err
		}
		st.UpdatedAt = time.Now().UTC()
		err = s.repo.Replace(ctx, st)
		if err == nil {
			return st, nil
		}
		if !errors.Is(err, domain.ErrStaleWrite) || attempt == maxWriteAttempts {
			return nil, err
		}
		s.log.Debug().Str("story_id", id).Int("attempt", attempt).Msg("story changed concurrently, retrying")
	}
}

func (s *storyService) mailAuthor(ctx context.Context, st *domain.Story) {
	if s.mailer == nil {
		return
	}
	author, err := s.users.FindByID(ctx, st.UserID)
	if err != nil || !author.Preferences.Notifications.Email {
		return
	}
	err = s.mailer.Send(ctx, ports.Mail{
		To:       author.Email,
		Template: ports.MailContributionApproved,
		Data:     map[string]any{"Username": author.Username, "Type": string(st.Type), "Title": st.Title},
	})
	if err != nil {
		s.log.Error().Err(err).Str("story_id", st.ID).Msg("failed to queue approval email")
	}
}
