package ports

import (
	"context"

	"github.com/wamunyima3/CloudScribe/internal/core/domain"
)

type CreateStoryInput struct {
	Title        string
	Content      string
	LanguageCode string
	Type         domain.StoryType
	Tags         []string
}

type UpdateStoryInput struct {
	Title        *string
	Content      *string
	LanguageCode *string
	Type         *domain.StoryType
	Tags         []string
}

type StoryService interface {
	Search(ctx context.Context, f StoryFilter) ([]*domain.Story, int64, error)
	Get(ctx context.Context, id string) (*domain.Story, error)
	Create(ctx context.Context, actor domain.Identity, in CreateStoryInput) (*domain.Story, error)
	Update(ctx context.Context, id string, in UpdateStoryInput) (*domain.Story, error)
	Delete(ctx context.Context, id string) error
	Moderate(ctx context.Context, id string, status domain.StoryStatus, reason string) (*domain.Story, error)
	AddComment(ctx context.Context, actor domain.Identity, storyID, content string) (*domain.Story, error)
	DeleteComment(ctx context.Context, storyID, commentID string) (*domain.Story, error)
	Rate(ctx context.Context, actor domain.Identity, storyID string, value int) (*domain.Story, error)

	Owner(ctx context.Context, storyID string) (string, error)
	CommentAuthor(ctx context.Context, storyID, commentID string) (string, error)
}
