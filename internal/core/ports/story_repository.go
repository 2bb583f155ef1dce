package ports

import (
	"context"

	"github.com/wamunyima3/CloudScribe/internal/core/domain"
)

// StorySort orders search results.
type StorySort string

const (
	SortNewest  StorySort = "newest"
	SortOldest  StorySort = "oldest"
	SortTitle   StorySort = "title"
	SortRatings StorySort = "ratings"
)

type StoryFilter struct {
	Query        string
	LanguageCode string
	Type         domain.StoryType
	Status       domain.StoryStatus
	Tag          string
	UserID       string
	Sort         StorySort
	domain.PageRequest
}

type StoryRepository interface {
	Create(ctx context.Context, s *domain.Story) (*domain.Story, error)
	FindByID(ctx context.Context, id string) (*domain.Story, error)
	Replace(ctx context.Context, s *domain.Story) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, f StoryFilter) ([]*domain.Story, int64, error)
}
