package ports

import (
	"context"

	"github.com/wamunyima3/CloudScribe/internal/core/domain"
)

type TranslationInput struct {
	Text         string
	LanguageCode string
}

type CreateWordInput struct {
	Original     string
	LanguageCode string
	Difficulty   int
	Tags         []string
	Examples     []string
	Translations []TranslationInput
}

// UpdateWordInput uses nil for unchanged fields.
type UpdateWordInput struct {
	Original     *string
	LanguageCode *string
	Difficulty   *int
	Tags         []string
	Examples     []string
}

type WordService interface {
	Search(ctx context.Context, f WordFilter) ([]*domain.Word, int64, error)
	Get(ctx context.Context, id string) (*domain.Word, error)
	Create(ctx context.Context, actor domain.Identity, in CreateWordInput) (*domain.Word, error)
	Update(ctx context.Context, id string, in UpdateWordInput) (*domain.Word, error)
	Delete(ctx context.Context, id string) error
	Approve(ctx context.Context, id string) (*domain.Word, error)
	AddTranslation(ctx context.Context, actor domain.Identity, wordID string, in TranslationInput) (*domain.Word, error)
	UpdateTranslation(ctx context.Context, wordID, translationID, text string) (*domain.Word, error)
	VerifyTranslation(ctx context.Context, wordID, translationID string) (*domain.Word, error)

	// Owner and TranslationAuthor back the ownership guards.
	Owner(ctx context.Context, wordID string) (string, error)
	TranslationAuthor(ctx context.Context, wordID, translationID string) (string, error)
}
