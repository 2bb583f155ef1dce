package ports

import (
	"context"

	"github.com/wamunyima3/CloudScribe/internal/core/domain"
)

// WordFilter selects dictionary entries.
type WordFilter struct {
	Query             string // partial match on original or any translation
	LanguageCode      string
	Tag               string
	Difficulty        int  // 0 = any
	IncludeUnapproved bool // only honoured for callers allowed to approve
	domain.PageRequest
}

// WordRepository persists words with their embedded translations.
// Create returns domain.ErrWordExists when (original, language) is taken.
// Replace returns domain.ErrStaleWrite when the stored version no longer
// matches w.Version, and advances w.Version on success.
type WordRepository interface {
	Create(ctx context.Context, w *domain.Word) (*domain.Word, error)
	FindByID(ctx context.Context, id string) (*domain.Word, error)
	Replace(ctx context.Context, w *domain.Word) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, f WordFilter) ([]*domain.Word, int64, error)
}
