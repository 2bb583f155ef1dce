package ports

import (
	"context"
	"time"

	"github.com/wamunyima3/CloudScribe/internal/core/domain"
)

type AuditRepository interface {
	Insert(ctx context.Context, e *domain.AuditEntry) error
	ListByUser(ctx context.Context, userID string, limit int) ([]*domain.AuditEntry, error)
	CountSince(ctx context.Context, userID string, since time.Time) (int64, error)
}
