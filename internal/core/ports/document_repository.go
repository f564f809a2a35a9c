package ports

import (
	"context"

	"github.com/wisdombase/wisdombase-api/internal/core/domain"
)

// DocumentFilter carries query parameters for listing documents.
type DocumentFilter struct {
	AuthorID  int64 // 0 = any author
	Published *bool // nil = any
	Search    string
	Skip      int
	Limit     int
}

// DocumentRepository defines persistence operations for documents.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) (*domain.Document, error)
	FindByID(ctx context.Context, id int64) (*domain.Document, error)
	List(ctx context.Context, filter DocumentFilter) ([]*domain.Document, int64, error)
	Update(ctx context.Context, doc *domain.Document) error
	Delete(ctx context.Context, id int64) error
	DeleteByAuthor(ctx context.Context, authorID int64) (int64, error)
}
