package ports

import (
	"context"

	"github.com/wisdombase/wisdombase-api/internal/core/domain"
)

type CreateDocumentInput struct {
	Title       string
	Content     string
	IsPublished bool
}

// UpdateDocumentInput carries optional changes; nil fields are left untouched.
type UpdateDocumentInput struct {
	Title       *string
	Content     *string
	IsPublished *bool
}

type DocumentList struct {
	Total int64
	Items []*domain.Document
}

// DocumentService defines document use cases. Permission checks happen in
// the HTTP layer before these are called.
type DocumentService interface {
	Create(ctx context.Context, actor Actor, input CreateDocumentInput) (*domain.Document, error)
	Get(ctx context.Context, id int64) (*domain.Document, error)
	List(ctx context.Context, filter DocumentFilter) (*DocumentList, error)
	Update(ctx context.Context, actor Actor, id int64, input UpdateDocumentInput) (*domain.Document, error)
	Delete(ctx context.Context, actor Actor, id int64) error
}
