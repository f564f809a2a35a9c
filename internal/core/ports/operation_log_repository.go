package ports

import (
	"context"

	"github.com/wisdombase/wisdombase-api/internal/core/domain"
)

// OperationLogFilter carries the optional filters for listing audit records.
// Zero values mean "no filter".
type OperationLogFilter struct {
	UserID       int64
	Action       string
	ResourceType string
	Skip         int
	Limit        int
}

// OperationLogRepository persists audit records. Records are never updated.
type OperationLogRepository interface {
	Append(ctx context.Context, entry *domain.OperationLog) error
	FindByID(ctx context.Context, id int64) (*domain.OperationLog, error)
	// List returns a page ordered newest first, and the total matching count.
	List(ctx context.Context, filter OperationLogFilter) ([]*domain.OperationLog, int64, error)
	Delete(ctx context.Context, id int64) error
	DeleteMany(ctx context.Context, ids []int64) (int64, error)
}

// AuditSink receives audit records signalled by the use-case services.
// Implementations decide when and how the record is persisted.
type AuditSink interface {
	Record(entry domain.OperationLog)
}
