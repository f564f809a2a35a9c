package ports

import (
	"context"

	"github.com/wisdombase/wisdombase-api/internal/core/domain"
)

// OperationLogList is a page of audit records plus the total count.
type OperationLogList struct {
	Total int64
	Items []*domain.OperationLog
}

// OperationLogService defines admin queries over the audit trail.
type OperationLogService interface {
	List(ctx context.Context, filter OperationLogFilter) (*OperationLogList, error)
	Get(ctx context.Context, id int64) (*domain.OperationLog, error)
	ListByUser(ctx context.Context, userID int64, skip, limit int) (*OperationLogList, error)
	Delete(ctx context.Context, id int64) error
	DeleteBatch(ctx context.Context, ids []int64) (int64, error)
}
