package service

import (
	"context"
	"fmt"

	"github.com/wisdombase/wisdombase-api/internal/core/domain"
	"github.com/wisdombase/wisdombase-api/internal/core/ports"
)

const defaultLogPageSize = 20

// OperationLogService serves admin queries over the audit trail.
type OperationLogService struct {
	logs  ports.OperationLogRepository
	users ports.IdentityRepository
}

func NewOperationLogService(logs ports.OperationLogRepository, users ports.IdentityRepository) *OperationLogService {
	return &OperationLogService{logs: logs, users: users}
}

func (s *OperationLogService) List(ctx context.Context, filter ports.OperationLogFilter) (*ports.OperationLogList, error) {
	filter.Skip, filter.Limit = clampPage(filter.Skip, filter.Limit, defaultLogPageSize)
	items, total, err := s.logs.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list operation logs: %w", err)
	}
	return &ports.OperationLogList{Total: total, Items: items}, nil
}

func (s *OperationLogService) Get(ctx context.Context, id int64) (*domain.OperationLog, error) {
	return s.logs.FindByID(ctx, id)
}

// ListByUser fails with domain.ErrUserNotFound when the user does not exist.
func (s *OperationLogService) ListByUser(ctx context.Context, userID int64, skip, limit int) (*ports.OperationLogList, error) {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.List(ctx, ports.OperationLogFilter{UserID: userID, Skip: skip, Limit: limit})
}

func (s *OperationLogService) Delete(ctx context.Context, id int64) error {
	return s.logs.Delete(ctx, id)
}

// DeleteBatch removes the listed records and reports how many existed.
func (s *OperationLogService) DeleteBatch(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return s.logs.DeleteMany(ctx, ids)
}
