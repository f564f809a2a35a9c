package service

import (
	"time"

	"github.com/wisdombase/wisdombase-api/internal/core/domain"
	"github.com/wisdombase/wisdombase-api/internal/core/ports"
)

// record signals one audit entry. A nil sink drops it.
func record(sink ports.AuditSink, actorID int64, action, resourceType string, resourceID int64, description, ip string, at time.Time) {
	if sink == nil {
		return
	}
	rid := resourceID
	sink.Record(domain.OperationLog{
		UserID:       actorID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   &rid,
		Description:  description,
		IPAddress:    ip,
		CreatedAt:    at.UTC(),
	})
}

// clampPage normalises skip/limit to 0 <= skip and 1 <= limit <= maxPageSize.
func clampPage(skip, limit, def int) (int, int) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = def
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return skip, limit
}

const maxPageSize = 100
