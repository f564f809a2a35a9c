package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/wisdombase/wisdombase-api/internal/core/domain"
	"github.com/wisdombase/wisdombase-api/internal/core/ports"
)

const defaultDocumentPageSize = 20

type DocumentService struct {
	repo  ports.DocumentRepository
	audit ports.AuditSink
	log   zerolog.Logger
	now   func() time.Time
}

func NewDocumentService(repo ports.DocumentRepository, audit ports.AuditSink, log zerolog.Logger) *DocumentService {
	return &DocumentService{repo: repo, audit: audit, log: log, now: time.Now}
}

func (s *DocumentService) Create(ctx context.Context, actor ports.Actor, in ports.CreateDocumentInput) (*domain.Document, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}

	now := s.now().UTC()
	doc, err := s.repo.Create(ctx, &domain.Document{
		Title:       title,
		Content:     in.Content,
		AuthorID:    actor.ID,
		IsPublished: in.IsPublished,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return nil, err
	}

	record(s.audit, actor.ID, domain.ActionCreate, domain.ResourceDocument, doc.ID,
		fmt.Sprintf("Created document %s", doc.Title), actor.IP, now)
	s.log.Info().Int64("document_id", doc.ID).Int64("author_id", actor.ID).Msg("document created")

	return doc, nil
}

func (s *DocumentService) Get(ctx context.Context, id int64) (*domain.Document, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *DocumentService) List(ctx context.Context, filter ports.DocumentFilter) (*ports.DocumentList, error) {
	filter.Skip, filter.Limit = clampPage(filter.Skip, filter.Limit, defaultDocumentPageSize)
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return &ports.DocumentList{Total: total, Items: items}, nil
}

func (s *DocumentService) Update(ctx context.Context, actor ports.Actor, id int64, in ports.UpdateDocumentInput) (*domain.Document, error) {
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: title cannot be empty", domain.ErrInvalidInput)
		}
		doc.Title = title
	}
	if in.Content != nil {
		doc.Content = *in.Content
	}
	if in.IsPublished != nil {
		doc.IsPublished = *in.IsPublished
	}

	now := s.now().UTC()
	doc.UpdatedAt = now
	if err := s.repo.Update(ctx, doc); err != nil {
		return nil, err
	}

	record(s.audit, actor.ID, domain.ActionUpdate, domain.ResourceDocument, id,
		fmt.Sprintf("Updated document %s", doc.Title), actor.IP, now)

	return doc, nil
}

func (s *DocumentService) Delete(ctx context.Context, actor ports.Actor, id int64) error {
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	record(s.audit, actor.ID, domain.ActionDelete, domain.ResourceDocument, id,
		fmt.Sprintf("Deleted document %s", doc.Title), actor.IP, s.now())
	return nil
}
