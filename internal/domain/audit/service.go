package audit

import (
	"context"
	"strings"

	"manage-breast-screening/internal/platform/logger"

	"github.com/google/uuid"
)

// Service is the read side of the audit trail.
type Service struct {
	repo Repository
	log  logger.Logger
}

func NewService(repo Repository, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{repo: repo, log: log}
}

func (s *Service) ListForObject(ctx context.Context, contentType, objectID string) ([]Log, error) {
	contentType = strings.TrimSpace(contentType)
	if contentType == "" {
		return nil, ErrInvalidInput
	}
	id, err := uuid.Parse(strings.TrimSpace(objectID))
	if err != nil {
		return nil, ErrInvalidInput
	}
	return s.repo.ListForObject(ctx, contentType, id)
}
