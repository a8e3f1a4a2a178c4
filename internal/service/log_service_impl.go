package service

import (
	"context"

	"github.com/alexanderramin/baseline/internal/domain"
	"github.com/alexanderramin/baseline/internal/repository"
)

type logService struct {
	log repository.ModificationLogRepo
}

func NewLogService(log repository.ModificationLogRepo) LogService {
	return &logService{log: log}
}

func (s *logService) Query(ctx context.Context, projectID string, f domain.LogFilter) ([]*domain.ModificationLogEntry, error) {
	return s.log.Query(ctx, projectID, f)
}
