package service

import (
	"context"

	"github.com/alexanderramin/baseline/internal/domain"
	"github.com/alexanderramin/baseline/internal/repository"
)

type masterDataService struct {
	masterData repository.MasterDataRepo
}

func NewMasterDataService(masterData repository.MasterDataRepo) MasterDataService {
	return &masterDataService{masterData: masterData}
}

func (s *masterDataService) ListKind(ctx context.Context, kind string) ([]*domain.MasterDataRef, error) {
	return s.masterData.ListKind(ctx, kind)
}

func (s *masterDataService) Seed(ctx context.Context, kind string, refs []domain.MasterDataRef) error {
	for _, r := range refs {
		if r.ID == "" {
			return &domain.ValidationError{Fields: []domain.FieldError{
				{Field: "id", Message: "reference id is required"},
			}}
		}
	}
	return s.masterData.Seed(ctx, kind, refs)
}
