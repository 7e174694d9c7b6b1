package service

import (
	"context"

	"github.com/cancer-not-cancer/api/internal/domain/model"
	"github.com/cancer-not-cancer/api/internal/domain/repository"
)

// DataService serves the investigator-facing rollups. Every call is
// scoped to tasks the requesting investigator owns; taskID narrows the
// scope to one task when non-nil.
type DataService struct {
	ratingRepo repository.RatingRepository
}

func NewDataService(ratingRepo repository.RatingRepository) *DataService {
	return &DataService{ratingRepo: ratingRepo}
}

func (s *DataService) Totals(ctx context.Context, investigatorID int64, taskID *int64) (*model.RatingTotals, error) {
	return s.ratingRepo.Totals(ctx, investigatorID, taskID)
}

func (s *DataService) TotalsPerUser(ctx context.Context, investigatorID int64, taskID *int64) ([]model.UserRatingTotals, error) {
	return s.ratingRepo.TotalsPerUser(ctx, investigatorID, taskID)
}

func (s *DataService) TotalsPerImage(ctx context.Context, investigatorID int64, taskID *int64) ([]model.ImageRatingTotals, error) {
	return s.ratingRepo.TotalsPerImage(ctx, investigatorID, taskID)
}

func (s *DataService) Export(ctx context.Context, taskID int64) ([]model.ExportRow, error) {
	return s.ratingRepo.Export(ctx, taskID)
}
