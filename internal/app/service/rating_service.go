package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cancer-not-cancer/api/internal/common"
	"github.com/cancer-not-cancer/api/internal/domain/model"
	"github.com/cancer-not-cancer/api/internal/domain/repository"
)

type RatingService struct {
	ratingRepo repository.RatingRepository
	db         *sql.DB
}

func NewRatingService(ratingRepo repository.RatingRepository, db *sql.DB) *RatingService {
	return &RatingService{ratingRepo: ratingRepo, db: db}
}

// SubmitRatingRequest is the POST /archive body. TaskID is optional; a
// grading without one is stored with a NULL task.
type SubmitRatingRequest struct {
	ImageID int64  `json:"id"`
	TaskID  *int64 `json:"taskId"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// SubmitRating appends a hotornot row and bumps the image's grading
// counter in one transaction; neither write lands without the other.
func (s *RatingService) SubmitRating(ctx context.Context, userID int64, fromIP string, req SubmitRatingRequest) (*model.Rating, error) {
	switch req.Rating {
	case model.RatingNo, model.RatingMaybe, model.RatingYes:
	default:
		return nil, fmt.Errorf("rating must be -1, 0 or 1: %w", common.ErrBadRequest)
	}

	rating := &model.Rating{
		UserID:  userID,
		ImageID: req.ImageID,
		TaskID:  req.TaskID,
		Rating:  req.Rating,
		Comment: req.Comment,
		FromIP:  fromIP,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, common.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Rollback if not committed

	if err := s.ratingRepo.Insert(ctx, tx, rating); err != nil {
		return nil, common.Errorf("failed to insert rating: %w", err)
	}
	if err := s.ratingRepo.IncrementTimesGraded(ctx, tx, rating.ImageID); err != nil {
		return nil, common.Errorf("failed to update grading counter: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, common.Errorf("failed to commit transaction: %w", err)
	}
	return rating, nil
}
