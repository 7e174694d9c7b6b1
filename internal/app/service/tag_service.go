package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cancer-not-cancer/api/internal/common"
	"github.com/cancer-not-cancer/api/internal/domain/model"
	"github.com/cancer-not-cancer/api/internal/domain/repository"
)

type TagService struct {
	tagRepo repository.TagRepository
	db      *sql.DB
}

func NewTagService(tagRepo repository.TagRepository, db *sql.DB) *TagService {
	return &TagService{tagRepo: tagRepo, db: db}
}

type CreateTagRequest struct {
	Name        string `json:"name"`
	ParentTagID *int64 `json:"parent_tag_id,omitempty"`
}

func (s *TagService) ListTags(ctx context.Context, userID int64) ([]model.Tag, error) {
	return s.tagRepo.ListByUser(ctx, userID)
}

func (s *TagService) CreateTag(ctx context.Context, userID int64, req CreateTagRequest) (*model.Tag, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("tag name is required: %w", common.ErrBadRequest)
	}

	tag := &model.Tag{
		Name:        req.Name,
		UserID:      userID,
		ParentTagID: req.ParentTagID,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, common.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Rollback if not committed

	if err := s.tagRepo.Create(ctx, tx, tag); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, common.Errorf("failed to commit transaction: %w", err)
	}
	return tag, nil
}

func (s *TagService) DeleteTag(ctx context.Context, userID, tagID int64) error {
	return s.tagRepo.Delete(ctx, userID, tagID)
}
