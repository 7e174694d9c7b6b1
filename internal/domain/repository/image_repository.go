package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cancer-not-cancer/api/internal/common"
	"github.com/cancer-not-cancer/api/internal/domain/model"
)

type ImageRepository interface {
	Create(ctx context.Context, image *model.Image) error
	FindByID(ctx context.Context, id int64) (*model.Image, error)
	// NextRandom picks one image at random from the whole pool.
	NextRandom(ctx context.Context) (*model.Image, error)
}

type pgImageRepository struct {
	db *sql.DB
}

func NewPgImageRepository(db *sql.DB) ImageRepository {
	return &pgImageRepository{db: db}
}

func (r *pgImageRepository) Create(ctx context.Context, image *model.Image) error {
	query := `INSERT INTO images (path, hash, original_name, user_id, from_ip)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query,
		image.Path, image.Hash, image.OriginalName, image.UploaderID, image.FromIP,
	).Scan(&image.ID, &image.CreatedAt)
	if err != nil {
		return fmt.Errorf("pgImageRepository.Create: %w", err)
	}
	return nil
}

func (r *pgImageRepository) FindByID(ctx context.Context, id int64) (*model.Image, error) {
	query := `SELECT id, path, hash, original_name, user_id, from_ip, times_graded, created_at
	          FROM images WHERE id = $1`
	image := &model.Image{}
	var hash, originalName, fromIP sql.NullString
	var uploaderID sql.NullInt64
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&image.ID, &image.Path, &hash, &originalName, &uploaderID, &fromIP,
		&image.TimesGraded, &image.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgImageRepository.FindByID: %w", err)
	}
	image.Hash = hash.String
	image.OriginalName = originalName.String
	image.UploaderID = uploaderID.Int64
	image.FromIP = fromIP.String
	return image, nil
}

// NextRandom orders the whole table randomly. Not efficient at scale,
// but matches the grading flow: any image is a valid next candidate.
func (r *pgImageRepository) NextRandom(ctx context.Context) (*model.Image, error) {
	query := `SELECT id, path FROM images ORDER BY RANDOM() LIMIT 1`
	image := &model.Image{}
	err := r.db.QueryRowContext(ctx, query).Scan(&image.ID, &image.Path)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgImageRepository.NextRandom: %w", err)
	}
	return image, nil
}
