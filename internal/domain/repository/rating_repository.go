package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cancer-not-cancer/api/internal/domain/model"
)

// RatingRepository covers the append-only hotornot table and its
// rollups. Insert and IncrementTimesGraded take a transaction: a rating
// row and its image counter bump must commit together.
type RatingRepository interface {
	Insert(ctx context.Context, tx *sql.Tx, rating *model.Rating) error
	IncrementTimesGraded(ctx context.Context, tx *sql.Tx, imageID int64) error

	// Rollups are scoped to tasks owned by investigatorID; a nil taskID
	// means all of them.
	Totals(ctx context.Context, investigatorID int64, taskID *int64) (*model.RatingTotals, error)
	TotalsPerUser(ctx context.Context, investigatorID int64, taskID *int64) ([]model.UserRatingTotals, error)
	TotalsPerImage(ctx context.Context, investigatorID int64, taskID *int64) ([]model.ImageRatingTotals, error)
	Export(ctx context.Context, taskID int64) ([]model.ExportRow, error)
}

type pgRatingRepository struct {
	db *sql.DB
}

func NewPgRatingRepository(db *sql.DB) RatingRepository {
	return &pgRatingRepository{db: db}
}

func (r *pgRatingRepository) Insert(ctx context.Context, tx *sql.Tx, rating *model.Rating) error {
	query := `INSERT INTO hotornot (user_id, image_id, task_id, rating, comment, from_ip)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING id, created_at`
	err := tx.QueryRowContext(ctx, query,
		rating.UserID, rating.ImageID, rating.TaskID, rating.Rating, rating.Comment, rating.FromIP,
	).Scan(&rating.ID, &rating.CreatedAt)
	if err != nil {
		return fmt.Errorf("pgRatingRepository.Insert: %w", err)
	}
	return nil
}

func (r *pgRatingRepository) IncrementTimesGraded(ctx context.Context, tx *sql.Tx, imageID int64) error {
	query := `UPDATE images SET times_graded = times_graded + 1 WHERE id = $1`
	_, err := tx.ExecContext(ctx, query, imageID)
	if err != nil {
		return fmt.Errorf("pgRatingRepository.IncrementTimesGraded: %w", err)
	}
	return nil
}

func (r *pgRatingRepository) Totals(ctx context.Context, investigatorID int64, taskID *int64) (*model.RatingTotals, error) {
	query := `SELECT
	              COUNT(h.id) AS total,
	              COALESCE(SUM(CASE WHEN h.rating = 1 THEN 1 ELSE 0 END), 0) AS yes,
	              COALESCE(SUM(CASE WHEN h.rating = -1 THEN 1 ELSE 0 END), 0) AS no,
	              COALESCE(SUM(CASE WHEN h.rating = 0 THEN 1 ELSE 0 END), 0) AS maybe
	          FROM hotornot h
	          JOIN tasks ON h.task_id = tasks.id
	          WHERE (h.task_id = $1 OR $1::bigint IS NULL)
	              AND tasks.investigator = $2`
	totals := &model.RatingTotals{}
	err := r.db.QueryRowContext(ctx, query, taskID, investigatorID).Scan(
		&totals.Total, &totals.Yes, &totals.No, &totals.Maybe,
	)
	if err != nil {
		return nil, fmt.Errorf("pgRatingRepository.Totals: %w", err)
	}
	return totals, nil
}

func (r *pgRatingRepository) TotalsPerUser(ctx context.Context, investigatorID int64, taskID *int64) ([]model.UserRatingTotals, error) {
	query := `SELECT
	              h.user_id,
	              u.fullname,
	              COUNT(*) AS total,
	              SUM(CASE WHEN h.rating = 1 THEN 1 ELSE 0 END) AS yes,
	              SUM(CASE WHEN h.rating = -1 THEN 1 ELSE 0 END) AS no,
	              SUM(CASE WHEN h.rating = 0 THEN 1 ELSE 0 END) AS maybe
	          FROM hotornot AS h
	          LEFT JOIN users AS u ON h.user_id = u.id
	          JOIN tasks ON h.task_id = tasks.id
	          WHERE (h.task_id = $1 OR $1::bigint IS NULL)
	              AND tasks.investigator = $2
	          GROUP BY h.user_id, u.fullname
	          ORDER BY h.user_id`
	rows, err := r.db.QueryContext(ctx, query, taskID, investigatorID)
	if err != nil {
		return nil, fmt.Errorf("pgRatingRepository.TotalsPerUser query: %w", err)
	}
	defer rows.Close()

	result := []model.UserRatingTotals{}
	for rows.Next() {
		var t model.UserRatingTotals
		if err := rows.Scan(&t.UserID, &t.Fullname, &t.Total, &t.Yes, &t.No, &t.Maybe); err != nil {
			return nil, fmt.Errorf("pgRatingRepository.TotalsPerUser scan: %w", err)
		}
		result = append(result, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgRatingRepository.TotalsPerUser rows.Err: %w", err)
	}
	return result, nil
}

func (r *pgRatingRepository) TotalsPerImage(ctx context.Context, investigatorID int64, taskID *int64) ([]model.ImageRatingTotals, error) {
	query := `SELECT
	              h.image_id,
	              im.path,
	              COUNT(*) AS total,
	              SUM(CASE WHEN h.rating = 1 THEN 1 ELSE 0 END) AS yes,
	              SUM(CASE WHEN h.rating = -1 THEN 1 ELSE 0 END) AS no,
	              SUM(CASE WHEN h.rating = 0 THEN 1 ELSE 0 END) AS maybe
	          FROM hotornot AS h
	          LEFT JOIN images AS im ON h.image_id = im.id
	          JOIN tasks ON h.task_id = tasks.id
	          WHERE (h.task_id = $1 OR $1::bigint IS NULL)
	              AND tasks.investigator = $2
	          GROUP BY h.image_id, im.path
	          ORDER BY h.image_id`
	rows, err := r.db.QueryContext(ctx, query, taskID, investigatorID)
	if err != nil {
		return nil, fmt.Errorf("pgRatingRepository.TotalsPerImage query: %w", err)
	}
	defer rows.Close()

	result := []model.ImageRatingTotals{}
	for rows.Next() {
		var t model.ImageRatingTotals
		if err := rows.Scan(&t.ImageID, &t.Path, &t.Total, &t.Yes, &t.No, &t.Maybe); err != nil {
			return nil, fmt.Errorf("pgRatingRepository.TotalsPerImage scan: %w", err)
		}
		result = append(result, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgRatingRepository.TotalsPerImage rows.Err: %w", err)
	}
	return result, nil
}

// Export returns every (assigned image, rating) pairing for a task.
// The union keeps assigned-but-ungraded images (left side) and gradings
// of images that are still assigned (right side).
func (r *pgRatingRepository) Export(ctx context.Context, taskID int64) ([]model.ExportRow, error) {
	query := `SELECT ti.task_id, ti.image_id, h.user_id AS observer_id, h.rating, im.original_name
	          FROM task_images ti
	          LEFT JOIN hotornot h ON h.task_id = ti.task_id AND h.image_id = ti.image_id
	          LEFT JOIN images im ON im.id = ti.image_id
	          WHERE ti.task_id = $1
	          UNION
	          SELECT h.task_id, h.image_id, h.user_id AS observer_id, h.rating, im.original_name
	          FROM hotornot h
	          JOIN task_images ti ON h.task_id = ti.task_id AND h.image_id = ti.image_id
	          LEFT JOIN images im ON im.id = h.image_id
	          WHERE h.task_id = $1`
	rows, err := r.db.QueryContext(ctx, query, taskID)
	if err != nil {
		return nil, fmt.Errorf("pgRatingRepository.Export query: %w", err)
	}
	defer rows.Close()

	result := []model.ExportRow{}
	for rows.Next() {
		var row model.ExportRow
		if err := rows.Scan(&row.TaskID, &row.ImageID, &row.ObserverID, &row.Rating, &row.OriginalName); err != nil {
			return nil, fmt.Errorf("pgRatingRepository.Export scan: %w", err)
		}
		result = append(result, row)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgRatingRepository.Export rows.Err: %w", err)
	}
	return result, nil
}
