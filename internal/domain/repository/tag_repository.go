package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cancer-not-cancer/api/internal/domain/model"
)

type TagRepository interface {
	ListByUser(ctx context.Context, userID int64) ([]model.Tag, error)
	// Create inserts the tag and, when ParentTagID is set, its relation
	// row in one transaction.
	Create(ctx context.Context, tx *sql.Tx, tag *model.Tag) error
	Delete(ctx context.Context, userID, tagID int64) error
}

type pgTagRepository struct {
	db *sql.DB
}

func NewPgTagRepository(db *sql.DB) TagRepository {
	return &pgTagRepository{db: db}
}

func (r *pgTagRepository) ListByUser(ctx context.Context, userID int64) ([]model.Tag, error) {
	query := `SELECT tags.id, tags.name, tags.user_id, tag_relations.parent_tag_id
	          FROM tags
	          LEFT JOIN tag_relations ON tag_relations.tag_id = tags.id
	          WHERE tags.user_id = $1
	          ORDER BY tags.id`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("pgTagRepository.ListByUser query: %w", err)
	}
	defer rows.Close()

	tags := []model.Tag{}
	for rows.Next() {
		var t model.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.UserID, &t.ParentTagID); err != nil {
			return nil, fmt.Errorf("pgTagRepository.ListByUser scan: %w", err)
		}
		tags = append(tags, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgTagRepository.ListByUser rows.Err: %w", err)
	}
	return tags, nil
}

func (r *pgTagRepository) Create(ctx context.Context, tx *sql.Tx, tag *model.Tag) error {
	query := `INSERT INTO tags (name, user_id) VALUES ($1, $2) RETURNING id`
	if err := tx.QueryRowContext(ctx, query, tag.Name, tag.UserID).Scan(&tag.ID); err != nil {
		return fmt.Errorf("pgTagRepository.Create: %w", err)
	}
	if tag.ParentTagID != nil {
		relQuery := `INSERT INTO tag_relations (tag_id, parent_tag_id) VALUES ($1, $2)`
		if _, err := tx.ExecContext(ctx, relQuery, tag.ID, *tag.ParentTagID); err != nil {
			return fmt.Errorf("pgTagRepository.Create relation: %w", err)
		}
	}
	return nil
}

func (r *pgTagRepository) Delete(ctx context.Context, userID, tagID int64) error {
	query := `DELETE FROM tags WHERE user_id = $1 AND id = $2`
	if _, err := r.db.ExecContext(ctx, query, userID, tagID); err != nil {
		return fmt.Errorf("pgTagRepository.Delete: %w", err)
	}
	return nil
}
