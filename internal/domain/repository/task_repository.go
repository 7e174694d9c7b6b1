package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/cancer-not-cancer/api/internal/domain/model"
)

// TaskRepository covers tasks and their three join tables. The
// Delete*/Add* pairs take a transaction so callers can replace an
// association set atomically.
type TaskRepository interface {
	ListByInvestigator(ctx context.Context, investigatorID int64) ([]model.Task, error)
	ListAssigned(ctx context.Context, userID int64) ([]model.Task, error)
	Create(ctx context.Context, task *model.Task) (int64, error)
	Update(ctx context.Context, investigatorID int64, task *model.Task) error
	Delete(ctx context.Context, investigatorID, taskID int64) error

	Table(ctx context.Context, investigatorID int64) ([]model.TaskTableRow, error)
	QuickProgress(ctx context.Context, taskID int64) (float64, error)

	Observers(ctx context.Context, taskID int64) ([]model.Observer, error)
	DeleteObservers(ctx context.Context, tx *sql.Tx, taskID int64) error
	AddObservers(ctx context.Context, tx *sql.Tx, taskID int64, userIDs []int64) error

	TaskTags(ctx context.Context, investigatorID, taskID int64) ([]model.TaskTag, error)
	DeleteTaskTags(ctx context.Context, tx *sql.Tx, taskID int64) error
	AddTaskTags(ctx context.Context, tx *sql.Tx, taskID int64, tagIDs []int64) error

	PickerImages(ctx context.Context, investigatorID, taskID int64) ([]model.TaskPickerImage, error)
	DeleteTaskImages(ctx context.Context, tx *sql.Tx, taskID int64) error
	AddTaskImages(ctx context.Context, tx *sql.Tx, taskID int64, imageIDs []int64) error
}

type pgTaskRepository struct {
	db *sql.DB
}

func NewPgTaskRepository(db *sql.DB) TaskRepository {
	return &pgTaskRepository{db: db}
}

func (r *pgTaskRepository) ListByInvestigator(ctx context.Context, investigatorID int64) ([]model.Task, error) {
	query := `SELECT id, short_name, prompt FROM tasks WHERE investigator = $1 ORDER BY id`
	return r.scanTasks(ctx, query, "ListByInvestigator", investigatorID)
}

// ListAssigned returns the tasks a user grades for, regardless of owner.
func (r *pgTaskRepository) ListAssigned(ctx context.Context, userID int64) ([]model.Task, error) {
	query := `SELECT tasks.id, tasks.short_name, tasks.prompt
	          FROM observers
	          JOIN tasks ON tasks.id = observers.task_id
	          WHERE observers.user_id = $1
	          ORDER BY tasks.id`
	return r.scanTasks(ctx, query, "ListAssigned", userID)
}

func (r *pgTaskRepository) scanTasks(ctx context.Context, query, method string, arg interface{}) ([]model.Task, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("pgTaskRepository.%s query: %w", method, err)
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		var t model.Task
		if err := rows.Scan(&t.ID, &t.ShortName, &t.Prompt); err != nil {
			return nil, fmt.Errorf("pgTaskRepository.%s scan: %w", method, err)
		}
		tasks = append(tasks, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgTaskRepository.%s rows.Err: %w", method, err)
	}
	return tasks, nil
}

func (r *pgTaskRepository) Create(ctx context.Context, task *model.Task) (int64, error) {
	query := `INSERT INTO tasks (short_name, prompt, investigator) VALUES ($1, $2, $3) RETURNING id`
	if err := r.db.QueryRowContext(ctx, query, task.ShortName, task.Prompt, task.Investigator).Scan(&task.ID); err != nil {
		return 0, fmt.Errorf("pgTaskRepository.Create: %w", err)
	}
	return task.ID, nil
}

// Update only touches rows the investigator owns; updating someone
// else's task is a silent no-op, same as the ownership filter on reads.
func (r *pgTaskRepository) Update(ctx context.Context, investigatorID int64, task *model.Task) error {
	query := `UPDATE tasks SET short_name = $1, prompt = $2 WHERE investigator = $3 AND id = $4`
	if _, err := r.db.ExecContext(ctx, query, task.ShortName, task.Prompt, investigatorID, task.ID); err != nil {
		return fmt.Errorf("pgTaskRepository.Update: %w", err)
	}
	return nil
}

func (r *pgTaskRepository) Delete(ctx context.Context, investigatorID, taskID int64) error {
	query := `DELETE FROM tasks WHERE investigator = $1 AND id = $2`
	if _, err := r.db.ExecContext(ctx, query, investigatorID, taskID); err != nil {
		return fmt.Errorf("pgTaskRepository.Delete: %w", err)
	}
	return nil
}

// Table builds the investigator's overview in one statement: per-task
// image and observer counts, and overall progress averaged over the
// observers who have graded at least one image. Per-observer progress
// is distinct graded images over assigned images.
func (r *pgTaskRepository) Table(ctx context.Context, investigatorID int64) ([]model.TaskTableRow, error) {
	query := `WITH image_count_table AS (
	        SELECT ti.task_id AS task_id, COUNT(DISTINCT ti.image_id) AS image_count
	        FROM task_images ti
	        JOIN tasks ON tasks.id = ti.task_id
	        WHERE tasks.investigator = $1
	        GROUP BY ti.task_id
	    ),
	    observer_count_table AS (
	        SELECT tasks.id AS task_id, COUNT(DISTINCT observers.user_id) AS observer_count
	        FROM tasks
	        LEFT JOIN observers ON observers.task_id = tasks.id
	        WHERE tasks.investigator = $1
	        GROUP BY tasks.id
	    ),
	    progress_table AS (
	        SELECT h.task_id, h.user_id,
	            COUNT(DISTINCT h.image_id)::float / total_images.total_images AS progress_percentage
	        FROM hotornot h
	        JOIN (
	            SELECT ti.task_id AS tt_id, COUNT(DISTINCT ti.image_id) AS total_images
	            FROM task_images ti
	            GROUP BY ti.task_id
	        ) AS total_images ON total_images.tt_id = h.task_id
	        GROUP BY h.task_id, h.user_id, total_images.total_images
	    ),
	    overall AS (
	        SELECT progress_table.task_id AS task_id, AVG(progress_table.progress_percentage) AS overall_progress
	        FROM progress_table
	        GROUP BY progress_table.task_id
	    )
	    SELECT tasks.id, tasks.short_name, tasks.prompt,
	        COALESCE(image_count_table.image_count, 0) AS image_count,
	        COALESCE(observer_count_table.observer_count, 0) AS observer_count,
	        COALESCE(overall.overall_progress, 0) AS progress
	    FROM tasks
	    LEFT JOIN image_count_table ON tasks.id = image_count_table.task_id
	    LEFT JOIN observer_count_table ON tasks.id = observer_count_table.task_id
	    LEFT JOIN overall ON tasks.id = overall.task_id
	    WHERE tasks.investigator = $1
	    ORDER BY tasks.id`

	rows, err := r.db.QueryContext(ctx, query, investigatorID)
	if err != nil {
		return nil, fmt.Errorf("pgTaskRepository.Table query: %w", err)
	}
	defer rows.Close()

	table := []model.TaskTableRow{}
	for rows.Next() {
		var row model.TaskTableRow
		if err := rows.Scan(&row.ID, &row.ShortName, &row.Prompt, &row.ImageCount, &row.ObserverCount, &row.Progress); err != nil {
			return nil, fmt.Errorf("pgTaskRepository.Table scan: %w", err)
		}
		table = append(table, row)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgTaskRepository.Table rows.Err: %w", err)
	}
	return table, nil
}

// QuickProgress is the cheap approximation: rating rows over
// (assigned images x assigned observers). Repeat gradings can push it
// past 1.0, so it can disagree with Table's per-observer average.
func (r *pgTaskRepository) QuickProgress(ctx context.Context, taskID int64) (float64, error) {
	query := `SELECT COALESCE(gradings.total::float / NULLIF(images.total * observers.total, 0), 0) AS progress
	    FROM (
	        SELECT COUNT(*) AS total FROM hotornot WHERE hotornot.task_id = $1
	    ) AS gradings,
	    (
	        SELECT COUNT(*) AS total FROM task_images WHERE task_images.task_id = $1
	    ) AS images,
	    (
	        SELECT COUNT(DISTINCT observers.user_id) AS total FROM observers WHERE observers.task_id = $1
	    ) AS observers`
	var progress float64
	if err := r.db.QueryRowContext(ctx, query, taskID).Scan(&progress); err != nil {
		return 0, fmt.Errorf("pgTaskRepository.QuickProgress: %w", err)
	}
	return progress, nil
}

// Observers lists every enabled pathologist, flagging the ones assigned
// to the task.
func (r *pgTaskRepository) Observers(ctx context.Context, taskID int64) ([]model.Observer, error) {
	query := `SELECT
	        users.id,
	        users.fullname AS name,
	        CASE WHEN observers.task_id IS NULL THEN FALSE ELSE TRUE END AS applied
	    FROM users
	    LEFT JOIN observers ON observers.user_id = users.id AND observers.task_id = $1
	    WHERE users.is_enabled AND users.is_pathologist
	    ORDER BY users.id`
	rows, err := r.db.QueryContext(ctx, query, taskID)
	if err != nil {
		return nil, fmt.Errorf("pgTaskRepository.Observers query: %w", err)
	}
	defer rows.Close()

	observers := []model.Observer{}
	for rows.Next() {
		var o model.Observer
		if err := rows.Scan(&o.ID, &o.Name, &o.Applied); err != nil {
			return nil, fmt.Errorf("pgTaskRepository.Observers scan: %w", err)
		}
		observers = append(observers, o)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgTaskRepository.Observers rows.Err: %w", err)
	}
	return observers, nil
}

func (r *pgTaskRepository) DeleteObservers(ctx context.Context, tx *sql.Tx, taskID int64) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM observers WHERE task_id = $1`, taskID); err != nil {
		return fmt.Errorf("pgTaskRepository.DeleteObservers: %w", err)
	}
	return nil
}

func (r *pgTaskRepository) AddObservers(ctx context.Context, tx *sql.Tx, taskID int64, userIDs []int64) error {
	return insertPairs(ctx, tx, "pgTaskRepository.AddObservers", "observers", "user_id", taskID, userIDs)
}

func (r *pgTaskRepository) TaskTags(ctx context.Context, investigatorID, taskID int64) ([]model.TaskTag, error) {
	query := `SELECT
	        tags.id,
	        tags.name,
	        CASE WHEN task_tags.task_id IS NULL THEN FALSE ELSE TRUE END AS applied
	    FROM tags
	    LEFT JOIN task_tags ON task_tags.tag_id = tags.id AND task_tags.task_id = $1
	    WHERE tags.user_id = $2
	    ORDER BY tags.id`
	rows, err := r.db.QueryContext(ctx, query, taskID, investigatorID)
	if err != nil {
		return nil, fmt.Errorf("pgTaskRepository.TaskTags query: %w", err)
	}
	defer rows.Close()

	tags := []model.TaskTag{}
	for rows.Next() {
		var t model.TaskTag
		if err := rows.Scan(&t.ID, &t.Name, &t.Applied); err != nil {
			return nil, fmt.Errorf("pgTaskRepository.TaskTags scan: %w", err)
		}
		tags = append(tags, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgTaskRepository.TaskTags rows.Err: %w", err)
	}
	return tags, nil
}

func (r *pgTaskRepository) DeleteTaskTags(ctx context.Context, tx *sql.Tx, taskID int64) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM task_tags WHERE task_id = $1`, taskID); err != nil {
		return fmt.Errorf("pgTaskRepository.DeleteTaskTags: %w", err)
	}
	return nil
}

func (r *pgTaskRepository) AddTaskTags(ctx context.Context, tx *sql.Tx, taskID int64, tagIDs []int64) error {
	return insertPairs(ctx, tx, "pgTaskRepository.AddTaskTags", "task_tags", "tag_id", taskID, tagIDs)
}

// PickerImages lists the investigator's images grouped under their tags
// (with parent tag columns), flagging the ones selected for the task.
func (r *pgTaskRepository) PickerImages(ctx context.Context, investigatorID, taskID int64) ([]model.TaskPickerImage, error) {
	query := `SELECT
	        tags.id AS tag_id,
	        tags.name AS tag_name,
	        tag_relations.parent_tag_id AS parent_tag_id,
	        tags2.name AS parent_tag_name,
	        images.id AS image_id,
	        images.path, images.hash,
	        images.user_id AS owner_id,
	        images.original_name AS original_name,
	        CASE WHEN selected.picked IS NOT NULL THEN TRUE ELSE FALSE END AS selected
	    FROM tags
	    LEFT JOIN image_tags ON image_tags.tag_id = tags.id
	    LEFT JOIN images ON images.id = image_tags.image_id
	    LEFT JOIN tag_relations ON tag_relations.tag_id = tags.id
	    LEFT JOIN tags AS tags2 ON tag_relations.parent_tag_id = tags2.id
	    LEFT JOIN (
	        SELECT DISTINCT task_images.image_id AS image_id, TRUE AS picked
	        FROM task_images
	        WHERE task_id = $1
	    ) selected ON selected.image_id = images.id
	    WHERE tags.user_id = $2
	    ORDER BY tags.id`
	rows, err := r.db.QueryContext(ctx, query, taskID, investigatorID)
	if err != nil {
		return nil, fmt.Errorf("pgTaskRepository.PickerImages query: %w", err)
	}
	defer rows.Close()

	images := []model.TaskPickerImage{}
	for rows.Next() {
		var img model.TaskPickerImage
		if err := rows.Scan(
			&img.TagID, &img.TagName, &img.ParentTagID, &img.ParentTagName,
			&img.ImageID, &img.Path, &img.Hash, &img.OwnerID, &img.OriginalName,
			&img.Selected,
		); err != nil {
			return nil, fmt.Errorf("pgTaskRepository.PickerImages scan: %w", err)
		}
		images = append(images, img)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgTaskRepository.PickerImages rows.Err: %w", err)
	}
	return images, nil
}

func (r *pgTaskRepository) DeleteTaskImages(ctx context.Context, tx *sql.Tx, taskID int64) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM task_images WHERE task_id = $1`, taskID); err != nil {
		return fmt.Errorf("pgTaskRepository.DeleteTaskImages: %w", err)
	}
	return nil
}

func (r *pgTaskRepository) AddTaskImages(ctx context.Context, tx *sql.Tx, taskID int64, imageIDs []int64) error {
	return insertPairs(ctx, tx, "pgTaskRepository.AddTaskImages", "task_images", "image_id", taskID, imageIDs)
}

// insertPairs bulk-inserts (task_id, id) rows into a join table with a
// single multi-values statement.
func insertPairs(ctx context.Context, tx *sql.Tx, method, table, column string, taskID int64, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "INSERT INTO %s (task_id, %s) VALUES ", table, column)
	args := make([]interface{}, 0, len(ids)+1)
	args = append(args, taskID)
	for i, id := range ids {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "($1, $%d)", i+2)
		args = append(args, id)
	}
	if _, err := tx.ExecContext(ctx, sb.String(), args...); err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	return nil
}
