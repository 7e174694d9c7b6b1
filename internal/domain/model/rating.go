package model

import "time"

// Rating values. The column accepts any smallint; the service boundary
// rejects anything outside this set.
const (
	RatingNo    = -1
	RatingMaybe = 0
	RatingYes   = 1
)

// Rating is one grading event ("hotornot" row). Append-only; a user may
// rate the same image within the same task more than once. TaskID is
// nil for gradings made outside any task.
type Rating struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	ImageID   int64     `json:"image_id"`
	TaskID    *int64    `json:"task_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	FromIP    string    `json:"from_ip"`
	CreatedAt time.Time `json:"created_at"`
}

// RatingTotals are rollup counts over hotornot rows. Zero-row scopes
// yield zeros, never nulls.
type RatingTotals struct {
	Total int `json:"total"`
	Yes   int `json:"yes"`
	No    int `json:"no"`
	Maybe int `json:"maybe"`
}

// UserRatingTotals is RatingTotals grouped by grading user.
type UserRatingTotals struct {
	UserID   int64  `json:"user_id"`
	Fullname string `json:"fullname"`
	RatingTotals
}

// ImageRatingTotals is RatingTotals grouped by image.
type ImageRatingTotals struct {
	ImageID int64  `json:"image_id"`
	Path    string `json:"path"`
	RatingTotals
}

// ExportRow is one line of the per-task export: every (image, observer)
// pairing with its rating, including assigned images nobody graded.
type ExportRow struct {
	TaskID       int64   `json:"task_id"`
	ImageID      int64   `json:"image_id"`
	ObserverID   *int64  `json:"observer_id"`
	Rating       *int    `json:"rating"`
	OriginalName *string `json:"original_name"`
}
