package model

import "time"

type Image struct {
	ID           int64     `json:"id"`
	Path         string    `json:"path"`
	Hash         string    `json:"hash"`
	OriginalName string    `json:"original_name"`
	UploaderID   int64     `json:"user_id"`
	FromIP       string    `json:"from_ip"`
	TimesGraded  int       `json:"times_graded"`
	CreatedAt    time.Time `json:"created_at"`
}

// NextImage is the minimal payload handed to a grader: the image id and
// a URL resolvable against the public image host.
type NextImage struct {
	ID  int64  `json:"id"`
	URL string `json:"url"`
}

// TaskPickerImage is one row of the image picker for a task: the image
// with its owning tag (and the tag's parent, when one exists) plus
// whether the image is currently selected for the task.
type TaskPickerImage struct {
	TagID         int64   `json:"tag_id"`
	TagName       string  `json:"tag_name"`
	ParentTagID   *int64  `json:"parent_tag_id"`
	ParentTagName *string `json:"parent_tag_name"`
	ImageID       *int64  `json:"image_id"`
	Path          *string `json:"path"`
	Hash          *string `json:"hash"`
	OwnerID       *int64  `json:"owner_id"`
	OriginalName  *string `json:"original_name"`
	Selected      bool    `json:"selected"`
}
