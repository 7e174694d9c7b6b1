package model

// Tag is a user-owned image label. A tag may have at most one parent
// (single-level hierarchy through tag_relations).
type Tag struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	UserID      int64  `json:"user_id,omitempty"`
	ParentTagID *int64 `json:"parent_tag_id,omitempty"`
}

// TaskTag is a tag with whether it is applied to a given task.
type TaskTag struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Applied bool   `json:"applied"`
}
