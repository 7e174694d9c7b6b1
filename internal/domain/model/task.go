package model

// Task is a grading prompt owned by one investigator. Its observers,
// images and tags live in join tables and are replaced wholesale on
// update.
type Task struct {
	ID           int64  `json:"id"`
	ShortName    string `json:"short_name"`
	Prompt       string `json:"prompt"`
	Investigator int64  `json:"investigator,omitempty"`
}

// TaskTableRow is one row of the investigator's task overview: the task
// plus assignment counts and the averaged observer progress.
type TaskTableRow struct {
	ID            int64   `json:"id"`
	ShortName     string  `json:"short_name"`
	Prompt        string  `json:"prompt"`
	ImageCount    int     `json:"image_count"`
	ObserverCount int     `json:"observer_count"`
	Progress      float64 `json:"progress"`
}
