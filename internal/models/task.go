package models

// TaskStatus is the server-computed state of a tracked work item. The client
// never derives a status from times; it renders whatever label arrives.
type TaskStatus string

const (
	TaskStatusOnProgress TaskStatus = "on_progress"
	TaskStatusDone       TaskStatus = "done"
	TaskStatusOverdue    TaskStatus = "overdue"
	TaskStatusManual     TaskStatus = "manual"

	// Transient labels produced by the automatic analysis logger.
	TaskStatusUnfinished TaskStatus = "unfinished"
	TaskStatusError      TaskStatus = "error"
)

// TaskLog is one entry of the analysis/task tracker. Times arrive as the
// server's display strings ("02 Jan 2006, 15:04"); the client does not parse
// or recompute them.
type TaskLog struct {
	ID          int        `json:"id"`
	Filename    string     `json:"filename"`
	FeatureType Feature    `json:"feature_type"`
	StartTime   string     `json:"start_time"`
	Deadline    string     `json:"deadline"`
	EndTime     *string    `json:"end_time"`
	Status      TaskStatus `json:"status"`
}

// TaskFields is the request body for creating or editing a manual task.
// Date strings pass through to the server's flexible parser untouched.
type TaskFields struct {
	Filename    string  `json:"filename"`
	FeatureType Feature `json:"feature_type"`
	StartTime   string  `json:"start_time"`
	Deadline    string  `json:"deadline,omitempty"`
	EndTime     string  `json:"end_time,omitempty"`
}
