package models

// Comment is a user annotation anchored to a row of a saved result file.
// Replies nest, forming a tree. The timestamp is the server's bare
// isoformat string (no zone offset), passed through for display like
// Message.Timestamp.
type Comment struct {
	ID        int       `json:"id"`
	RowID     *int      `json:"row_id"`
	Username  string    `json:"username"`
	Text      string    `json:"text"`
	Timestamp string    `json:"timestamp"`
	Replies   []Comment `json:"replies"`
}
