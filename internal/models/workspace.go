package models

// Folder is one workspace folder, either owned by the current user or shared
// with them.
type Folder struct {
	Name      string `json:"name"`
	IsOwner   bool   `json:"is_owner"`
	OwnerID   int    `json:"owner_id"`
	OwnerName string `json:"owner_name"`
}

// HistoryEntry is one saved result file inside a folder.
type HistoryEntry struct {
	Filename     string  `json:"filename"`
	OriginalName string  `json:"original_name"`
	FeatureType  Feature `json:"feature_type"`
	Timestamp    string  `json:"timestamp"`
}

// User is a directory entry used for assignee selection and folder sharing.
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Label    string `json:"label"`
}

// Message is one mailbox entry. OtherUser is the sender for inbox messages
// and the recipient for sent ones.
type Message struct {
	ID            int    `json:"id"`
	OtherUser     string `json:"other_user"`
	Subject       string `json:"subject"`
	Body          string `json:"body"`
	Timestamp     string `json:"timestamp"`
	IsRead        bool   `json:"is_read"`
	HasAttachment bool   `json:"has_attachment"`
}

// Mailbox types accepted by the message listing endpoint.
const (
	MailboxInbox = "inbox"
	MailboxSent  = "sent"
)
