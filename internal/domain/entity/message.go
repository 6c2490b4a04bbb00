package entity

import "time"

type Attachment struct {
	Name       string `json:"name"`
	Size       int64  `json:"size"`
	MimeType   string `json:"mime_type"`
	StorageRef string `json:"storage_ref"`
}

type MessageStatus string

const (
	MessageStatusSent    MessageStatus = "sent"
	MessageStatusSending MessageStatus = "sending" // optimistic, not yet confirmed
	MessageStatusError   MessageStatus = "error"   // send failed, kept for retry
)

type Message struct {
	ID                  string        `json:"id"`
	ConversationOwnerID string        `json:"conversation_owner_id"`
	SenderID            string        `json:"sender_id"`
	Content             string        `json:"content"`
	Priority            string        `json:"priority"`
	Category            string        `json:"category"`
	Tags                []string      `json:"tags"`
	Status              MessageStatus `json:"status"`
	Attachments         []Attachment  `json:"attachments,omitempty"`
	IsRead              bool          `json:"is_read"`
	CreatedAt           time.Time     `json:"created_at"`
}
