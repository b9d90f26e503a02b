package entity

import "time"

// Conversation is the addressable topic under which messages are ordered.
// Direct conversations are keyed by job + participant pair; support
// conversations pair a user with the admin team.
type Conversation struct {
	ID            string         `json:"id" firestore:"id"`
	Participants  []string       `json:"participants" firestore:"participants"`
	JobID         string         `json:"job_id,omitempty" firestore:"jobId,omitempty"`
	Type          string         `json:"type" firestore:"type"` // "direct", "support"
	CreatedAt     time.Time      `json:"created_at" firestore:"createdAt"`
	UpdatedAt     time.Time      `json:"updated_at" firestore:"updatedAt"`
	LastMessageAt time.Time      `json:"last_message_at" firestore:"lastMessageAt"`
	LastMessage   string         `json:"last_message,omitempty" firestore:"lastMessage,omitempty"`
	UnreadCount   map[string]int `json:"unread_count" firestore:"unreadCount"` // userID -> unread messages
}
