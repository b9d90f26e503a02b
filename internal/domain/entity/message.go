package entity

import "time"

// Message is immutable once created except for the Read flag, which only
// ever transitions false -> true.
type Message struct {
	ID             string                 `json:"id" firestore:"id"`
	ConversationID string                 `json:"conversation_id" firestore:"conversationId"`
	SenderID       string                 `json:"sender_id" firestore:"senderId"`
	SenderRole     string                 `json:"sender_role" firestore:"senderRole"` // "client", "freelancer", "admin", "system"
	Content        string                 `json:"content" firestore:"content"`
	Type           string                 `json:"type" firestore:"type"` // "text", "offer", "system"
	Metadata       map[string]interface{} `json:"metadata,omitempty" firestore:"metadata,omitempty"`
	Read           bool                   `json:"read" firestore:"read"`
	CreatedAt      time.Time              `json:"created_at" firestore:"createdAt"`
}
