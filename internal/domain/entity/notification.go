package entity

import "time"

// Notification types. Payload shape is a strict function of the type; any
// other value is treated as unknown and routed to the fallback view.
const (
	NotificationNewBid      = "new_bid"
	NotificationBidAccepted = "bid_accepted"
	NotificationBidRejected = "bid_rejected"
	NotificationPaymentSent = "payment_sent"
	NotificationNewMessage  = "new_message"
	NotificationNewOffer    = "new_offer"
)

type Notification struct {
	ID        string              `json:"id" firestore:"id"`
	UserID    string              `json:"user_id" firestore:"userId"`
	Type      string              `json:"type" firestore:"type"`
	Payload   NotificationPayload `json:"payload" firestore:"payload"`
	Read      bool                `json:"read" firestore:"read"`
	// Status tracks external delivery (SMS): "", "delivered" or "failed".
	// In-app visibility does not depend on it.
	Status    string    `json:"status,omitempty" firestore:"status,omitempty"`
	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
}

// NotificationPayload carries the references a notification points at.
// Which fields are set depends on the notification type:
//
//	new_bid, bid_accepted, bid_rejected: JobID, BidID, FreelancerID
//	payment_sent:                        JobID, Amount
//	new_message, new_offer:              ConversationID, MessageID
type NotificationPayload struct {
	JobID          string  `json:"job_id,omitempty" firestore:"jobId,omitempty"`
	BidID          string  `json:"bid_id,omitempty" firestore:"bidId,omitempty"`
	FreelancerID   string  `json:"freelancer_id,omitempty" firestore:"freelancerId,omitempty"`
	ConversationID string  `json:"conversation_id,omitempty" firestore:"conversationId,omitempty"`
	MessageID      string  `json:"message_id,omitempty" firestore:"messageId,omitempty"`
	Amount         float64 `json:"amount,omitempty" firestore:"amount,omitempty"`
}

// PayloadComplete reports whether the payload carries the references its
// type requires. Incomplete notifications are dispatched like unknown ones.
func (n *Notification) PayloadComplete() bool {
	switch n.Type {
	case NotificationNewBid, NotificationBidAccepted, NotificationBidRejected:
		return n.Payload.JobID != "" && n.Payload.BidID != ""
	case NotificationPaymentSent:
		return n.Payload.JobID != ""
	case NotificationNewMessage, NotificationNewOffer:
		return n.Payload.ConversationID != ""
	default:
		return false
	}
}
