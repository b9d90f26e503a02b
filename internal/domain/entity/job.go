package entity

import "time"

type Job struct {
	ID          string    `json:"id" firestore:"id"`
	ClientID    string    `json:"client_id" firestore:"clientId"`
	Title       string    `json:"title" firestore:"title"`
	Description string    `json:"description" firestore:"description"`
	Category    string    `json:"category" firestore:"category"`
	Budget      float64   `json:"budget" firestore:"budget"`
	Status      string    `json:"status" firestore:"status"` // "open", "assigned", "completed", "cancelled"
	AssignedTo  string    `json:"assigned_to,omitempty" firestore:"assignedTo,omitempty"`
	BidCount    int       `json:"bid_count" firestore:"bidCount"`
	CreatedAt   time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt   time.Time `json:"updated_at" firestore:"updatedAt"`
}
