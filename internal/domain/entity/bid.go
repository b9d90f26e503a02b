package entity

import "time"

type Bid struct {
	ID           string    `json:"id" firestore:"id"`
	JobID        string    `json:"job_id" firestore:"jobId"`
	FreelancerID string    `json:"freelancer_id" firestore:"freelancerId"`
	Amount       float64   `json:"amount" firestore:"amount"`
	Proposal     string    `json:"proposal" firestore:"proposal"`
	Status       string    `json:"status" firestore:"status"` // "pending", "accepted", "rejected", "withdrawn"
	CreatedAt    time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt    time.Time `json:"updated_at" firestore:"updatedAt"`
}
