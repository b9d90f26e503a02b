package entity

import "time"

// Affiliate tracks a user's referral code and its performance.
type Affiliate struct {
	ID        string    `json:"id" firestore:"id"`
	UserID    string    `json:"user_id" firestore:"userId"`
	Code      string    `json:"code" firestore:"code"`
	Clicks    int64     `json:"clicks" firestore:"clicks"`
	Signups   int64     `json:"signups" firestore:"signups"`
	Earnings  float64   `json:"earnings" firestore:"earnings"`
	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}
