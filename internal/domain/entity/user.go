package entity

import (
	"time"
)

type User struct {
	ID       string `json:"id" firestore:"id"`
	Email    string `json:"email" firestore:"email"`
	Username string `json:"username" firestore:"username"`
	Phone    string `json:"phone" firestore:"phone"`
	Bio      string `json:"bio" firestore:"bio"`
	Role     string `json:"role" firestore:"role"`     // "client", "freelancer", "admin"
	Status   string `json:"status" firestore:"status"` // "active", "banned"

	Headline string   `json:"headline,omitempty" firestore:"headline,omitempty"`
	Skills   []string `json:"skills,omitempty" firestore:"skills,omitempty"`

	Rating      float64 `json:"rating,omitempty" firestore:"rating,omitempty"`
	ReviewCount int     `json:"review_count,omitempty" firestore:"reviewCount,omitempty"`

	AvatarURL    string    `json:"avatar_url,omitempty" firestore:"avatarURL,omitempty"`
	LastSeen     time.Time `json:"last_seen" firestore:"lastSeen"`
	OnlineStatus string    `json:"online_status" firestore:"onlineStatus"`

	ReferredBy string `json:"referred_by,omitempty" firestore:"referredBy,omitempty"`

	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}
