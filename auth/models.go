package auth

import "time"

// Plan is the subscription tier attached to a user account.
type Plan string

const (
	PlanFree    Plan = "free"
	PlanPremium Plan = "premium"
)

// User is the domain representation of an account holder.
// It mirrors the users table and should not include JSON annotations so it
// can be reused by different presentation layers.
type User struct {
	ID                string
	Email             string
	FullName          string
	PasswordHash      string
	AddressLine       *string
	City              *string
	State             *string
	PostalCode        *string
	SSNLast4          *string
	Plan              Plan
	NextDisputeAt     *time.Time
	LastDisputeSentAt *time.Time
	SentWithPremium   bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// RegisterRequest contains user registration data supplied by callers.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

// LoginRequest contains user login credentials.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
