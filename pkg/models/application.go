package models

import "time"

type ApplicationStatus string

const (
	AppPending     ApplicationStatus = "pending"
	AppUnderReview ApplicationStatus = "under_review"
	AppApproved    ApplicationStatus = "approved"
	AppRejected    ApplicationStatus = "rejected"
)

// ApplicationEntry is one user's submission against one form. Responses
// are keyed by field id; the form definition may have changed since
// submission, so dangling field ids are tolerated.
type ApplicationEntry struct {
	ID           string            `json:"id"`
	UserID       string            `json:"user_id"`
	FormID       string            `json:"form_id"`
	FormName     string            `json:"form_name"`
	Username     string            `json:"username"`
	Responses    map[string]string `json:"responses"`
	Status       ApplicationStatus `json:"status"`
	SubmittedAt  time.Time         `json:"submitted_at"`
	ReviewedAt   *time.Time        `json:"reviewed_at,omitempty"`
	Notes        string            `json:"notes,omitempty"`
	AdminMessage string            `json:"admin_message,omitempty"`
}

// Stats are per-status application counts for the admin overview.
type Stats struct {
	Total       int `json:"total"`
	Pending     int `json:"pending"`
	Approved    int `json:"approved"`
	Rejected    int `json:"rejected"`
	UnderReview int `json:"under_review"`
}
