package models

import "time"

type ChatStatus string

const (
	ChatOpen   ChatStatus = "open"
	ChatClosed ChatStatus = "closed"
)

// ChatMessage is immutable once appended.
type ChatMessage struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"sender_id"`
	SenderName string    `json:"sender_name"`
	SenderRole string    `json:"sender_role"`
	Text       string    `json:"text"`
	Timestamp  time.Time `json:"timestamp"`
}

// ApplicationChat is the append-only message log tied to one application.
// The open/closed status is its only mutable state.
type ApplicationChat struct {
	AppID            string        `json:"app_id"`
	Status           ChatStatus    `json:"status"`
	InitiatedByStaff bool          `json:"initiated_by_staff"`
	Messages         []ChatMessage `json:"messages"`
}
