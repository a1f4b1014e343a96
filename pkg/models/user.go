package models

import "time"

type AuthMethod string

const (
	AuthEmail   AuthMethod = "email"
	AuthDiscord AuthMethod = "discord"
	AuthGoogle  AuthMethod = "google"
)

type UserStatus string

const (
	UserActive UserStatus = "active"
	UserBanned UserStatus = "banned"
)

// UserAccount is a registered identity. PasswordHash is only set for
// email accounts and never leaves the server.
type UserAccount struct {
	ID              string     `json:"id"`
	DisplayName     string     `json:"display_name"`
	Email           string     `json:"email,omitempty"`
	MemberID        string     `json:"member_id,omitempty"`
	AuthMethod      AuthMethod `json:"auth_method"`
	DiscordID       string     `json:"discord_id,omitempty"`
	DiscordUsername string     `json:"discord_username,omitempty"`
	DiscordAvatar   string     `json:"discord_avatar,omitempty"`
	GoogleID        string     `json:"google_id,omitempty"`
	PasswordHash    string     `json:"-"`
	Role            string     `json:"role"`
	Status          UserStatus `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
}

func (u *UserAccount) Banned() bool {
	return u != nil && u.Status == UserBanned
}
