package model

import "time"

// User represents a registered user account.
//
// Accounts are created with an email and password. GitHub login is an
// optional second way in: GitHubID is zero for accounts that have never
// signed in through GitHub.
//
// PasswordHash is tagged json:"-" and never leaves the server. It is empty
// for GitHub-only accounts.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	GitHubID     int64     `json:"githubId,omitempty"`
	AvatarURL    string    `json:"avatarUrl,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// DisplayName returns the name to show next to the user's content.
// Name is optional at signup, so fall back to the email address.
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}
