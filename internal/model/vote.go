package model

import "time"

// VoteType is the direction of a vote.
type VoteType string

const (
	Upvote   VoteType = "upvote"
	Downvote VoteType = "downvote"
)

// Valid reports whether v is a known vote direction.
func (v VoteType) Valid() bool {
	return v == Upvote || v == Downvote
}

// Vote records that a user voted on a problem.
// A user holds at most one vote per problem.
type Vote struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	ProblemID string    `json:"problemId"`
	Type      VoteType  `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
}
