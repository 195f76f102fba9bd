package model

import "time"

// Comment is a reply to a problem or to another comment on the same problem.
//
// ParentID is nil for top-level comments. Comments are never edited or
// deleted once written, so there is no UpdatedAt.
type Comment struct {
	ID         string    `json:"id"`
	ProblemID  string    `json:"problemId"`
	AuthorID   string    `json:"authorId"`
	AuthorName string    `json:"authorName"`
	ParentID   *string   `json:"parentId,omitempty"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"createdAt"`
}

// IsReply reports whether the comment answers another comment.
func (c Comment) IsReply() bool {
	return c.ParentID != nil
}
