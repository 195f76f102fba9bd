// Package model holds the records ProblemSpark stores and serves: problems,
// comments, votes and users. The types carry JSON tags for the API and
// nothing else; persistence lives in the repository packages.
package model

import "time"

// Industry is the category label attached to a problem.
type Industry string

// The closed set of industries a problem can be filed under.
const (
	IndustryTech           Industry = "Tech"
	IndustryHealthcare     Industry = "Healthcare"
	IndustryEducation      Industry = "Education"
	IndustryFinance        Industry = "Finance"
	IndustryRetail         Industry = "Retail"
	IndustryTransportation Industry = "Transportation"
	IndustryFood           Industry = "Food"
	IndustryEntertainment  Industry = "Entertainment"
	IndustryEnvironment    Industry = "Environment"
	IndustryOther          Industry = "Other"
)

// Industries lists every industry in display order.
// The feed filter, the submit form and /api/industries all read from here.
var Industries = []Industry{
	IndustryTech,
	IndustryHealthcare,
	IndustryEducation,
	IndustryFinance,
	IndustryRetail,
	IndustryTransportation,
	IndustryFood,
	IndustryEntertainment,
	IndustryEnvironment,
	IndustryOther,
}

// ValidIndustry reports whether s is one of the fixed industry labels.
// The comparison is exact and case-sensitive.
func ValidIndustry(s string) bool {
	for _, ind := range Industries {
		if string(ind) == s {
			return true
		}
	}
	return false
}

// Problem represents a submitted problem.
//
// Upvotes and Downvotes only ever grow: a vote increments one of them and
// nothing in the application decrements them.
//
// SolutionLink is nil when no existing solution is known; it encodes as
// null, never "".
type Problem struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Industry     Industry  `json:"industry"`
	Upvotes      int       `json:"upvotes"`
	Downvotes    int       `json:"downvotes"`
	SolutionLink *string   `json:"solutionLink"`
	AuthorID     string    `json:"authorId"`
	AuthorName   string    `json:"authorName"`
	CommentCount int       `json:"commentsCount"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Score is the vote delta (upvotes minus downvotes).
func (p Problem) Score() int {
	return p.Upvotes - p.Downvotes
}
