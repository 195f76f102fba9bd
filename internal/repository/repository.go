// Package repository declares the data-access interfaces the services
// depend on. Implementations live in subpackages: sqlite for the persistent
// store and memory for the in-process one.
package repository

import (
	"context"

	"github.com/sakif/problemspark/internal/model"
)

// ProblemFilter narrows ListProblems at the storage level.
// An empty Industry (or "all") returns every problem.
type ProblemFilter struct {
	Industry string
}

// ProblemUpdate carries the fields of a partial update. Nil means "leave as is".
// ClearSolutionLink removes the link; it wins over SolutionLink.
type ProblemUpdate struct {
	Title             *string
	Description       *string
	Industry          *model.Industry
	SolutionLink      *string
	ClearSolutionLink bool
}

type ProblemRepository interface {
	// CreateProblem assigns ID and timestamps unless CreatedAt is already set
	// (seed data keeps its original dates).
	CreateProblem(ctx context.Context, p *model.Problem) error
	GetProblem(ctx context.Context, id string) (*model.Problem, error)
	ListProblems(ctx context.Context, filter ProblemFilter) ([]model.Problem, error)
	ListProblemsByAuthor(ctx context.Context, authorID string) ([]model.Problem, error)
	UpdateProblem(ctx context.Context, id string, upd ProblemUpdate) (*model.Problem, error)
}

type CommentRepository interface {
	CreateComment(ctx context.Context, c *model.Comment) error
	GetComment(ctx context.Context, id string) (*model.Comment, error)
	// ListComments returns every comment on a problem, oldest first.
	ListComments(ctx context.Context, problemID string) ([]model.Comment, error)
}

type VoteRepository interface {
	// CastVote records the vote and increments the matching counter in one
	// step. A second vote by the same user on the same problem is an
	// apperror.ErrConflict.
	CastVote(ctx context.Context, v *model.Vote) (*model.Problem, error)
}

type UserRepository interface {
	CreateUser(ctx context.Context, u *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	// UpsertGitHubUser links a GitHub login to an account: by GitHub ID
	// first, then by email, otherwise a new account is created.
	UpsertGitHubUser(ctx context.Context, u *model.User) error
}

// Store bundles every repository. Both storage backends implement it.
type Store interface {
	ProblemRepository
	CommentRepository
	VoteRepository
	UserRepository
	Close() error
}
