package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sakif/problemspark/internal/model"
	"github.com/sakif/problemspark/internal/repository/memory"
)

// =========================================================================
// TEST HELPERS
// =========================================================================
//
// The services run against the real in-memory store; hand-written fakes
// below wrap it where a test needs a repository to fail.

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type testEnv struct {
	store    *memory.Store
	problems *ProblemService
	comments *CommentService
	votes    *VoteService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memory.New()
	logger := discardLogger()
	return &testEnv{
		store:    store,
		problems: NewProblemService(store, store, logger),
		comments: NewCommentService(store, store, logger),
		votes:    NewVoteService(store, logger),
	}
}

func (e *testEnv) user(t *testing.T, email string) *model.User {
	t.Helper()
	u := &model.User{Email: email, Name: email}
	require.NoError(t, e.store.CreateUser(context.Background(), u))
	return u
}

// problem stores a problem directly, bypassing validation, so tests can set
// counts and timestamps.
func (e *testEnv) problem(t *testing.T, author *model.User, p model.Problem) *model.Problem {
	t.Helper()
	p.AuthorID = author.ID
	if p.Industry == "" {
		p.Industry = model.IndustryTech
	}
	if p.Description == "" {
		p.Description = "description"
	}
	require.NoError(t, e.store.CreateProblem(context.Background(), &p))
	return &p
}

func day(n int) time.Time {
	return time.Date(2025, 3, n, 12, 0, 0, 0, time.UTC)
}
