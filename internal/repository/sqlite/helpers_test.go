package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/sakif/problemspark/internal/model"
)

// newTestDB opens a fresh in-memory database for one test. t.Cleanup closes
// it when the test (and all its subtests) finish.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestUser(t *testing.T, db *DB, email, name string) *model.User {
	t.Helper()
	u := &model.User{Email: email, Name: name, PasswordHash: "$2a$04$fakehash"}
	if err := db.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

func createTestProblem(t *testing.T, db *DB, author *model.User, title string, industry model.Industry, created time.Time) *model.Problem {
	t.Helper()
	p := &model.Problem{
		Title:       title,
		Description: "description of " + title,
		Industry:    industry,
		AuthorID:    author.ID,
		CreatedAt:   created,
	}
	if err := db.CreateProblem(context.Background(), p); err != nil {
		t.Fatalf("failed to create test problem: %v", err)
	}
	return p
}

func createTestComment(t *testing.T, db *DB, problem *model.Problem, author *model.User, parent *model.Comment, content string) *model.Comment {
	t.Helper()
	c := &model.Comment{ProblemID: problem.ID, AuthorID: author.ID, Content: content}
	if parent != nil {
		c.ParentID = &parent.ID
	}
	if err := db.CreateComment(context.Background(), c); err != nil {
		t.Fatalf("failed to create test comment: %v", err)
	}
	return c
}
