package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sakif/problemspark/internal/apperror"
	"github.com/sakif/problemspark/internal/model"
)

func TestCommentCreateAndGet(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, "c@example.com", "Commenter")
	p := createTestProblem(t, db, author, "p", model.IndustryRetail, time.Time{})

	root := createTestComment(t, db, p, author, nil, "first!")
	if root.ID == "" || root.CreatedAt.IsZero() {
		t.Fatalf("CreateComment() did not fill ID/CreatedAt: %+v", root)
	}
	if root.AuthorName != "Commenter" {
		t.Errorf("AuthorName = %q, want Commenter", root.AuthorName)
	}

	reply := createTestComment(t, db, p, author, root, "a reply")

	got, err := db.GetComment(context.Background(), reply.ID)
	if err != nil {
		t.Fatalf("GetComment() error = %v", err)
	}
	if got.ParentID == nil || *got.ParentID != root.ID {
		t.Errorf("ParentID = %v, want %q", got.ParentID, root.ID)
	}
	if got.Content != "a reply" || got.ProblemID != p.ID {
		t.Errorf("GetComment() = %+v", got)
	}

	gotRoot, err := db.GetComment(context.Background(), root.ID)
	if err != nil {
		t.Fatalf("GetComment() error = %v", err)
	}
	if gotRoot.IsReply() {
		t.Error("root comment should have no parent")
	}
}

func TestCommentGet_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetComment(context.Background(), "missing")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetComment() error = %v, want ErrNotFound", err)
	}
}

func TestCommentList_OldestFirstPerProblem(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, "c@example.com", "C")
	p1 := createTestProblem(t, db, author, "p1", model.IndustryRetail, time.Time{})
	p2 := createTestProblem(t, db, author, "p2", model.IndustryRetail, time.Time{})
	base := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	for i, content := range []string{"one", "two", "three"} {
		c := &model.Comment{
			ProblemID: p1.ID,
			AuthorID:  author.ID,
			Content:   content,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := db.CreateComment(context.Background(), c); err != nil {
			t.Fatalf("CreateComment() error = %v", err)
		}
	}
	createTestComment(t, db, p2, author, nil, "elsewhere")

	got, err := db.ListComments(context.Background(), p1.ID)
	if err != nil {
		t.Fatalf("ListComments() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	for i, want := range []string{"one", "two", "three"} {
		if got[i].Content != want {
			t.Errorf("got[%d] = %q, want %q", i, got[i].Content, want)
		}
	}
}

func TestCommentList_Empty(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, "c@example.com", "C")
	p := createTestProblem(t, db, author, "p", model.IndustryRetail, time.Time{})

	got, err := db.ListComments(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("ListComments() error = %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("ListComments() = %#v, want empty non-nil slice", got)
	}
}
