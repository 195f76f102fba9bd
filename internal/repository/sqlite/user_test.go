package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/problemspark/internal/apperror"
	"github.com/sakif/problemspark/internal/model"
)

// =========================================================================
// CREATE TESTS
// =========================================================================

func TestUserCreate(t *testing.T) {
	db := newTestDB(t)

	user := &model.User{Email: "alice@example.com", Name: "Alice", PasswordHash: "hash"}
	if err := db.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	// Verify the user was modified in-place (pointer argument)
	if user.ID == "" {
		t.Error("CreateUser() did not set user.ID")
	}
	if user.CreatedAt.IsZero() {
		t.Error("CreateUser() did not set user.CreatedAt")
	}
}

func TestUserCreate_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "dup@example.com", "First")

	err := db.CreateUser(context.Background(), &model.User{Email: "dup@example.com"})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("CreateUser() duplicate error = %v, want ErrConflict", err)
	}
}

func TestUserCreate_EmailOnlyAccountsDoNotCollideOnGitHubID(t *testing.T) {
	db := newTestDB(t)

	// github_id is NULL for both; NULLs never clash in a UNIQUE index.
	createTestUser(t, db, "one@example.com", "")
	createTestUser(t, db, "two@example.com", "")
}

// =========================================================================
// GET TESTS
// =========================================================================

func TestUserGetByID(t *testing.T) {
	db := newTestDB(t)
	created := createTestUser(t, db, "bob@example.com", "Bob")

	got, err := db.GetUserByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	if got.Email != "bob@example.com" || got.Name != "Bob" {
		t.Errorf("GetUserByID() = %+v", got)
	}
	if got.PasswordHash != "$2a$04$fakehash" {
		t.Errorf("PasswordHash = %q, want stored hash", got.PasswordHash)
	}
}

func TestUserGetByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetUserByID(context.Background(), "missing")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetUserByID() error = %v, want ErrNotFound", err)
	}
}

func TestUserGetByEmail_CaseInsensitiveLookup(t *testing.T) {
	db := newTestDB(t)
	created := createTestUser(t, db, "carol@example.com", "Carol")

	got, err := db.GetUserByEmail(context.Background(), "Carol@Example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail() error = %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("GetUserByEmail() ID = %q, want %q", got.ID, created.ID)
	}
}

// =========================================================================
// GITHUB UPSERT TESTS
// =========================================================================

func TestUpsertGitHubUser_NewUser(t *testing.T) {
	db := newTestDB(t)

	u := &model.User{Email: "octo@example.com", Name: "Octo", GitHubID: 42, AvatarURL: "https://a/1.png"}
	if err := db.UpsertGitHubUser(context.Background(), u); err != nil {
		t.Fatalf("UpsertGitHubUser() error = %v", err)
	}
	if u.ID == "" {
		t.Fatal("UpsertGitHubUser() did not set ID")
	}

	got, err := db.GetUserByID(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	if got.GitHubID != 42 {
		t.Errorf("GitHubID = %d, want 42", got.GitHubID)
	}
}

func TestUpsertGitHubUser_ExistingGitHubIDKeepsID(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	first := &model.User{Email: "octo@example.com", GitHubID: 42, AvatarURL: "old.png"}
	if err := db.UpsertGitHubUser(ctx, first); err != nil {
		t.Fatalf("first UpsertGitHubUser() error = %v", err)
	}

	second := &model.User{Email: "octo@example.com", GitHubID: 42, AvatarURL: "new.png"}
	if err := db.UpsertGitHubUser(ctx, second); err != nil {
		t.Fatalf("second UpsertGitHubUser() error = %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("upsert created a new account: %q != %q", second.ID, first.ID)
	}
	if second.AvatarURL != "new.png" {
		t.Errorf("AvatarURL = %q, want refreshed value", second.AvatarURL)
	}
}

func TestUpsertGitHubUser_LinksExistingEmailAccount(t *testing.T) {
	db := newTestDB(t)
	existing := createTestUser(t, db, "dana@example.com", "Dana")

	u := &model.User{Email: "dana@example.com", Name: "dana-gh", GitHubID: 7}
	if err := db.UpsertGitHubUser(context.Background(), u); err != nil {
		t.Fatalf("UpsertGitHubUser() error = %v", err)
	}

	if u.ID != existing.ID {
		t.Errorf("GitHub login was not linked to the existing account")
	}
	if u.Name != "Dana" {
		t.Errorf("Name = %q, want the name chosen at signup", u.Name)
	}
	if u.PasswordHash == "" {
		t.Error("linking must keep the password hash")
	}
}
