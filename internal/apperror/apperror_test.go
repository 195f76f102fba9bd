package apperror

import (
	"errors"
	"fmt"
	"testing"
)

var allKinds = []error{ErrNotFound, ErrValidation, ErrConflict, ErrForbidden, ErrUnauthorized}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name      string
		err       *AppError
		wantKind  error
		wantMsg   string
		wantField string
	}{
		{"not found", NotFound("problem", "cq1"), ErrNotFound, "problem not found with id cq1", ""},
		{"validation", ValidationFailed("industry", "unknown industry"), ErrValidation, "unknown industry", "industry"},
		{"conflict", Conflict("you have already voted on this problem"), ErrConflict, "you have already voted on this problem", ""},
		{"forbidden", Forbidden("only the author can edit this problem"), ErrForbidden, "only the author can edit this problem", ""},
		{"unauthorized", Unauthorized("sign in to vote"), ErrUnauthorized, "sign in to vote", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got, tt.wantMsg)
			}
			if tt.err.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", tt.err.Field, tt.wantField)
			}
			if tt.err.Unwrap() != tt.wantKind {
				t.Errorf("Unwrap() = %v, want %v", tt.err.Unwrap(), tt.wantKind)
			}

			// Exactly one kind matches.
			for _, kind := range allKinds {
				if got, want := errors.Is(tt.err, kind), kind == tt.wantKind; got != want {
					t.Errorf("errors.Is(%q, %v) = %v, want %v", tt.err, kind, got, want)
				}
			}
		})
	}
}

func TestKindSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("service: adding comment: %w",
		fmt.Errorf("loading parent: %w", ValidationFailed("parentId", "the comment you are replying to does not exist")))

	if !errors.Is(err, ErrValidation) {
		t.Fatal("errors.Is lost ErrValidation through two layers of wrapping")
	}

	var appErr *AppError
	if !errors.As(err, &appErr) {
		t.Fatal("errors.As could not extract *AppError")
	}
	if appErr.Field != "parentId" {
		t.Errorf("Field = %q, want parentId", appErr.Field)
	}
}

func TestPlainErrorsMatchNoKind(t *testing.T) {
	err := errors.New("disk full")
	for _, kind := range allKinds {
		if errors.Is(err, kind) {
			t.Errorf("plain error matched %v", kind)
		}
	}
}
