package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/problemspark/internal/apperror"
	"github.com/sakif/problemspark/internal/model"
	"github.com/sakif/problemspark/internal/repository"
)

var _ repository.VoteRepository = (*DB)(nil)

// CastVote bumps the problem's counter and records the vote in one
// transaction. If the vote row hits the (user_id, problem_id) unique index
// the transaction rolls back, so the counter is untouched.
//
// The counter is incremented in SQL (upvotes = upvotes + 1) rather than read,
// modified in Go and written back: two concurrent votes can't overwrite each
// other's increment.
func (db *DB) CastVote(ctx context.Context, v *model.Vote) (*model.Problem, error) {
	column := "upvotes"
	if v.Type == model.Downvote {
		column = "downvotes"
	}

	v.ID = xid.New().String()
	v.CreatedAt = time.Now().UTC()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("sqlite: beginning vote transaction: %w", err)
	}
	// Rollback after a successful Commit is a no-op.
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		fmt.Sprintf(`UPDATE problems SET %s = %s + 1 WHERE id = ?`, column, column),
		v.ProblemID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: incrementing %s on %s: %w", column, v.ProblemID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return nil, apperror.NotFound("problem", v.ProblemID)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO votes (id, user_id, problem_id, type, created_at) VALUES (?, ?, ?, ?, ?)`,
		v.ID, v.UserID, v.ProblemID, string(v.Type), v.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperror.Conflict("you have already voted on this problem")
		}
		return nil, fmt.Errorf("sqlite: recording vote: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("sqlite: committing vote: %w", err)
	}

	return db.GetProblem(ctx, v.ProblemID)
}
