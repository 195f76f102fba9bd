package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/problemspark/internal/apperror"
	"github.com/sakif/problemspark/internal/model"
	"github.com/sakif/problemspark/internal/repository"
)

var _ repository.ProblemRepository = (*DB)(nil)

// problemColumns is shared by every problem SELECT so scanProblem always
// sees the same column order. The author's display name falls back to the
// email, matching model.User.DisplayName.
const problemColumns = `
	p.id, p.title, p.description, p.industry, p.upvotes, p.downvotes,
	p.solution_link, p.author_id,
	CASE WHEN u.name <> '' THEN u.name ELSE u.email END,
	(SELECT COUNT(*) FROM comments c WHERE c.problem_id = p.id),
	p.created_at, p.updated_at`

const problemFrom = `FROM problems p JOIN users u ON u.id = p.author_id`

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanProblem(s rowScanner) (model.Problem, error) {
	var (
		p    model.Problem
		link sql.NullString
	)
	err := s.Scan(
		&p.ID, &p.Title, &p.Description, &p.Industry, &p.Upvotes, &p.Downvotes,
		&link, &p.AuthorID, &p.AuthorName, &p.CommentCount,
		&p.CreatedAt, &p.UpdatedAt,
	)
	p.SolutionLink = stringPtr(link)
	return p, err
}

// CreateProblem inserts a new problem. ID is always generated; CreatedAt is
// kept when the caller already set it (seed data), otherwise now.
// Vote counts are written as given, which is zero for user submissions.
func (db *DB) CreateProblem(ctx context.Context, p *model.Problem) error {
	p.ID = xid.New().String()
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	// Timestamps are stored as text; a single offset keeps ORDER BY correct.
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO problems
			(id, title, description, industry, upvotes, downvotes, solution_link, author_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Title, p.Description, string(p.Industry), p.Upvotes, p.Downvotes,
		nullString(p.SolutionLink), p.AuthorID, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating problem: %w", err)
	}

	// Fill the joined author name so callers get the same shape as GetProblem.
	if err := db.conn.QueryRowContext(ctx,
		`SELECT CASE WHEN name <> '' THEN name ELSE email END FROM users WHERE id = ?`, p.AuthorID,
	).Scan(&p.AuthorName); err != nil {
		return fmt.Errorf("sqlite: reading author of problem %s: %w", p.ID, err)
	}
	return nil
}

func (db *DB) GetProblem(ctx context.Context, id string) (*model.Problem, error) {
	p, err := scanProblem(db.conn.QueryRowContext(ctx,
		`SELECT `+problemColumns+` `+problemFrom+` WHERE p.id = ?`, id,
	))
	if err != nil {
		if isNoRows(err) {
			return nil, apperror.NotFound("problem", id)
		}
		return nil, fmt.Errorf("sqlite: getting problem %s: %w", id, err)
	}
	return &p, nil
}

// ListProblems returns problems newest first, optionally narrowed to one industry.
func (db *DB) ListProblems(ctx context.Context, filter repository.ProblemFilter) ([]model.Problem, error) {
	query := `SELECT ` + problemColumns + ` ` + problemFrom
	var args []any
	if filter.Industry != "" && filter.Industry != "all" {
		query += ` WHERE p.industry = ?`
		args = append(args, filter.Industry)
	}
	query += ` ORDER BY p.created_at DESC, p.id DESC`

	return db.queryProblems(ctx, query, args...)
}

func (db *DB) ListProblemsByAuthor(ctx context.Context, authorID string) ([]model.Problem, error) {
	return db.queryProblems(ctx,
		`SELECT `+problemColumns+` `+problemFrom+`
		 WHERE p.author_id = ?
		 ORDER BY p.created_at DESC, p.id DESC`,
		authorID,
	)
}

func (db *DB) queryProblems(ctx context.Context, query string, args ...any) ([]model.Problem, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing problems: %w", err)
	}
	defer rows.Close()

	problems := []model.Problem{}
	for rows.Next() {
		p, err := scanProblem(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning problem row: %w", err)
		}
		problems = append(problems, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating problems: %w", err)
	}
	return problems, nil
}

// UpdateProblem applies a partial update. COALESCE keeps the stored value
// for every field the update leaves nil, so one statement covers every
// combination of fields.
func (db *DB) UpdateProblem(ctx context.Context, id string, upd repository.ProblemUpdate) (*model.Problem, error) {
	var industry sql.NullString
	if upd.Industry != nil {
		industry = sql.NullString{String: string(*upd.Industry), Valid: true}
	}

	result, err := db.conn.ExecContext(ctx,
		`UPDATE problems SET
			title         = COALESCE(?, title),
			description   = COALESCE(?, description),
			industry      = COALESCE(?, industry),
			solution_link = CASE WHEN ? THEN NULL ELSE COALESCE(?, solution_link) END,
			updated_at    = ?
		 WHERE id = ?`,
		nullString(upd.Title),
		nullString(upd.Description),
		industry,
		upd.ClearSolutionLink,
		nullString(upd.SolutionLink),
		time.Now().UTC(),
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: updating problem %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return nil, apperror.NotFound("problem", id)
	}

	return db.GetProblem(ctx, id)
}
