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

var _ repository.CommentRepository = (*DB)(nil)

const commentColumns = `
	c.id, c.problem_id, c.author_id,
	CASE WHEN u.name <> '' THEN u.name ELSE u.email END,
	c.parent_id, c.content, c.created_at`

func scanComment(s rowScanner) (model.Comment, error) {
	var (
		c      model.Comment
		parent sql.NullString
	)
	err := s.Scan(&c.ID, &c.ProblemID, &c.AuthorID, &c.AuthorName, &parent, &c.Content, &c.CreatedAt)
	c.ParentID = stringPtr(parent)
	return c, err
}

// CreateComment inserts a comment. Like CreateProblem it keeps a preset
// CreatedAt so seeded threads keep their order.
func (db *DB) CreateComment(ctx context.Context, c *model.Comment) error {
	c.ID = xid.New().String()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	c.CreatedAt = c.CreatedAt.UTC()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO comments (id, problem_id, author_id, parent_id, content, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.ProblemID, c.AuthorID, nullString(c.ParentID), c.Content, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating comment: %w", err)
	}

	if err := db.conn.QueryRowContext(ctx,
		`SELECT CASE WHEN name <> '' THEN name ELSE email END FROM users WHERE id = ?`, c.AuthorID,
	).Scan(&c.AuthorName); err != nil {
		return fmt.Errorf("sqlite: reading author of comment %s: %w", c.ID, err)
	}
	return nil
}

func (db *DB) GetComment(ctx context.Context, id string) (*model.Comment, error) {
	c, err := scanComment(db.conn.QueryRowContext(ctx,
		`SELECT `+commentColumns+`
		 FROM comments c JOIN users u ON u.id = c.author_id
		 WHERE c.id = ?`,
		id,
	))
	if err != nil {
		if isNoRows(err) {
			return nil, apperror.NotFound("comment", id)
		}
		return nil, fmt.Errorf("sqlite: getting comment %s: %w", id, err)
	}
	return &c, nil
}

// ListComments returns the flat comment list of a problem, oldest first.
// rowid breaks ties between comments written in the same instant.
func (db *DB) ListComments(ctx context.Context, problemID string) ([]model.Comment, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+commentColumns+`
		 FROM comments c JOIN users u ON u.id = c.author_id
		 WHERE c.problem_id = ?
		 ORDER BY c.created_at ASC, c.rowid ASC`,
		problemID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing comments of %s: %w", problemID, err)
	}
	defer rows.Close()

	comments := []model.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning comment row: %w", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating comments: %w", err)
	}
	return comments, nil
}
