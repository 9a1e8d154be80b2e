package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sakif/faq-chatbot/internal/apperror"
	"github.com/sakif/faq-chatbot/internal/model"
	"github.com/sakif/faq-chatbot/internal/repository"
)

// compile-time check that *DB implements repository.QuestionRepository
var _ repository.QuestionRepository = (*DB)(nil)

const questionColumns = `id, question_text, answer_text, created_at, owner_id`

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuestion(row rowScanner, q *model.Question) error {
	var owner sql.NullInt64
	if err := row.Scan(&q.ID, &q.QuestionText, &q.AnswerText, &q.CreatedAt, &owner); err != nil {
		return err
	}
	q.OwnerID = nil
	if owner.Valid {
		id := owner.Int64
		q.OwnerID = &id
	}
	return nil
}

func nullableOwner(owner *int64) sql.NullInt64 {
	if owner == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *owner, Valid: true}
}

// Create inserts a new question. On success the caller's struct carries the
// store-assigned ID and CreatedAt (pointer receiver, modified in place).
func (db *DB) Create(ctx context.Context, q *model.Question) error {
	// SQLite keeps DATETIME as text; truncate so the value we hand back equals the
	// value a later SELECT returns.
	createdAt := time.Now().UTC().Truncate(time.Microsecond)

	result, err := db.conn.ExecContext(ctx,
		`INSERT INTO questions (question_text, question_key, answer_text, created_at, owner_id)
		 VALUES (?, ?, ?, ?, ?)`,
		q.QuestionText,
		db.foldKey(q.QuestionText),
		q.AnswerText,
		createdAt,
		nullableOwner(q.OwnerID),
	)
	if err != nil {
		if q.OwnerID != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
			return apperror.NotFound("admin", *q.OwnerID)
		}
		return fmt.Errorf("sqlite: creating question: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading new question id: %w", err)
	}

	q.ID = id
	q.CreatedAt = createdAt
	return nil
}

// GetByID retrieves a single question. Returns apperror.ErrNotFound if no row exists.
func (db *DB) GetByID(ctx context.Context, id int64) (*model.Question, error) {
	var q model.Question

	err := scanQuestion(db.conn.QueryRowContext(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE id = ?`, id,
	), &q)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("question", id)
		}
		return nil, fmt.Errorf("sqlite: getting question %d: %w", id, err)
	}

	return &q, nil
}

// List returns questions in insertion order. A zero Limit returns every row.
func (db *DB) List(ctx context.Context, opts repository.ListOptions) ([]model.Question, error) {
	// SQLite treats LIMIT -1 as "no limit".
	limit := opts.Limit
	if limit <= 0 {
		limit = -1
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	return db.queryQuestions(ctx, "listing questions",
		`SELECT `+questionColumns+` FROM questions ORDER BY id ASC LIMIT ? OFFSET ?`,
		limit, offset,
	)
}

// Update replaces both text fields of an existing question. ID, CreatedAt and
// OwnerID are left untouched. A missing row is reported as NotFound and nothing is
// inserted.
func (db *DB) Update(ctx context.Context, q *model.Question) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE questions
		 SET question_text = ?, question_key = ?, answer_text = ?
		 WHERE id = ?`,
		q.QuestionText,
		db.foldKey(q.QuestionText),
		q.AnswerText,
		q.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating question %d: %w", q.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("question", q.ID)
	}

	return nil
}

// Delete removes a question by its ID.
func (db *DB) Delete(ctx context.Context, id int64) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM questions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting question %d: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("question", id)
	}

	return nil
}

// FindByTextCaseInsensitive returns every question whose text equals text up to
// case, oldest first. No trimming, no substring matching.
func (db *DB) FindByTextCaseInsensitive(ctx context.Context, text string) ([]model.Question, error) {
	return db.queryQuestions(ctx, "finding questions by text",
		`SELECT `+questionColumns+` FROM questions WHERE question_key = ? ORDER BY id ASC`,
		db.foldKey(text),
	)
}

// FindByOwner returns the questions created by the given admin, oldest first.
func (db *DB) FindByOwner(ctx context.Context, adminID int64) ([]model.Question, error) {
	return db.queryQuestions(ctx, "finding questions by owner",
		`SELECT `+questionColumns+` FROM questions WHERE owner_id = ? ORDER BY id ASC`,
		adminID,
	)
}

func (db *DB) queryQuestions(ctx context.Context, op, query string, args ...any) ([]model.Question, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: %s: %w", op, err)
	}
	// CRITICAL: always close rows when done, or the connection never returns to the pool.
	defer rows.Close()

	questions := make([]model.Question, 0)
	for rows.Next() {
		var q model.Question
		if err := scanQuestion(rows, &q); err != nil {
			return nil, fmt.Errorf("sqlite: scanning question row: %w", err)
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: %s: %w", op, err)
	}

	return questions, nil
}
