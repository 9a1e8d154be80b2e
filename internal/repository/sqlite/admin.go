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

// compile-time check that *DB implements repository.AdminRepository
var _ repository.AdminRepository = (*DB)(nil)

// isUniqueViolation recognises SQLite's UNIQUE constraint error by message.
// The driver's error codes live in an internal lib package, so the text is the
// stable contract ("UNIQUE constraint failed: admins.username").
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// CreateAdmin inserts a new admin. PasswordHash must already be hashed.
// A duplicate username yields apperror.ErrConflict.
func (db *DB) CreateAdmin(ctx context.Context, a *model.Admin) error {
	createdAt := time.Now().UTC().Truncate(time.Microsecond)

	result, err := db.conn.ExecContext(ctx,
		`INSERT INTO admins (username, password_hash, created_at) VALUES (?, ?, ?)`,
		a.Username,
		a.PasswordHash,
		createdAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("admin", "username "+a.Username)
		}
		return fmt.Errorf("sqlite: creating admin %q: %w", a.Username, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading new admin id: %w", err)
	}

	a.ID = id
	a.CreatedAt = createdAt
	return nil
}

// GetAdminByID retrieves an admin by ID. Returns apperror.ErrNotFound if missing.
func (db *DB) GetAdminByID(ctx context.Context, id int64) (*model.Admin, error) {
	var a model.Admin

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM admins WHERE id = ?`, id,
	).Scan(&a.ID, &a.Username, &a.PasswordHash, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("admin", id)
		}
		return nil, fmt.Errorf("sqlite: getting admin %d: %w", id, err)
	}

	return &a, nil
}

// GetAdminByUsername retrieves an admin by their unique username.
func (db *DB) GetAdminByUsername(ctx context.Context, username string) (*model.Admin, error) {
	var a model.Admin

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM admins WHERE username = ?`, username,
	).Scan(&a.ID, &a.Username, &a.PasswordHash, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &apperror.AppError{
				Err:     apperror.ErrNotFound,
				Message: fmt.Sprintf("admin not found with username %s", username),
			}
		}
		return nil, fmt.Errorf("sqlite: getting admin %q: %w", username, err)
	}

	return &a, nil
}

// ListAdmins returns all admins in creation order.
func (db *DB) ListAdmins(ctx context.Context) ([]model.Admin, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, username, password_hash, created_at FROM admins ORDER BY id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing admins: %w", err)
	}
	defer rows.Close()

	admins := make([]model.Admin, 0)
	for rows.Next() {
		var a model.Admin
		if err := rows.Scan(&a.ID, &a.Username, &a.PasswordHash, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning admin row: %w", err)
		}
		admins = append(admins, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating admins: %w", err)
	}

	return admins, nil
}

// UpdateAdmin replaces username and password hash.
func (db *DB) UpdateAdmin(ctx context.Context, a *model.Admin) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE admins SET username = ?, password_hash = ? WHERE id = ?`,
		a.Username,
		a.PasswordHash,
		a.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("admin", "username "+a.Username)
		}
		return fmt.Errorf("sqlite: updating admin %d: %w", a.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("admin", a.ID)
	}

	return nil
}

// DeleteAdmin removes an admin. Their questions survive with owner_id cleared;
// both statements run in one transaction so no question points at a deleted admin.
func (db *DB) DeleteAdmin(ctx context.Context, id int64) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning admin delete: %w", err)
	}
	// Rollback after Commit is a no-op, so deferring it covers every early return.
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE questions SET owner_id = NULL WHERE owner_id = ?`, id,
	); err != nil {
		return fmt.Errorf("sqlite: releasing questions of admin %d: %w", id, err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM admins WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting admin %d: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("admin", id)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing admin delete: %w", err)
	}
	return nil
}
