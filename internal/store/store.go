package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/erazemk/inventar/internal/model"
)

// Querier is satisfied by both *sql.DB and *sql.Tx, so store functions can
// run standalone or as part of a caller's transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

// foreignKeyMessage is how SQLite reports a foreign key violation. ON DELETE
// RESTRICT is enforced by SQLite as a trigger, so those refusals carry
// SQLITE_CONSTRAINT_TRIGGER with this message instead of the foreign key code.
const foreignKeyMessage = "FOREIGN KEY constraint failed"

// constraintCode returns the extended constraint code of err, or 0 when err
// is not a constraint violation.
func constraintCode(err error) int {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return 0
	}
	code := se.Code()
	if code&0xff != sqlite3.SQLITE_CONSTRAINT {
		return 0
	}
	if code == sqlite3.SQLITE_CONSTRAINT_TRIGGER && strings.Contains(se.Error(), foreignKeyMessage) {
		return sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY
	}
	return code
}

// writeErr wraps an insert/update error, mapping unique violations to
// model.ErrConflict.
func writeErr(op string, err error) error {
	switch constraintCode(err) {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return fmt.Errorf("%s: %w", op, model.ErrConflict)
	case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
		return fmt.Errorf("%s: referenced record: %w", op, model.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// deleteErr wraps a delete error, mapping restricted references to model.ErrInUse.
func deleteErr(op string, err error) error {
	if constraintCode(err) == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY {
		return fmt.Errorf("%s: %w", op, model.ErrInUse)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// deleteByID runs a DELETE and reports model.ErrNotFound when no row matched.
func deleteByID(ctx context.Context, q Querier, op, query string, id int64) error {
	result, err := q.ExecContext(ctx, query, id)
	if err != nil {
		return deleteErr(op, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, model.ErrNotFound)
	}
	return nil
}

// updated checks that an UPDATE matched a row.
func updated(op string, result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, model.ErrNotFound)
	}
	return nil
}
