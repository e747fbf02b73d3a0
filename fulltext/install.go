package fulltext

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrIntegrityFailure is wrapped by every installation error.
var ErrIntegrityFailure = errors.New("search document integrity failure")

// InstallError reports the statement of a document that failed.
type InstallError struct {
	Table string
	// Code is the SQLSTATE reported by postgres, if any.
	Code string
	Err  error
}

func (e *InstallError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("installing search document of %s: [%s] %v", e.Table, e.Code, e.Err)
	}

	return fmt.Sprintf("installing search document of %s: %v", e.Table, e.Err)
}

func (e *InstallError) Unwrap() []error {
	return []error{ErrIntegrityFailure, e.Err}
}

func installError(table string, err error) error {
	ret := &InstallError{Table: table, Err: err}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		ret.Code = pgErr.Code
	}

	return ret
}

type installOptions struct {
	backfill bool
}

type InstallOption func(*installOptions)

// WithBackfill recomputes the document of every existing row after the
// trigger is installed.
func WithBackfill() InstallOption {
	return func(o *installOptions) { o.backfill = true }
}

// Install installs the column, index, trigger function and trigger of d in a
// single transaction, so the trigger is never observed missing.
func Install(ctx context.Context, db *gorm.DB, d Document, opts ...InstallOption) error {
	d = d.withDefaults()
	if err := d.validate(); err != nil {
		return installError(d.Table, err)
	}

	o := installOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	statements := d.Statements()
	if o.backfill {
		statements = append(statements, d.BackfillStatement())
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, stmt := range statements {
			if err := tx.Exec(stmt).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return installError(d.Table, err)
	}

	return nil
}

// InstallAll installs every registered document and stops at the first
// failure.
func (r *Registry) InstallAll(ctx context.Context, db *gorm.DB, opts ...InstallOption) error {
	for _, d := range r.Documents() {
		if err := Install(ctx, db, d, opts...); err != nil {
			return err
		}
	}

	return nil
}
