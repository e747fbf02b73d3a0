package pager

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type selectOptions struct {
	alias      string
	documents  Documents
	predicates []func(*gorm.DB) *gorm.DB
}

type SelectOption func(*selectOptions)

// WithAlias sets the row alias the table is selected as. Extra predicates
// refer to columns through it. Defaults to the table name.
func WithAlias(alias string) SelectOption {
	return func(o *selectOptions) { o.alias = alias }
}

// WithDocuments enables the search argument.
func WithDocuments(documents Documents) SelectOption {
	return func(o *selectOptions) { o.documents = documents }
}

// WithPredicates adds filters and joins on top of the search predicate.
func WithPredicates(scopes ...func(*gorm.DB) *gorm.DB) SelectOption {
	return func(o *selectOptions) { o.predicates = append(o.predicates, scopes...) }
}

// SelectConnection reads one Relay page of T. Sort and search arguments are
// validated before any statement is sent. The window and the total count are
// read in one read-only repeatable-read transaction so both come from the
// same snapshot. Storage errors are returned wrapped but otherwise untouched.
func SelectConnection[T any](
	ctx context.Context,
	db *gorm.DB,
	args ConnectionArgs,
	ss SearchAndSortArgs,
	opts ...SelectOption,
) (*Connection[T], error) {
	o := selectOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	window, err := ResolveWindow(args)
	if err != nil {
		return nil, err
	}

	stmt := &gorm.Statement{DB: db}
	if err = stmt.Parse(new(T)); err != nil {
		return nil, fmt.Errorf("cannot parse %T: %w", *new(T), err)
	}

	table := stmt.Schema.Table
	if o.alias == "" {
		o.alias = table
	}

	order, err := connectionOrder(stmt, o.alias, ss)
	if err != nil {
		return nil, err
	}

	search, err := searchPredicate(o, table, ss.search())
	if err != nil {
		return nil, err
	}

	base := func(tx *gorm.DB) *gorm.DB {
		q := tx.Model(new(T)).Table(fmt.Sprintf("%s AS %s", quoteIdent(table), quoteIdent(o.alias)))
		if search != nil {
			q = q.Where(search)
		}

		return q.Scopes(o.predicates...)
	}

	var (
		rows  []T
		total int64
	)

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := base(tx).Count(&total).Error; err != nil {
			return fmt.Errorf("cannot count %s: %w", table, err)
		}

		q := base(tx).Select(quoteIdent(o.alias) + ".*")
		if order != nil {
			q = q.Clauses(*order)
		}
		if window.Bounded {
			q = q.Offset(window.Skip).Limit(window.Take)
		}

		if err := q.Find(&rows).Error; err != nil {
			return fmt.Errorf("cannot select %s: %w", table, err)
		}

		return nil
	}, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, err
	}

	return ConnectionFromSlice(rows, args, SliceMeta{SliceStart: window.Skip, ArrayLength: int(total)})
}

// connectionOrder orders by the sort column with nulls last and breaks ties
// by primary key. Without a sort column the primary key alone keeps pages
// stable.
func connectionOrder(stmt *gorm.Statement, alias string, ss SearchAndSortArgs) (*clause.OrderBy, error) {
	direction, err := ss.direction()
	if err != nil {
		return nil, err
	}

	pk := primaryColumn(stmt.Schema)

	var column string
	if field := strings.TrimSpace(lo.FromPtr(ss.SortField)); field != "" {
		if column, err = ResolveSortColumn(stmt.Schema, field); err != nil {
			return nil, err
		}
	}

	var (
		sqlParts []string
		vars     []any
	)

	if column != "" {
		sqlParts = append(sqlParts, fmt.Sprintf("? %s NULLS LAST", direction))
		vars = append(vars, clause.Column{Table: alias, Name: column})
	}
	if pk != "" && pk != column {
		sqlParts = append(sqlParts, "? ASC")
		vars = append(vars, clause.Column{Table: alias, Name: pk})
	}

	if len(sqlParts) == 0 {
		return nil, nil
	}

	return &clause.OrderBy{Expression: clause.Expr{
		SQL:                strings.Join(sqlParts, ", "),
		Vars:               vars,
		WithoutParentheses: true,
	}}, nil
}

func searchPredicate(o selectOptions, table, search string) (clause.Expression, error) {
	if o.documents != nil {
		if expr, ok := o.documents.Match(table, o.alias, search); ok {
			return expr, nil
		}
	}

	if search != "" {
		return nil, invalidArgumentf("%s cannot be searched", table)
	}

	return nil, nil
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
