package pager

import (
	"strings"

	"github.com/samber/lo"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

// SearchAndSortArgs are the free-text search and single column sort of a
// connection field.
type SearchAndSortArgs struct {
	Search        *string
	SortField     *string
	SortDirection SortDirection
}

func (a SearchAndSortArgs) search() string {
	return strings.TrimSpace(lo.FromPtr(a.Search))
}

func (a SearchAndSortArgs) direction() (SortDirection, error) {
	if a.SortDirection == "" {
		return SortASC, nil
	}

	return ParseSortDirection(string(a.SortDirection))
}

// Documents resolves the full-text match predicate of a table. ok is false
// when the table has no search document.
type Documents interface {
	Match(table, alias, search string) (expr clause.Expression, ok bool)
}

// ResolveSortColumn maps a client sort field onto a direct column of s. The
// field may be the column name or, ignoring case, the struct field name, so
// both "created_at" and "createdAt" resolve. Relations, ignored fields and
// unknown names fail with ErrInvalidArgument.
func ResolveSortColumn(s *schema.Schema, field string) (string, error) {
	columns := directColumns(s)

	for _, f := range columns {
		if f.DBName == field || strings.EqualFold(f.Name, field) {
			return f.DBName, nil
		}
	}

	names := lo.Map(columns, func(f *schema.Field, _ int) string { return f.DBName })

	return "", invalidArgumentf("cannot sort %s by '%s', closest column: '%s'", s.Table, field, closest(field, names))
}

func directColumns(s *schema.Schema) []*schema.Field {
	return lo.Filter(s.Fields, func(f *schema.Field, _ int) bool {
		return f.DBName != "" && f.Readable
	})
}

func primaryColumn(s *schema.Schema) string {
	if s.PrioritizedPrimaryField != nil {
		return s.PrioritizedPrimaryField.DBName
	}

	if len(s.PrimaryFields) > 0 {
		return s.PrimaryFields[0].DBName
	}

	return ""
}
