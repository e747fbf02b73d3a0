package pager

import (
	"fmt"
	"math"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SortDirection of an ordered column.
type SortDirection string

const (
	SortASC  SortDirection = "ASC"
	SortDESC SortDirection = "DESC"
)

// ParseSortDirection accepts asc/desc in any case. An empty string is SortASC.
func ParseSortDirection(s string) (SortDirection, error) {
	if s == "" {
		return SortASC, nil
	}

	d := SortDirection(strings.ToUpper(s))
	if !d.Valid() {
		return "", invalidArgumentf("unknown sort direction %q", s)
	}

	return d, nil
}

func (d SortDirection) Valid() bool {
	return d == SortASC || d == SortDESC
}

// Operator is the keyset comparison that continues an ordering in this
// direction.
func (d SortDirection) Operator() Operator {
	if d == SortDESC {
		return OperatorLT
	}

	return OperatorGT
}

type (
	Orderings []OrderBy
	OrderBy   struct {
		// Column may be qualified with a table name: "changes.created_at".
		Column    string
		Direction SortDirection
	}

	// ColumnMapping maps names accepted from clients to column names.
	ColumnMapping = map[string]string
)

var _columnNameCharset = append([]rune("_."), lo.AlphanumericCharset...)

func (o OrderBy) validate() error {
	if !o.Direction.Valid() {
		return fmt.Errorf("invalid ordering direction '%s'", o.Direction)
	}

	if o.Column == "" || !lo.Every(_columnNameCharset, []rune(o.Column)) {
		return fmt.Errorf("ordering column name contains forbidden symbols '%s'", o.Column)
	}

	return nil
}

func (o OrderBy) clause() clause.OrderByColumn {
	return clause.OrderByColumn{
		Column: clause.Column{Name: o.Column},
		Desc:   o.Direction == SortDESC,
	}
}

// Apply adds the orderings to the ORDER BY clause of db.
func (o Orderings) Apply(db *gorm.DB) *gorm.DB {
	if len(o) == 0 {
		return db
	}

	return db.Clauses(clause.OrderBy{Columns: lo.Map(o, func(item OrderBy, _ int) clause.OrderByColumn {
		return item.clause()
	})})
}

func (o Orderings) validate() error {
	if len(o) == 0 {
		return fmt.Errorf("empty ordering list")
	}

	for _, ordering := range o {
		if err := ordering.validate(); err != nil {
			return err
		}
	}

	return nil
}

// ParseSort builds Orderings from "name asc|desc" items. Names are translated
// through mapping; an unknown name fails with ErrInvalidArgument and the
// closest known name as a hint.
func ParseSort(items []string, mapping ColumnMapping) (Orderings, error) {
	ret := make(Orderings, 0, len(items))

	for _, item := range items {
		fields := strings.Fields(item)
		if len(fields) != 2 {
			return nil, invalidArgumentf("invalid ordering string format '%s'", item)
		}

		column, ok := mapping[fields[0]]
		if !ok {
			return nil, invalidArgumentf("unknown sort field '%s', closest: '%s'", fields[0], closest(fields[0], lo.Keys(mapping)))
		}

		direction, err := ParseSortDirection(fields[1])
		if err != nil {
			return nil, err
		}

		ret = append(ret, OrderBy{Column: column, Direction: direction})
	}

	return ret, nil
}

func closest(input string, candidates []string) string {
	best, bestDist := "", math.MaxInt

	for _, candidate := range candidates {
		if dist := levenshtein.ComputeDistance(input, candidate); dist < bestDist ||
			(dist == bestDist && candidate < best) {
			best, bestDist = candidate, dist
		}
	}

	return best
}
