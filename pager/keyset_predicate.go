package pager

import (
	"time"

	"gorm.io/gorm/clause"
)

type (
	// comparison is Operator(Column, Value). Same layout as KeysetElement.
	comparison struct {
		Column   string
		Value    any
		Operator Operator
	}

	conjunction []comparison

	// keysetPredicate is a disjunction of conjunctions:
	//
	//	(A11 AND A12) OR (A21 AND A22) ...
	keysetPredicate []conjunction
)

// expression renders "Column Operator ?". The column is quoted by the
// dialect, the value is bound.
func (c comparison) expression() clause.Expression {
	return clause.Expr{
		SQL:  "? " + string(c.Operator) + " ?",
		Vars: []any{clause.Column{Name: c.Column}, restoreTokenValue(c.Value)},
	}
}

// restoreTokenValue turns timestamps that went through JSON back into
// time.Time so that they are bound as timestamps, not text.
func restoreTokenValue(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}

	var t time.Time
	if err := t.UnmarshalText([]byte(s)); err != nil {
		return v
	}

	return t
}

func (c conjunction) expression() clause.Expression {
	switch len(c) {
	case 0:
		return nil
	case 1:
		return c[0].expression()
	}

	exprs := make([]clause.Expression, 0, len(c))
	for _, cmp := range c {
		exprs = append(exprs, cmp.expression())
	}

	return clause.And(exprs...)
}

func (p keysetPredicate) expression() clause.Expression {
	exprs := make([]clause.Expression, 0, len(p))
	for _, conj := range p {
		if exp := conj.expression(); exp != nil {
			exprs = append(exprs, exp)
		}
	}

	switch len(exprs) {
	case 0:
		return nil
	case 1:
		return exprs[0]
	default:
		return clause.Or(exprs...)
	}
}
