package pager

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/samber/lo"
	"gorm.io/gorm"
)

var keysetEncoding = base64.RawURLEncoding

// Operator compares a column with the value it had on the last row of the
// previous page.
type Operator string

const (
	OperatorGT Operator = ">"
	OperatorLT Operator = "<"

	// operatorEq only appears in expanded keyset predicates, never in tokens.
	operatorEq Operator = "="
)

func (o Operator) Valid() bool {
	return o == OperatorLT || o == OperatorGT
}

// Direction is the ordering an operator continues.
func (o Operator) Direction() SortDirection {
	if o == OperatorLT {
		return SortDESC
	}

	return SortASC
}

// KeysetElement is one (column, operator, value) triple of a KeysetCursor.
type KeysetElement struct {
	Column   string   `json:"c"`
	Value    any      `json:"v"`
	Operator Operator `json:"o"`
}

// KeysetCursor continues a listing strictly after the last row of the
// previous page. It holds one element per ordered column, in ordering order:
//
//	[(C1, O1, V1), (C2, O2, V2) ... (Cn, On, Vn)]
//
// The ordering must end with a unique column, otherwise rows sharing the last
// value are skipped.
type KeysetCursor struct {
	elements []KeysetElement
}

func NewKeysetCursor(elements ...KeysetElement) *KeysetCursor {
	return &KeysetCursor{elements: elements}
}

// DecodeKeysetCursor parses a token produced by KeysetCursor.String. An empty
// token yields a nil cursor.
func DecodeKeysetCursor(token string) (*KeysetCursor, error) {
	if token == "" {
		return nil, nil
	}

	raw, err := keysetEncoding.DecodeString(token)
	if err != nil {
		return nil, invalidArgumentf("page token is not base64: %v", err)
	}

	var elements []KeysetElement
	if err = json.Unmarshal(raw, &elements); err != nil {
		return nil, invalidArgumentf("page token is not a keyset: %v", err)
	}

	return &KeysetCursor{elements: elements}, nil
}

// String - implements fmt.Stringer.
func (c *KeysetCursor) String() string {
	if c.IsEmpty() {
		return ""
	}

	raw, err := json.Marshal(c.elements)
	if err != nil {
		panic(fmt.Errorf("cannot marshal keyset cursor: %w", err))
	}

	return keysetEncoding.EncodeToString(raw)
}

// IsEmpty - implements Cursor.
func (c *KeysetCursor) IsEmpty() bool {
	return c == nil || len(c.elements) == 0
}

func (c *KeysetCursor) Elements() []KeysetElement {
	if c == nil {
		return nil
	}

	return c.elements
}

// Apply - implements Cursor.
func (c *KeysetCursor) Apply(db *gorm.DB) *gorm.DB {
	if exp := c.predicate().expression(); exp != nil {
		return db.Clauses(exp)
	}

	return db
}

// predicate expands the cursor into
//
//	(C1 O1 V1) OR (C1 = V1 AND C2 O2 V2) OR ...
func (c *KeysetCursor) predicate() keysetPredicate {
	if c.IsEmpty() {
		return nil
	}

	ret := make(keysetPredicate, 0, len(c.elements))
	for i, element := range c.elements {
		branch := lo.Map(c.elements[:i], func(prev KeysetElement, _ int) comparison {
			return comparison{Column: prev.Column, Operator: operatorEq, Value: prev.Value}
		})
		ret = append(ret, append(branch, comparison(element)))
	}

	return ret
}

func (c *KeysetCursor) validate(orderings Orderings) error {
	if c.IsEmpty() {
		return nil
	}

	if len(c.elements) != len(orderings) {
		return invalidArgumentf("page token has %d columns, ordering has %d", len(c.elements), len(orderings))
	}

	for i, element := range c.elements {
		switch {
		case element.Column != orderings[i].Column:
			return invalidArgumentf("unexpected page token column '%s'", element.Column)
		case !element.Operator.Valid():
			return invalidArgumentf("invalid page token operator '%s'", element.Operator)
		case element.Operator.Direction() != orderings[i].Direction:
			return invalidArgumentf("unexpected page token operator '%s'", element.Operator)
		}
	}

	return nil
}

var (
	_ Cursor       = (*KeysetCursor)(nil)
	_ fmt.Stringer = (*KeysetCursor)(nil)
)

// Getters extract the ordered columns from the last row of a page:
//
//	pager.Getters[models.ChangeRecord]{
//		"created_at": func(c models.ChangeRecord) any { return c.CreatedAt },
//		"id":         func(c models.ChangeRecord) any { return c.ID },
//	}
type Getters[T any] map[string]func(T) any

// NextPageKeysetCursor trims the lookahead row and returns the cursor of the
// page that follows resultSet. The cursor is nil on the last page.
func NextPageKeysetCursor[T any](
	initialPager *CursorPager[*KeysetCursor],
	resultSet []T,
	getters Getters[T],
) ([]T, *KeysetCursor, error) {
	if err := initialPager.validate(); err != nil {
		return nil, nil, fmt.Errorf("cannot build next page cursor: %w", err)
	}

	resultSet, last := trimPage(initialPager, resultSet)
	if last || len(resultSet) == 0 {
		return resultSet, nil, nil
	}

	row := resultSet[len(resultSet)-1]
	next := &KeysetCursor{elements: make([]KeysetElement, 0, len(initialPager.sort))}

	for _, orderBy := range initialPager.sort {
		getter, ok := getters[orderBy.Column]
		if !ok {
			return nil, nil, fmt.Errorf("cannot find getter for column '%s' met in ordering", orderBy.Column)
		}

		next.elements = append(next.elements, KeysetElement{
			Column:   orderBy.Column,
			Value:    getter(row),
			Operator: orderBy.Direction.Operator(),
		})
	}

	return resultSet, next, nil
}
