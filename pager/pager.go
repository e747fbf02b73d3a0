package pager

import (
	"fmt"
	"slices"

	"github.com/samber/lo"
	"gorm.io/gorm"
)

// Request is the paging part of a REST query string:
//
//	GET /api/changes?limit=20&startToken=...
type Request struct {
	// Limit maximum number of records to return.
	Limit int `json:"limit"`
	// StartToken as returned in Page.NextPageToken. Empty means first page.
	StartToken string `json:"startToken"`
}

// Keyset decodes the request into a keyset pager ordered by orderBy.
func (r Request) Keyset(orderBy ...OrderBy) (*CursorPager[*KeysetCursor], error) {
	cursor, err := DecodeKeysetCursor(r.StartToken)
	if err != nil {
		return nil, err
	}

	return NewCursorPager[*KeysetCursor]().WithCursor(cursor).WithSort(orderBy...).WithLimit(r.Limit), nil
}

// Offset decodes the request into an offset pager ordered by orderBy.
func (r Request) Offset(orderBy ...OrderBy) (*CursorPager[*OffsetCursor], error) {
	cursor, err := DecodeOffsetCursor(r.StartToken)
	if err != nil {
		return nil, err
	}

	return NewCursorPager[*OffsetCursor]().WithCursor(cursor).WithSort(orderBy...).WithLimit(r.Limit), nil
}

// CursorPager applies an ordering, a continuation cursor and a limit to a
// query. Builder methods are nil-safe.
type CursorPager[C Cursor] struct {
	lookahead bool
	limit     int
	cursor    C
	sort      Orderings
}

func NewCursorPager[C Cursor]() *CursorPager[C] {
	return &CursorPager[C]{limit: DefaultPageSize}
}

// WithLookahead makes Paginate fetch one extra row so that the last page is
// detected without an empty trailing request. Not allowed with Unlimited.
func (p *CursorPager[C]) WithLookahead() *CursorPager[C] {
	if p == nil {
		p = NewCursorPager[C]()
	}

	p.lookahead = true

	return p
}

// WithLimit sets the page size. Unlimited disables the limit, any other value
// is clamped with ClampPageSize.
func (p *CursorPager[C]) WithLimit(limit int) *CursorPager[C] {
	if p == nil {
		p = NewCursorPager[C]()
	}

	p.limit = lo.Ternary(limit == Unlimited, Unlimited, ClampPageSize(limit))

	return p
}

func (p *CursorPager[C]) WithCursor(cursor C) *CursorPager[C] {
	if p == nil {
		p = NewCursorPager[C]()
	}

	p.cursor = cursor

	return p
}

// WithSort appends orderings. A column that is already ordered on is moved to
// the end with its new direction.
func (p *CursorPager[C]) WithSort(orderBy ...OrderBy) *CursorPager[C] {
	if p == nil {
		p = NewCursorPager[C]()
	}

	for _, o := range orderBy {
		p.sort = slices.DeleteFunc(p.sort, func(existing OrderBy) bool {
			return existing.Column == o.Column
		})
		p.sort = append(p.sort, o)
	}

	return p
}

// Paginate applies ordering, cursor and limit to db.
func (p *CursorPager[C]) Paginate(db *gorm.DB) (*gorm.DB, error) {
	if err := p.validate(); err != nil {
		return nil, fmt.Errorf("cannot paginate: %w", err)
	}

	db = p.sort.Apply(db)
	db = p.cursor.Apply(db)

	if p.limit != Unlimited {
		db = db.Limit(p.datasetLimit())
	}

	return db, nil
}

func (p *CursorPager[C]) Sort() Orderings {
	if p == nil {
		return nil
	}

	return p.sort
}

func (p *CursorPager[C]) Limit() int {
	if p == nil {
		return 0
	}

	return p.limit
}

func (p *CursorPager[C]) Cursor() C {
	if p == nil {
		return lo.Empty[C]()
	}

	return p.cursor
}

func (p *CursorPager[C]) datasetLimit() int {
	return lo.Ternary(p.lookahead, p.limit+1, p.limit)
}

func (p *CursorPager[C]) validate() error {
	if p == nil {
		return fmt.Errorf("cursor pager is nil")
	}

	if p.limit == Unlimited && p.lookahead {
		return fmt.Errorf("cannot apply lookahead to unlimited paging")
	}

	if err := p.sort.validate(); err != nil {
		return err
	}

	return p.cursor.validate(p.sort)
}

// trimPage drops the lookahead row and reports whether resultSet is the last
// page of the dataset: either fewer rows than the limit came back, or the
// lookahead row is missing.
func trimPage[C Cursor, T any](p *CursorPager[C], resultSet []T) ([]T, bool) {
	if p.limit == Unlimited {
		return resultSet, true
	}

	if p.lookahead {
		if len(resultSet) <= p.limit {
			return resultSet, true
		}

		return resultSet[:p.limit], false
	}

	return resultSet, len(resultSet) < p.limit
}
