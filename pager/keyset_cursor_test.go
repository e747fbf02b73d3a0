package pager

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_KeysetCursor_validate(t *testing.T) {
	c := NewKeysetCursor(KeysetElement{Column: "id", Value: 1, Operator: OperatorGT})

	tests := []struct {
		name string
		ord  Orderings
		ok   bool
	}{
		{"ok", Orderings{{Column: "id", Direction: SortASC}}, true},
		{"count mismatch", Orderings{{Column: "id", Direction: SortASC}, {Column: "name", Direction: SortASC}}, false},
		{"name mismatch", Orderings{{Column: "other", Direction: SortASC}}, false},
		{"operator mismatch", Orderings{{Column: "id", Direction: SortDESC}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.validate(tt.ord)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidArgument)
			}
		})
	}

	assert.NoError(t, (*KeysetCursor)(nil).validate(Orderings{{Column: "id", Direction: SortASC}}))
}

func Test_KeysetCursor_TokenRoundTrip(t *testing.T) {
	c := NewKeysetCursor(
		KeysetElement{Column: "created_at", Value: "2024-05-01T10:00:00Z", Operator: OperatorLT},
		KeysetElement{Column: "id", Value: "6c0f7c2e-8a53-4a43-9d38-2d0b3c1f7f10", Operator: OperatorLT},
	)

	decoded, err := DecodeKeysetCursor(c.String())
	require.NoError(t, err)
	assert.Equal(t, c.Elements(), decoded.Elements())

	empty, err := DecodeKeysetCursor("")
	require.NoError(t, err)
	assert.True(t, empty.IsEmpty())
	assert.Equal(t, "", empty.String())

	_, err = DecodeKeysetCursor("not-json")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func Test_KeysetCursor_predicate(t *testing.T) {
	c := NewKeysetCursor(
		KeysetElement{Column: "a", Value: 1, Operator: OperatorGT},
		KeysetElement{Column: "b", Value: 2, Operator: OperatorLT},
	)

	assert.Equal(t, keysetPredicate{
		{{Column: "a", Value: 1, Operator: OperatorGT}},
		{{Column: "a", Value: 1, Operator: operatorEq}, {Column: "b", Value: 2, Operator: OperatorLT}},
	}, c.predicate())

	assert.Nil(t, (*KeysetCursor)(nil).predicate())
	assert.Nil(t, keysetPredicate(nil).expression())
}

func Test_restoreTokenValue(t *testing.T) {
	ts := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, ts, restoreTokenValue("2024-05-01T10:00:00Z"))
	assert.Equal(t, "2024-05-01", restoreTokenValue("2024-05-01"))
	assert.Equal(t, 42, restoreTokenValue(42))
}

func Test_NextPageKeysetCursor(t *testing.T) {
	type item struct {
		ID        string
		CreatedAt string
	}

	getters := Getters[item]{
		"created_at": func(i item) any { return i.CreatedAt },
		"id":         func(i item) any { return i.ID },
	}
	ord := Orderings{{Column: "created_at", Direction: SortDESC}, {Column: "id", Direction: SortDESC}}

	tests := []struct {
		name       string
		pager      *CursorPager[*KeysetCursor]
		items      []item
		wantLen    int
		wantCursor bool
		wantLastID string
		wantErr    bool
	}{
		{
			name:       "full page without lookahead",
			pager:      NewCursorPager[*KeysetCursor]().WithLimit(2).WithSort(ord...),
			items:      []item{{"b", "2024-01-02T00:00:00Z"}, {"a", "2024-01-01T00:00:00Z"}},
			wantLen:    2,
			wantCursor: true,
			wantLastID: "a",
		},
		{
			name:    "short page is the last one",
			pager:   NewCursorPager[*KeysetCursor]().WithLimit(3).WithSort(ord...),
			items:   []item{{"b", "2024-01-02T00:00:00Z"}},
			wantLen: 1,
		},
		{
			name:       "lookahead trims the extra row",
			pager:      NewCursorPager[*KeysetCursor]().WithLimit(1).WithLookahead().WithSort(ord...),
			items:      []item{{"b", "2024-01-02T00:00:00Z"}, {"a", "2024-01-01T00:00:00Z"}},
			wantLen:    1,
			wantCursor: true,
			wantLastID: "b",
		},
		{
			name: "missing getter",
			pager: NewCursorPager[*KeysetCursor]().WithLimit(1).
				WithSort(OrderBy{Column: "title", Direction: SortASC}),
			items:   []item{{"a", "2024-01-01T00:00:00Z"}},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, next, err := NextPageKeysetCursor(tt.pager, tt.items, getters)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Len(t, items, tt.wantLen)

			if !tt.wantCursor {
				assert.Nil(t, next)
				return
			}

			require.NotNil(t, next)
			elements := next.Elements()
			require.Len(t, elements, 2)
			assert.Equal(t, OperatorLT, elements[0].Operator)
			assert.Equal(t, tt.wantLastID, elements[1].Value)
		})
	}
}
