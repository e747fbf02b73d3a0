package pager

import (
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Cursor_RoundTrip(t *testing.T) {
	for _, n := range []int{0, 1, 9, 10, 99, 123456} {
		got, err := DecodeCursor(EncodeCursor(n))
		require.NoError(t, err)
		assert.Equal(t, n, got)
	}

	assert.Equal(t, "YXJyYXljb25uZWN0aW9uOjA=", EncodeCursor(0))
}

func Test_DecodeCursor_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		cursor string
	}{
		{"not base64", "%%%"},
		{"wrong prefix", "Zm9vOjE="},
		{"not a number", "YXJyYXljb25uZWN0aW9uOmFiYw=="},
		{"negative offset", "YXJyYXljb25uZWN0aW9uOi0x"},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeCursor(tt.cursor)
			assert.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
}

func Test_ResolveWindow(t *testing.T) {
	tests := []struct {
		name string
		args ConnectionArgs
		want Window
	}{
		{
			name: "no arguments read everything",
			args: ConnectionArgs{},
			want: Window{},
		},
		{
			name: "first only",
			args: ConnectionArgs{First: lo.ToPtr(10)},
			want: Window{Skip: 0, Take: 10, Bounded: true},
		},
		{
			name: "first with skipped pages",
			args: ConnectionArgs{First: lo.ToPtr(10), SkipPages: lo.ToPtr(2)},
			want: Window{Skip: 20, Take: 10, Bounded: true},
		},
		{
			name: "after and first start right after the cursor",
			args: ConnectionArgs{After: lo.ToPtr(EncodeCursor(9)), First: lo.ToPtr(10)},
			want: Window{Skip: 10, Take: 10, Bounded: true},
		},
		{
			name: "after and first with skipped pages",
			args: ConnectionArgs{After: lo.ToPtr(EncodeCursor(9)), First: lo.ToPtr(10), SkipPages: lo.ToPtr(1)},
			want: Window{Skip: 20, Take: 10, Bounded: true},
		},
		{
			name: "before and last end right before the cursor",
			args: ConnectionArgs{Before: lo.ToPtr(EncodeCursor(50)), Last: lo.ToPtr(10)},
			want: Window{Skip: 40, Take: 10, Bounded: true},
		},
		{
			name: "before and last clamp at zero",
			args: ConnectionArgs{Before: lo.ToPtr(EncodeCursor(5)), Last: lo.ToPtr(10), SkipPages: lo.ToPtr(1)},
			want: Window{Skip: 0, Take: 10, Bounded: true},
		},
		{
			name: "last without before is unbounded",
			args: ConnectionArgs{Last: lo.ToPtr(5)},
			want: Window{},
		},
		{
			name: "after with zero first is unbounded",
			args: ConnectionArgs{After: lo.ToPtr(EncodeCursor(9)), First: lo.ToPtr(0)},
			want: Window{},
		},
		{
			name: "before with zero last is unbounded",
			args: ConnectionArgs{Before: lo.ToPtr(EncodeCursor(50)), Last: lo.ToPtr(0)},
			want: Window{},
		},
		{
			name: "zero first is unbounded",
			args: ConnectionArgs{First: lo.ToPtr(0), SkipPages: lo.ToPtr(2)},
			want: Window{},
		},
		{
			name: "negative skipped pages clamp at zero",
			args: ConnectionArgs{First: lo.ToPtr(10), SkipPages: lo.ToPtr(-3)},
			want: Window{Skip: 0, Take: 10, Bounded: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveWindow(tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func Test_ResolveWindow_NegativeArguments(t *testing.T) {
	tests := []ConnectionArgs{
		{First: lo.ToPtr(-1)},
		{Last: lo.ToPtr(-1)},
		{After: lo.ToPtr(EncodeCursor(3)), First: lo.ToPtr(-1)},
		{Before: lo.ToPtr(EncodeCursor(3)), Last: lo.ToPtr(-1)},
		{First: lo.ToPtr(5), Last: lo.ToPtr(-1)},
	}
	for _, args := range tests {
		_, err := ResolveWindow(args)
		assert.ErrorIs(t, err, ErrInvalidArgument)

		_, err = ConnectionFromSlice([]int{1, 2, 3}, args, SliceMeta{ArrayLength: 3})
		assert.ErrorIs(t, err, ErrInvalidArgument)
	}
}

// readPage emulates SelectConnection over an in-memory ordered set.
func readPage(t *testing.T, total int, args ConnectionArgs) *Connection[int] {
	t.Helper()

	rows := make([]int, total)
	for i := range rows {
		rows[i] = i
	}

	window, err := ResolveWindow(args)
	require.NoError(t, err)

	slice := rows
	if window.Bounded {
		from := min(window.Skip, total)
		to := min(window.Skip+window.Take, total)
		slice = rows[from:to]
	}

	conn, err := ConnectionFromSlice(slice, args, SliceMeta{SliceStart: window.Skip, ArrayLength: total})
	require.NoError(t, err)

	return conn
}

func cursors(from, to int) []string {
	ret := make([]string, 0, to-from+1)
	for i := from; i <= to; i++ {
		ret = append(ret, EncodeCursor(i))
	}

	return ret
}

func edgeCursors(c *Connection[int]) []string {
	return lo.Map(c.Edges, func(e Edge[int], _ int) string { return e.Cursor })
}

func Test_ConnectionFromSlice(t *testing.T) {
	tests := []struct {
		name        string
		total       int
		args        ConnectionArgs
		wantCursors []string
		wantPrev    bool
		wantNext    bool
	}{
		{
			name:        "first page",
			total:       100,
			args:        ConnectionArgs{First: lo.ToPtr(10)},
			wantCursors: cursors(0, 9),
			wantPrev:    false,
			wantNext:    true,
		},
		{
			name:        "after and first",
			total:       100,
			args:        ConnectionArgs{After: lo.ToPtr(EncodeCursor(9)), First: lo.ToPtr(10)},
			wantCursors: cursors(10, 19),
			wantPrev:    true,
			wantNext:    true,
		},
		{
			name:        "last near the end",
			total:       100,
			args:        ConnectionArgs{Last: lo.ToPtr(5)},
			wantCursors: cursors(95, 99),
			wantPrev:    true,
			wantNext:    false,
		},
		{
			name:        "before and last",
			total:       100,
			args:        ConnectionArgs{Before: lo.ToPtr(EncodeCursor(50)), Last: lo.ToPtr(10)},
			wantCursors: cursors(40, 49),
			wantPrev:    true,
			wantNext:    true,
		},
		{
			name:        "before and last truncated at the start",
			total:       100,
			args:        ConnectionArgs{Before: lo.ToPtr(EncodeCursor(5)), Last: lo.ToPtr(10), SkipPages: lo.ToPtr(1)},
			wantCursors: cursors(0, 4),
			wantPrev:    false,
			wantNext:    true,
		},
		{
			name:        "skipped pages",
			total:       100,
			args:        ConnectionArgs{First: lo.ToPtr(10), SkipPages: lo.ToPtr(2)},
			wantCursors: cursors(20, 29),
			wantPrev:    true,
			wantNext:    true,
		},
		{
			name:        "last page of first",
			total:       25,
			args:        ConnectionArgs{After: lo.ToPtr(EncodeCursor(19)), First: lo.ToPtr(10)},
			wantCursors: cursors(20, 24),
			wantPrev:    true,
			wantNext:    false,
		},
		{
			name:        "after beyond the end",
			total:       100,
			args:        ConnectionArgs{After: lo.ToPtr(EncodeCursor(200)), First: lo.ToPtr(10)},
			wantCursors: nil,
			wantPrev:    true,
			wantNext:    false,
		},
		{
			name:        "first zero",
			total:       10,
			args:        ConnectionArgs{First: lo.ToPtr(0)},
			wantCursors: nil,
			wantPrev:    false,
			wantNext:    true,
		},
		{
			name:        "after with first zero",
			total:       100,
			args:        ConnectionArgs{After: lo.ToPtr(EncodeCursor(9)), First: lo.ToPtr(0)},
			wantCursors: nil,
			wantPrev:    false,
			wantNext:    true,
		},
		{
			name:        "before with last zero",
			total:       100,
			args:        ConnectionArgs{Before: lo.ToPtr(EncodeCursor(50)), Last: lo.ToPtr(0)},
			wantCursors: nil,
			wantPrev:    true,
			wantNext:    false,
		},
		{
			name:        "empty set",
			total:       0,
			args:        ConnectionArgs{First: lo.ToPtr(10)},
			wantCursors: nil,
			wantPrev:    false,
			wantNext:    false,
		},
		{
			name:        "no arguments",
			total:       3,
			args:        ConnectionArgs{},
			wantCursors: cursors(0, 2),
			wantPrev:    false,
			wantNext:    false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := readPage(t, tt.total, tt.args)

			if tt.wantCursors == nil {
				assert.Empty(t, conn.Edges)
				assert.Nil(t, conn.PageInfo.StartCursor)
				assert.Nil(t, conn.PageInfo.EndCursor)
			} else {
				assert.Equal(t, tt.wantCursors, edgeCursors(conn))
				assert.Equal(t, tt.wantCursors[0], *conn.PageInfo.StartCursor)
				assert.Equal(t, tt.wantCursors[len(tt.wantCursors)-1], *conn.PageInfo.EndCursor)
			}

			assert.Equal(t, tt.wantPrev, conn.PageInfo.HasPreviousPage, "hasPreviousPage")
			assert.Equal(t, tt.wantNext, conn.PageInfo.HasNextPage, "hasNextPage")
			assert.Equal(t, tt.total, conn.PageInfo.Count)

			for _, e := range conn.Edges {
				offset, err := DecodeCursor(e.Cursor)
				require.NoError(t, err)
				assert.Equal(t, offset, e.Node, "edge cursor must point at its own row")
			}
		})
	}
}

func Test_ConnectionFromSlice_InvalidCursor(t *testing.T) {
	_, err := ConnectionFromSlice([]int{1}, ConnectionArgs{After: lo.ToPtr("nope")}, SliceMeta{ArrayLength: 1})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func Test_Connection_Nodes(t *testing.T) {
	conn := readPage(t, 5, ConnectionArgs{First: lo.ToPtr(3)})
	assert.Equal(t, []int{0, 1, 2}, conn.Nodes())
}
