package pager

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"
)

const offsetCursorPrefix = "arrayconnection:"

// EncodeCursor returns the opaque cursor of the row at the given absolute
// offset. The format is shared with graphql-relay clients.
func EncodeCursor(offset int) string {
	return base64.StdEncoding.EncodeToString([]byte(offsetCursorPrefix + strconv.Itoa(offset)))
}

// DecodeCursor is the inverse of EncodeCursor.
func DecodeCursor(cursor string) (int, error) {
	raw, err := base64.StdEncoding.DecodeString(cursor)
	if err != nil {
		return 0, invalidArgumentf("cursor %q is not base64: %v", cursor, err)
	}

	value, ok := strings.CutPrefix(string(raw), offsetCursorPrefix)
	if !ok {
		return 0, invalidArgumentf("cursor %q has an unknown format", cursor)
	}

	offset, err := strconv.Atoi(value)
	if err != nil || offset < 0 {
		return 0, invalidArgumentf("cursor %q does not hold a row offset", cursor)
	}

	return offset, nil
}

// OffsetCursor is used when a listing wants page tokens but the ordering has
// no unique column to build a KeysetCursor from. It remembers the absolute
// position of the last row handed out; the next page starts right after it.
type OffsetCursor struct {
	position int
}

func NewOffsetCursor(position int) *OffsetCursor {
	return &OffsetCursor{position: position}
}

// DecodeOffsetCursor parses a token produced by OffsetCursor.String. An empty
// token means the first page and yields a nil cursor.
func DecodeOffsetCursor(token string) (*OffsetCursor, error) {
	if token == "" {
		return nil, nil
	}

	position, err := DecodeCursor(token)
	if err != nil {
		return nil, err
	}

	return &OffsetCursor{position: position}, nil
}

// String - implements fmt.Stringer.
func (c *OffsetCursor) String() string {
	if c == nil {
		return ""
	}

	return EncodeCursor(c.position)
}

// IsEmpty - implements Cursor.
func (c *OffsetCursor) IsEmpty() bool {
	return c == nil
}

// Apply - implements Cursor.
func (c *OffsetCursor) Apply(db *gorm.DB) *gorm.DB {
	if c.IsEmpty() {
		return db
	}

	return db.Offset(c.next())
}

// Position returns the offset of the last row of the previous page, or -1 for
// an empty cursor.
func (c *OffsetCursor) Position() int {
	if c == nil {
		return -1
	}

	return c.position
}

func (c *OffsetCursor) next() int {
	return c.Position() + 1
}

func (c *OffsetCursor) validate(_ Orderings) error {
	return nil
}

var (
	_ Cursor       = (*OffsetCursor)(nil)
	_ fmt.Stringer = (*OffsetCursor)(nil)
)

// NextPageOffsetCursor trims the lookahead row and returns the cursor of the
// page that follows resultSet. The cursor is nil on the last page.
func NextPageOffsetCursor[T any](
	initialPager *CursorPager[*OffsetCursor],
	resultSet []T,
) ([]T, *OffsetCursor, error) {
	if err := initialPager.validate(); err != nil {
		return nil, nil, fmt.Errorf("cannot build next page offset cursor: %w", err)
	}

	resultSet, last := trimPage(initialPager, resultSet)
	if last {
		return resultSet, nil, nil
	}

	return resultSet, NewOffsetCursor(initialPager.cursor.next() + len(resultSet) - 1), nil
}
