package pager

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument marks caller mistakes: malformed cursors, negative page
// sizes, unknown sort fields, search on an entity without a document.
var ErrInvalidArgument = errors.New("invalid argument")

func invalidArgumentf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
