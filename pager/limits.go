package pager

const (
	// Unlimited disables the LIMIT clause of a CursorPager.
	Unlimited       = -1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// ClampPageSize maps non-positive sizes to DefaultPageSize and caps the rest
// at MaxPageSize.
func ClampPageSize(size int) int {
	return ClampPageSizeMax(size, MaxPageSize)
}

func ClampPageSizeMax(size, maxSize int) int {
	switch {
	case size <= 0:
		return DefaultPageSize
	case size > maxSize:
		return maxSize
	default:
		return size
	}
}
