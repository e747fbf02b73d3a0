package pager

import (
	"gorm.io/gorm"
)

// Cursor is a continuation token of a CursorPager.
type Cursor interface {
	String() string
	IsEmpty() bool
	Apply(*gorm.DB) *gorm.DB
	validate(orderings Orderings) error
}

// Page is the payload of a token-paginated listing.
type Page[T any] struct {
	Items []T `json:"items"`
	// Limit effective page size used for the query.
	Limit int `json:"limit"`
	// NextPageToken is empty on the last page.
	NextPageToken string `json:"nextPageToken,omitempty"`
}
