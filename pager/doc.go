// Package pager implements page windows over gorm queries.
//
// Two styles are supported:
//   - Relay connections. ConnectionArgs are resolved into an OFFSET/LIMIT
//     window (ResolveWindow), the window is read together with the total row
//     count (SelectConnection) and turned into edges and page info
//     (ConnectionFromSlice). Cursors are absolute row offsets encoded the way
//     graphql-relay encodes them.
//   - Token pages for REST listings. CursorPager applies a Cursor and an
//     ordering to a query; KeysetCursor continues strictly after the last row
//     of the previous page, OffsetCursor continues after a row position.
package pager
