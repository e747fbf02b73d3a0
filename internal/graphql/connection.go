package graphql

import (
	"github.com/samber/lo"

	"github.com/Alp4ka/quizhub/pager"
)

// connectionArgs are the window, search and sort arguments every list field
// accepts.
type connectionArgs struct {
	Before        *string
	After         *string
	First         *int32
	Last          *int32
	SkipPages     *int32
	Search        *string
	SortField     *string
	SortDirection *string
}

func (a connectionArgs) connection() pager.ConnectionArgs {
	toInt := func(v *int32) *int {
		if v == nil {
			return nil
		}

		return lo.ToPtr(int(*v))
	}

	return pager.ConnectionArgs{
		Before:    a.Before,
		After:     a.After,
		First:     toInt(a.First),
		Last:      toInt(a.Last),
		SkipPages: toInt(a.SkipPages),
	}
}

// searchAndSort applies the default order of a listing when the client asks
// for none.
func (a connectionArgs) searchAndSort(defaultField string, defaultDirection pager.SortDirection) pager.SearchAndSortArgs {
	ss := pager.SearchAndSortArgs{
		Search:        a.Search,
		SortField:     a.SortField,
		SortDirection: pager.SortDirection(lo.FromPtr(a.SortDirection)),
	}

	if ss.SortField == nil && defaultField != "" {
		ss.SortField = &defaultField
		if ss.SortDirection == "" {
			ss.SortDirection = defaultDirection
		}
	}

	return ss
}

type connectionResolver[N any] struct {
	edges    []*edgeResolver[N]
	pageInfo pager.PageInfo
}

func newConnection[T any, N any](c *pager.Connection[T], wrap func(T) N) *connectionResolver[N] {
	return &connectionResolver[N]{
		edges: lo.Map(c.Edges, func(e pager.Edge[T], _ int) *edgeResolver[N] {
			return &edgeResolver[N]{node: wrap(e.Node), cursor: e.Cursor}
		}),
		pageInfo: c.PageInfo,
	}
}

func (c *connectionResolver[N]) Edges() []*edgeResolver[N] {
	return c.edges
}

func (c *connectionResolver[N]) PageInfo() *pageInfoResolver {
	return &pageInfoResolver{c.pageInfo}
}

type edgeResolver[N any] struct {
	node   N
	cursor string
}

func (e *edgeResolver[N]) Node() N {
	return e.node
}

func (e *edgeResolver[N]) Cursor() string {
	return e.cursor
}

type pageInfoResolver struct {
	info pager.PageInfo
}

func (p *pageInfoResolver) StartCursor() *string {
	return p.info.StartCursor
}

func (p *pageInfoResolver) EndCursor() *string {
	return p.info.EndCursor
}

func (p *pageInfoResolver) HasPreviousPage() bool {
	return p.info.HasPreviousPage
}

func (p *pageInfoResolver) HasNextPage() bool {
	return p.info.HasNextPage
}

func (p *pageInfoResolver) Count() int32 {
	return int32(p.info.Count)
}

type countResult struct {
	count int
}

func (c *countResult) Count() int32 {
	return int32(c.count)
}
