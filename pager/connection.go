package pager

import "github.com/samber/lo"

// ConnectionArgs are the Relay pagination arguments of a list field.
type ConnectionArgs struct {
	Before    *string
	After     *string
	First     *int
	Last      *int
	SkipPages *int
}

// Window is the OFFSET/LIMIT pair a connection is read with. An unbounded
// window reads the whole filtered set.
type Window struct {
	Skip    int
	Take    int
	Bounded bool
}

// ResolveWindow turns connection arguments into a row window:
//
//	before + last:  skip = before - last - last*skipPages, take = last
//	after + first:  skip = after + 1 + first*skipPages,   take = first
//	first:          skip = first*skipPages,               take = first
//
// A zero first or last selects no branch. Anything else is unbounded. skip
// never drops below zero.
func ResolveWindow(args ConnectionArgs) (Window, error) {
	if err := args.validate(); err != nil {
		return Window{}, err
	}

	skipPages := lo.FromPtr(args.SkipPages)

	switch {
	case args.Before != nil && lo.FromPtr(args.Last) > 0:
		before, err := DecodeCursor(*args.Before)
		if err != nil {
			return Window{}, err
		}

		last := *args.Last
		return Window{Skip: max(before-last-last*skipPages, 0), Take: last, Bounded: true}, nil

	case args.After != nil && lo.FromPtr(args.First) > 0:
		after, err := DecodeCursor(*args.After)
		if err != nil {
			return Window{}, err
		}

		first := *args.First
		return Window{Skip: max(after+1+first*skipPages, 0), Take: first, Bounded: true}, nil

	case lo.FromPtr(args.First) > 0:
		first := *args.First
		return Window{Skip: max(first*skipPages, 0), Take: first, Bounded: true}, nil
	}

	return Window{}, nil
}

func (a ConnectionArgs) validate() error {
	if a.First != nil && *a.First < 0 {
		return invalidArgumentf("first must be non-negative, got %d", *a.First)
	}

	if a.Last != nil && *a.Last < 0 {
		return invalidArgumentf("last must be non-negative, got %d", *a.Last)
	}

	return nil
}

type Connection[T any] struct {
	Edges    []Edge[T]
	PageInfo PageInfo
}

// Nodes returns the nodes of all edges in order.
func (c *Connection[T]) Nodes() []T {
	nodes := make([]T, 0, len(c.Edges))
	for _, e := range c.Edges {
		nodes = append(nodes, e.Node)
	}

	return nodes
}

type Edge[T any] struct {
	Node   T
	Cursor string
}

type PageInfo struct {
	StartCursor     *string
	EndCursor       *string
	HasPreviousPage bool
	HasNextPage     bool
	// Count is the size of the filtered set, regardless of the window.
	Count int
}

// SliceMeta locates a slice inside the filtered set.
type SliceMeta struct {
	// SliceStart is the absolute offset of the first element of the slice.
	SliceStart int
	// ArrayLength is the size of the filtered set.
	ArrayLength int
}

// ConnectionFromSlice builds the edges and page info of slice, which holds
// rows [meta.SliceStart, meta.SliceStart+len(slice)) of the filtered set.
// Edges are emitted only for offsets inside the window the arguments
// describe, and page flags are computed against that window.
func ConnectionFromSlice[T any](slice []T, args ConnectionArgs, meta SliceMeta) (*Connection[T], error) {
	sliceStart := meta.SliceStart
	sliceEnd := sliceStart + len(slice)

	beforeOffset, afterOffset := meta.ArrayLength, -1
	if args.Before != nil {
		offset, err := DecodeCursor(*args.Before)
		if err != nil {
			return nil, err
		}
		beforeOffset = offset
	}
	if args.After != nil {
		offset, err := DecodeCursor(*args.After)
		if err != nil {
			return nil, err
		}
		afterOffset = offset
	}

	startOffset := max(sliceStart-1, afterOffset, -1) + 1
	endOffset := min(sliceEnd, beforeOffset, meta.ArrayLength)

	if args.First != nil {
		if *args.First < 0 {
			return nil, invalidArgumentf("first must be non-negative, got %d", *args.First)
		}
		endOffset = min(endOffset, startOffset+*args.First)
	}
	if args.Last != nil {
		if *args.Last < 0 {
			return nil, invalidArgumentf("last must be non-negative, got %d", *args.Last)
		}
		startOffset = max(startOffset, endOffset-*args.Last)
	}

	from := startOffset - sliceStart
	to := len(slice) - (sliceEnd - endOffset)

	var edges []Edge[T]
	if to > from {
		edges = make([]Edge[T], 0, to-from)
		for i, node := range slice[from:to] {
			edges = append(edges, Edge[T]{Node: node, Cursor: EncodeCursor(startOffset + i)})
		}
	}

	info := PageInfo{Count: meta.ArrayLength}
	if len(edges) > 0 {
		info.StartCursor = &edges[0].Cursor
		info.EndCursor = &edges[len(edges)-1].Cursor
	}

	if args.Last != nil {
		lowerBound := 0
		if args.After != nil {
			lowerBound = afterOffset + 1
		}
		info.HasPreviousPage = startOffset > lowerBound
	} else {
		info.HasPreviousPage = sliceStart > 0
	}

	if args.First != nil {
		upperBound := meta.ArrayLength
		if args.Before != nil {
			upperBound = beforeOffset
		}
		info.HasNextPage = endOffset < upperBound
	} else {
		info.HasNextPage = sliceEnd < meta.ArrayLength
	}

	return &Connection[T]{Edges: edges, PageInfo: info}, nil
}
