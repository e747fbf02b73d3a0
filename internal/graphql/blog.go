package graphql

import (
	"context"
	"fmt"

	graphqlgo "github.com/graph-gophers/graphql-go"
	"github.com/samber/lo"
	"gorm.io/gorm"

	"github.com/Alp4ka/quizhub/internal/auth"
	"github.com/Alp4ka/quizhub/internal/models"
	"github.com/Alp4ka/quizhub/pager"
)

type blogEntryResolver struct {
	entry *models.BlogEntry
}

func (b *blogEntryResolver) ID() graphqlgo.ID {
	return graphqlgo.ID(b.entry.ID)
}

func (b *blogEntryResolver) Story() string {
	return b.entry.Story
}

func (b *blogEntryResolver) Title() string {
	return b.entry.Title
}

func (b *blogEntryResolver) Message() *string {
	return b.entry.Message
}

func (b *blogEntryResolver) ImageMimeType() *string {
	return b.entry.ImageMimeType
}

func (b *blogEntryResolver) ImageFileExtension() *string {
	return b.entry.ImageFileExtension
}

func (b *blogEntryResolver) CreatedAt() graphqlgo.Time {
	return graphqlgo.Time{Time: b.entry.CreatedAt}
}

func (b *blogEntryResolver) UpdatedAt() graphqlgo.Time {
	return graphqlgo.Time{Time: b.entry.UpdatedAt}
}

const entryAlias = "entry"

type blogEntriesArgs struct {
	connectionArgs
	Story *string
}

func (r *Resolver) BlogEntry(ctx context.Context, args idArgs) (*blogEntryResolver, error) {
	entry, err := findByID[models.BlogEntry](ctx, r.db, string(args.ID))
	if err != nil || entry == nil {
		return nil, gqlError(err)
	}

	return &blogEntryResolver{entry}, nil
}

// BlogEntries lists entries, newest first unless a sort is given.
func (r *Resolver) BlogEntries(ctx context.Context, args blogEntriesArgs) (*connectionResolver[*blogEntryResolver], error) {
	conn, err := pager.SelectConnection[models.BlogEntry](ctx, r.db,
		args.connection(),
		args.searchAndSort("created_at", pager.SortDESC),
		pager.WithAlias(entryAlias),
		pager.WithDocuments(r.documents),
		pager.WithPredicates(func(tx *gorm.DB) *gorm.DB {
			if story := lo.FromPtr(args.Story); story != "" {
				tx = tx.Where(`"entry"."story" = ?`, story)
			}

			return tx
		}),
	)
	if err != nil {
		return nil, gqlError(err)
	}

	return newConnection(conn, func(e models.BlogEntry) *blogEntryResolver {
		return &blogEntryResolver{&e}
	}), nil
}

type blogEntryInput struct {
	ID                 *graphqlgo.ID
	Story              *string
	Title              *string
	Message            *string
	ImageMimeType      *string
	ImageFileExtension *string
}

// SaveBlogEntry creates an entry, or updates the given fields of an existing
// one.
func (r *Resolver) SaveBlogEntry(ctx context.Context, args struct{ Input blogEntryInput }) (*blogEntryResolver, error) {
	if _, err := auth.Require(ctx, models.RoleAdmin); err != nil {
		return nil, gqlError(err)
	}

	in := args.Input

	if in.ID == nil {
		if lo.FromPtr(in.Story) == "" || lo.FromPtr(in.Title) == "" {
			return nil, gqlError(fmt.Errorf("%w: story and title are required", pager.ErrInvalidArgument))
		}

		entry := &models.BlogEntry{
			ID:                 models.NewID(models.TypeBlogEntry),
			Story:              *in.Story,
			Title:              *in.Title,
			Message:            in.Message,
			ImageMimeType:      in.ImageMimeType,
			ImageFileExtension: in.ImageFileExtension,
		}
		if err := r.recorder.Create(ctx, r.db, entry); err != nil {
			return nil, gqlError(err)
		}

		return &blogEntryResolver{entry}, nil
	}

	entry, err := findByID[models.BlogEntry](ctx, r.db, string(*in.ID))
	if err != nil {
		return nil, gqlError(err)
	}
	if entry == nil {
		return nil, gqlError(errNotFound)
	}

	changes := map[string]any{}
	for column, value := range map[string]*string{
		"story":                in.Story,
		"title":                in.Title,
		"message":              in.Message,
		"image_mime_type":      in.ImageMimeType,
		"image_file_extension": in.ImageFileExtension,
	} {
		if value != nil {
			changes[column] = *value
		}
	}

	if err = r.recorder.Update(ctx, r.db, entry, changes); err != nil {
		return nil, gqlError(err)
	}

	return &blogEntryResolver{entry}, nil
}
