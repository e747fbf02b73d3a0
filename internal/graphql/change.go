package graphql

import (
	"context"
	"fmt"

	graphqlgo "github.com/graph-gophers/graphql-go"
	"gorm.io/gorm"

	"github.com/Alp4ka/quizhub/audit"
	"github.com/Alp4ka/quizhub/internal/auth"
	"github.com/Alp4ka/quizhub/internal/models"
	"github.com/Alp4ka/quizhub/pager"
)

type changeResolver struct {
	change *audit.ChangeRecord
}

func (c *changeResolver) ID() graphqlgo.ID {
	return graphqlgo.ID(c.change.ID)
}

func (c *changeResolver) Kind() string {
	return string(c.change.Kind)
}

func (c *changeResolver) TargetEntityName() string {
	return c.change.TargetEntityName
}

func (c *changeResolver) TargetID() *string {
	if c.change.TargetID == "" {
		return nil
	}

	return &c.change.TargetID
}

func (c *changeResolver) TargetColumn() *string {
	return c.change.TargetColumn
}

func (c *changeResolver) NewColumnValue() *string {
	return c.change.NewColumnValue
}

func (c *changeResolver) CreatedAt() graphqlgo.Time {
	return graphqlgo.Time{Time: c.change.CreatedAt}
}

const changeAlias = "change"

type changesArgs struct {
	connectionArgs
	Kind             *string
	TargetEntityName *string
	TargetID         *string
}

// Changes lists the change log, newest first unless a sort is given.
func (r *Resolver) Changes(ctx context.Context, args changesArgs) (*connectionResolver[*changeResolver], error) {
	if _, err := auth.Require(ctx, models.RoleAdmin); err != nil {
		return nil, gqlError(err)
	}

	conn, err := pager.SelectConnection[audit.ChangeRecord](ctx, r.db,
		args.connection(),
		args.searchAndSort("created_at", pager.SortDESC),
		pager.WithAlias(changeAlias),
		pager.WithDocuments(r.documents),
		pager.WithPredicates(func(tx *gorm.DB) *gorm.DB {
			if args.Kind != nil {
				tx = tx.Where(`"change"."kind" = ?`, *args.Kind)
			}
			if args.TargetEntityName != nil {
				tx = tx.Where(`"change"."target_entity_name" = ?`, *args.TargetEntityName)
			}
			if args.TargetID != nil {
				tx = tx.Where(`"change"."target_id" = ?`, *args.TargetID)
			}

			return tx
		}),
	)
	if err != nil {
		return nil, gqlError(err)
	}

	return newConnection(conn, func(c audit.ChangeRecord) *changeResolver {
		return &changeResolver{&c}
	}), nil
}

type newChangeArgs struct {
	Kind             *string
	TargetEntityName *string
	TargetID         *string
	TargetColumn     *string
}

func (a newChangeArgs) filter() audit.Filter {
	f := audit.Filter{
		TargetEntityName: a.TargetEntityName,
		TargetID:         a.TargetID,
		TargetColumn:     a.TargetColumn,
	}
	if a.Kind != nil {
		kind := audit.Kind(*a.Kind)
		f.Kind = &kind
	}

	return f
}

// NewChange streams change records matching the arguments to admins until
// the subscription ends.
func (r *Resolver) NewChange(ctx context.Context, args newChangeArgs) (<-chan *changeResolver, error) {
	if _, err := auth.Require(ctx, models.RoleAdmin); err != nil {
		return nil, gqlError(err)
	}
	if r.broker == nil {
		return nil, gqlError(fmt.Errorf("change subscriptions are not available"))
	}

	changes, err := r.broker.Subscribe(ctx, args.filter())
	if err != nil {
		return nil, gqlError(err)
	}

	out := make(chan *changeResolver)
	go func() {
		defer close(out)

		for change := range changes {
			select {
			case out <- &changeResolver{&change}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}
