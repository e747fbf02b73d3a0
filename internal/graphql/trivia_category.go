package graphql

import (
	"context"
	"fmt"
	"strings"

	graphqlgo "github.com/graph-gophers/graphql-go"
	"github.com/samber/lo"
	"gorm.io/gorm"

	"github.com/Alp4ka/quizhub/audit"
	"github.com/Alp4ka/quizhub/internal/auth"
	"github.com/Alp4ka/quizhub/internal/models"
	"github.com/Alp4ka/quizhub/pager"
)

type triviaCategoryResolver struct {
	r        *Resolver
	category *models.TriviaCategory
}

func (c *triviaCategoryResolver) ID() graphqlgo.ID {
	return graphqlgo.ID(c.category.ID)
}

func (c *triviaCategoryResolver) Name() string {
	return c.category.Name
}

func (c *triviaCategoryResolver) Description() *string {
	return c.category.Description
}

func (c *triviaCategoryResolver) Submitter() *string {
	return c.category.Submitter
}

func (c *triviaCategoryResolver) Verified() bool {
	return c.category.Verified
}

func (c *triviaCategoryResolver) Disabled() bool {
	return c.category.Disabled
}

func (c *triviaCategoryResolver) CreatedAt() graphqlgo.Time {
	return graphqlgo.Time{Time: c.category.CreatedAt}
}

func (c *triviaCategoryResolver) UpdatedAt() graphqlgo.Time {
	return graphqlgo.Time{Time: c.category.UpdatedAt}
}

// Questions lists the questions of the category to trivia admins.
func (c *triviaCategoryResolver) Questions(ctx context.Context) (*[]*triviaQuestionResolver, error) {
	if _, err := auth.Require(ctx, models.RoleTriviaAdmin); err != nil {
		return nil, gqlError(err)
	}

	var questions []*models.TriviaQuestion
	if err := c.r.db.WithContext(ctx).Where("category_id = ?", c.category.ID).Order("created_at").Find(&questions).Error; err != nil {
		return nil, gqlError(err)
	}

	ret := lo.Map(questions, func(q *models.TriviaQuestion, _ int) *triviaQuestionResolver {
		return &triviaQuestionResolver{c.r, q}
	})

	return &ret, nil
}

const categoryAlias = "category"

type triviaCategoriesArgs struct {
	connectionArgs
	Verified *bool
	Disabled bool
}

func (r *Resolver) TriviaCategory(ctx context.Context, args idArgs) (*triviaCategoryResolver, error) {
	category, err := findByID[models.TriviaCategory](ctx, r.db, string(args.ID))
	if err != nil || category == nil {
		return nil, gqlError(err)
	}

	return &triviaCategoryResolver{r, category}, nil
}

func (r *Resolver) TriviaCategories(ctx context.Context, args triviaCategoriesArgs) (*connectionResolver[*triviaCategoryResolver], error) {
	conn, err := pager.SelectConnection[models.TriviaCategory](ctx, r.db,
		args.connection(),
		args.searchAndSort("name", pager.SortASC),
		pager.WithAlias(categoryAlias),
		pager.WithDocuments(r.documents),
		pager.WithPredicates(func(tx *gorm.DB) *gorm.DB {
			if args.Verified != nil {
				tx = tx.Where(`"category"."verified" = ?`, *args.Verified)
			}

			return tx.Where(`"category"."disabled" = ?`, args.Disabled)
		}),
	)
	if err != nil {
		return nil, gqlError(err)
	}

	return newConnection(conn, func(c models.TriviaCategory) *triviaCategoryResolver {
		return &triviaCategoryResolver{r, &c}
	}), nil
}

type triviaCategoryInput struct {
	ID          *graphqlgo.ID
	Name        string
	Description *string
	Submitter   *string
}

// SaveTriviaCategory submits a new category, or edits an existing one for
// trivia admins.
func (r *Resolver) SaveTriviaCategory(ctx context.Context, args struct{ Input triviaCategoryInput }) (*triviaCategoryResolver, error) {
	in := args.Input
	if strings.TrimSpace(in.Name) == "" {
		return nil, gqlError(fmt.Errorf("%w: category name is required", pager.ErrInvalidArgument))
	}

	if in.ID == nil {
		category := &models.TriviaCategory{
			ID:          models.NewID(models.TypeTriviaCategory),
			Name:        in.Name,
			Description: in.Description,
			Submitter:   in.Submitter,
		}
		if id := auth.FromContext(ctx); id != nil {
			category.SubmitterUserID = &id.UserID
		}

		if err := r.recorder.Create(ctx, r.db, category); err != nil {
			return nil, gqlError(err)
		}

		return &triviaCategoryResolver{r, category}, nil
	}

	if _, err := auth.Require(ctx, models.RoleTriviaAdmin); err != nil {
		return nil, gqlError(err)
	}

	category, err := findByID[models.TriviaCategory](ctx, r.db, string(*in.ID))
	if err != nil {
		return nil, gqlError(err)
	}
	if category == nil {
		return nil, gqlError(errNotFound)
	}

	err = r.recorder.Update(ctx, r.db, category, map[string]any{
		"name":        in.Name,
		"description": in.Description,
		"submitter":   in.Submitter,
	})
	if err != nil {
		return nil, gqlError(err)
	}

	return &triviaCategoryResolver{r, category}, nil
}

type idsArgs struct {
	IDs []graphqlgo.ID
}

func (a idsArgs) strings() []string {
	return lo.Map(a.IDs, func(id graphqlgo.ID, _ int) string { return string(id) })
}

func (r *Resolver) VerifyTriviaCategories(ctx context.Context, args idsArgs) (*countResult, error) {
	return r.updateCategories(ctx, args, map[string]any{"verified": true})
}

// RemoveTriviaCategories disables categories; their rows stay.
func (r *Resolver) RemoveTriviaCategories(ctx context.Context, args idsArgs) (*countResult, error) {
	return r.updateCategories(ctx, args, map[string]any{"disabled": true})
}

func (r *Resolver) updateCategories(ctx context.Context, args idsArgs, changes map[string]any) (*countResult, error) {
	if _, err := auth.Require(ctx, models.RoleTriviaAdmin); err != nil {
		return nil, gqlError(err)
	}

	categories, err := findByIDs[models.TriviaCategory](ctx, r.db, args.strings())
	if err != nil {
		return nil, gqlError(err)
	}

	err = r.recorder.Transaction(ctx, r.db, func(tx *audit.Tx) error {
		for _, c := range categories {
			if err := tx.Update(c, changes); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, gqlError(err)
	}

	return &countResult{len(categories)}, nil
}
