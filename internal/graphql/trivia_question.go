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

type triviaQuestionResolver struct {
	r        *Resolver
	question *models.TriviaQuestion
}

func (q *triviaQuestionResolver) ID() graphqlgo.ID {
	return graphqlgo.ID(q.question.ID)
}

func (q *triviaQuestionResolver) Question() string {
	return q.question.Question
}

func (q *triviaQuestionResolver) Answer() string {
	return q.question.Answer
}

func (q *triviaQuestionResolver) Category(ctx context.Context) (*triviaCategoryResolver, error) {
	if q.question.CategoryID == nil {
		return nil, nil
	}

	category, err := findByID[models.TriviaCategory](ctx, q.r.db, *q.question.CategoryID)
	if err != nil || category == nil {
		return nil, gqlError(err)
	}

	return &triviaCategoryResolver{q.r, category}, nil
}

func (q *triviaQuestionResolver) Language(ctx context.Context) (*languageResolver, error) {
	if q.question.LanguageID == nil {
		return nil, nil
	}

	language, err := findByID[models.Language](ctx, q.r.db, *q.question.LanguageID)
	if err != nil || language == nil {
		return nil, gqlError(err)
	}

	return &languageResolver{language}, nil
}

func (q *triviaQuestionResolver) Hint1() *string {
	return q.question.Hint1
}

func (q *triviaQuestionResolver) Hint2() *string {
	return q.question.Hint2
}

func (q *triviaQuestionResolver) Submitter() *string {
	return q.question.Submitter
}

func (q *triviaQuestionResolver) SubmitterUser(ctx context.Context) (*userResolver, error) {
	return q.adminUser(ctx, q.question.SubmitterUserID)
}

func (q *triviaQuestionResolver) UpdatedBy(ctx context.Context) (*userResolver, error) {
	return q.adminUser(ctx, q.question.UpdatedByID)
}

func (q *triviaQuestionResolver) adminUser(ctx context.Context, id *string) (*userResolver, error) {
	if _, err := auth.Require(ctx, models.RoleTriviaAdmin); err != nil {
		return nil, gqlError(err)
	}
	if id == nil {
		return nil, nil
	}

	user, err := findByID[models.User](ctx, q.r.db, *id)
	if err != nil || user == nil {
		return nil, gqlError(err)
	}

	return &userResolver{q.r, user}, nil
}

func (q *triviaQuestionResolver) Verified() bool {
	return q.question.Verified
}

func (q *triviaQuestionResolver) Disabled() bool {
	return q.question.Disabled
}

func (q *triviaQuestionResolver) Reports(ctx context.Context) (*[]*triviaReportResolver, error) {
	if _, err := auth.Require(ctx, models.RoleTriviaAdmin); err != nil {
		return nil, gqlError(err)
	}

	var reports []*models.TriviaReport
	if err := q.r.db.WithContext(ctx).Where("question_id = ?", q.question.ID).Order("created_at").Find(&reports).Error; err != nil {
		return nil, gqlError(err)
	}

	ret := lo.Map(reports, func(report *models.TriviaReport, _ int) *triviaReportResolver {
		return &triviaReportResolver{q.r, report}
	})

	return &ret, nil
}

func (q *triviaQuestionResolver) CreatedAt() graphqlgo.Time {
	return graphqlgo.Time{Time: q.question.CreatedAt}
}

func (q *triviaQuestionResolver) UpdatedAt() graphqlgo.Time {
	return graphqlgo.Time{Time: q.question.UpdatedAt}
}

func (q *triviaQuestionResolver) Version() int32 {
	return int32(q.question.Version)
}

const questionAlias = "question"

type triviaQuestionsArgs struct {
	connectionArgs
	Verified *bool
	Disabled bool
	Reported *bool
	Dangling *bool
}

func (r *Resolver) TriviaQuestion(ctx context.Context, args idArgs) (*triviaQuestionResolver, error) {
	question, err := findByID[models.TriviaQuestion](ctx, r.db, string(args.ID))
	if err != nil || question == nil {
		return nil, gqlError(err)
	}

	return &triviaQuestionResolver{r, question}, nil
}

// TriviaQuestions lists questions. Filtering by reports is reserved to
// trivia admins.
func (r *Resolver) TriviaQuestions(ctx context.Context, args triviaQuestionsArgs) (*connectionResolver[*triviaQuestionResolver], error) {
	if args.Reported != nil {
		if _, err := auth.Require(ctx, models.RoleTriviaAdmin); err != nil {
			return nil, gqlError(err)
		}
	}

	conn, err := pager.SelectConnection[models.TriviaQuestion](ctx, r.db,
		args.connection(),
		args.searchAndSort("", ""),
		pager.WithAlias(questionAlias),
		pager.WithDocuments(r.documents),
		pager.WithPredicates(questionFilters(args.Verified, &args.Disabled, args.Reported, args.Dangling)),
	)
	if err != nil {
		return nil, gqlError(err)
	}

	return newConnection(conn, func(q models.TriviaQuestion) *triviaQuestionResolver {
		return &triviaQuestionResolver{r, &q}
	}), nil
}

// questionFilters narrows a selection of trivia_questions aliased as
// "question". Nil filters are not applied.
func questionFilters(verified, disabled, reported, dangling *bool) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		if verified != nil {
			tx = tx.Where(`"question"."verified" = ?`, *verified)
		}
		if disabled != nil {
			tx = tx.Where(`"question"."disabled" = ?`, *disabled)
		}
		if reported != nil {
			exists := `EXISTS (SELECT 1 FROM "trivia_reports" AS "report" WHERE "report"."question_id" = "question"."id")`
			if !*reported {
				exists = "NOT " + exists
			}
			tx = tx.Where(exists)
		}
		if dangling != nil {
			tx = tx.Where(`(SELECT (NOT "category"."verified") OR "category"."disabled" FROM "trivia_categories" AS "category"`+
				` WHERE "category"."id" = "question"."category_id") = ?`, *dangling)
		}

		return tx
	}
}

type triviaQuestionInput struct {
	ID         *graphqlgo.ID
	Question   string
	Answer     string
	CategoryID *graphqlgo.ID
	LanguageID *graphqlgo.ID
	Hint1      *string
	Hint2      *string
	Submitter  *string
}

func (in triviaQuestionInput) validate() error {
	if strings.TrimSpace(in.Question) == "" || strings.TrimSpace(in.Answer) == "" {
		return fmt.Errorf("%w: question and answer are required", pager.ErrInvalidArgument)
	}

	return nil
}

func optionalID(id *graphqlgo.ID) *string {
	if id == nil {
		return nil
	}

	return lo.ToPtr(string(*id))
}

// SaveTriviaQuestion submits a new question, or edits an existing one for
// trivia admins. Edits bump the version.
func (r *Resolver) SaveTriviaQuestion(ctx context.Context, args struct{ Input triviaQuestionInput }) (*triviaQuestionResolver, error) {
	in := args.Input
	if err := in.validate(); err != nil {
		return nil, gqlError(err)
	}

	caller := auth.FromContext(ctx)

	if in.ID == nil {
		question := &models.TriviaQuestion{
			ID:         models.NewID(models.TypeTriviaQuestion),
			Question:   in.Question,
			Answer:     in.Answer,
			CategoryID: optionalID(in.CategoryID),
			LanguageID: optionalID(in.LanguageID),
			Hint1:      in.Hint1,
			Hint2:      in.Hint2,
			Submitter:  in.Submitter,
			Version:    1,
		}
		if caller != nil {
			question.SubmitterUserID = &caller.UserID
			question.UpdatedByID = &caller.UserID
		}

		if err := r.recorder.Create(ctx, r.db, question); err != nil {
			return nil, gqlError(err)
		}

		return &triviaQuestionResolver{r, question}, nil
	}

	if _, err := auth.Require(ctx, models.RoleTriviaAdmin); err != nil {
		return nil, gqlError(err)
	}

	question, err := findByID[models.TriviaQuestion](ctx, r.db, string(*in.ID))
	if err != nil {
		return nil, gqlError(err)
	}
	if question == nil {
		return nil, gqlError(errNotFound)
	}

	err = r.recorder.Update(ctx, r.db, question, map[string]any{
		"question":      in.Question,
		"answer":        in.Answer,
		"category_id":   optionalID(in.CategoryID),
		"language_id":   optionalID(in.LanguageID),
		"hint1":         in.Hint1,
		"hint2":         in.Hint2,
		"submitter":     in.Submitter,
		"updated_by_id": caller.UserID,
		"version":       question.Version + 1,
	})
	if err != nil {
		return nil, gqlError(err)
	}

	return &triviaQuestionResolver{r, question}, nil
}

func (r *Resolver) VerifyTriviaQuestions(ctx context.Context, args idsArgs) (*countResult, error) {
	return r.updateQuestions(ctx, args, map[string]any{"verified": true})
}

// RemoveTriviaQuestions disables questions; their rows stay.
func (r *Resolver) RemoveTriviaQuestions(ctx context.Context, args idsArgs) (*countResult, error) {
	return r.updateQuestions(ctx, args, map[string]any{"disabled": true})
}

func (r *Resolver) CategorizeTriviaQuestions(ctx context.Context, args struct {
	IDs        []graphqlgo.ID
	CategoryID graphqlgo.ID
}) (*countResult, error) {
	if _, err := auth.Require(ctx, models.RoleTriviaAdmin); err != nil {
		return nil, gqlError(err)
	}

	category, err := findByID[models.TriviaCategory](ctx, r.db, string(args.CategoryID))
	if err != nil {
		return nil, gqlError(err)
	}
	if category == nil {
		return nil, gqlError(fmt.Errorf("category %s: %w", args.CategoryID, errNotFound))
	}

	return r.updateQuestions(ctx, idsArgs{IDs: args.IDs}, map[string]any{"category_id": category.ID})
}

func (r *Resolver) updateQuestions(ctx context.Context, args idsArgs, changes map[string]any) (*countResult, error) {
	if _, err := auth.Require(ctx, models.RoleTriviaAdmin); err != nil {
		return nil, gqlError(err)
	}

	questions, err := findByIDs[models.TriviaQuestion](ctx, r.db, args.strings())
	if err != nil {
		return nil, gqlError(err)
	}

	err = r.recorder.Transaction(ctx, r.db, func(tx *audit.Tx) error {
		for _, q := range questions {
			if err := tx.Update(q, changes); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, gqlError(err)
	}

	return &countResult{len(questions)}, nil
}
