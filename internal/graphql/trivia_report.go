package graphql

import (
	"context"

	graphqlgo "github.com/graph-gophers/graphql-go"

	"github.com/Alp4ka/quizhub/internal/auth"
	"github.com/Alp4ka/quizhub/internal/models"
)

type triviaReportResolver struct {
	r      *Resolver
	report *models.TriviaReport
}

func (t *triviaReportResolver) ID() graphqlgo.ID {
	return graphqlgo.ID(t.report.ID)
}

func (t *triviaReportResolver) Question(ctx context.Context) (*triviaQuestionResolver, error) {
	return t.r.TriviaQuestion(ctx, idArgs{ID: graphqlgo.ID(t.report.QuestionID)})
}

func (t *triviaReportResolver) Message() string {
	return t.report.Message
}

func (t *triviaReportResolver) Submitter() string {
	return t.report.Submitter
}

func (t *triviaReportResolver) CreatedAt() graphqlgo.Time {
	return graphqlgo.Time{Time: t.report.CreatedAt}
}

func (t *triviaReportResolver) UpdatedAt() graphqlgo.Time {
	return graphqlgo.Time{Time: t.report.UpdatedAt}
}

func (r *Resolver) TriviaReport(ctx context.Context, args idArgs) (*triviaReportResolver, error) {
	if _, err := auth.Require(ctx, models.RoleTriviaAdmin); err != nil {
		return nil, gqlError(err)
	}

	report, err := findByID[models.TriviaReport](ctx, r.db, string(args.ID))
	if err != nil || report == nil {
		return nil, gqlError(err)
	}

	return &triviaReportResolver{r, report}, nil
}

type triviaReportInput struct {
	QuestionID graphqlgo.ID
	Message    string
	Submitter  string
}

// ReportTriviaQuestion files a report against a question. Anyone may report.
func (r *Resolver) ReportTriviaQuestion(ctx context.Context, args struct{ Input triviaReportInput }) (*triviaReportResolver, error) {
	report, err := models.FileReport(ctx, r.db, r.recorder, string(args.Input.QuestionID), args.Input.Message, args.Input.Submitter)
	if err != nil {
		return nil, gqlError(err)
	}

	return &triviaReportResolver{r, report}, nil
}
