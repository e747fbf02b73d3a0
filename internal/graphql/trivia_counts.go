package graphql

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/Alp4ka/quizhub/internal/auth"
	"github.com/Alp4ka/quizhub/internal/models"
)

type triviaCountsResolver struct {
	questions, unverifiedQuestions   int64
	categories, unverifiedCategories int64
	reports, reportedQuestions       int64
	danglingQuestions                int64
}

func (c *triviaCountsResolver) QuestionsCount() int32 { return int32(c.questions) }

func (c *triviaCountsResolver) UnverifiedQuestionsCount() int32 {
	return int32(c.unverifiedQuestions)
}

func (c *triviaCountsResolver) CategoriesCount() int32 { return int32(c.categories) }

func (c *triviaCountsResolver) UnverifiedCategoriesCount() int32 {
	return int32(c.unverifiedCategories)
}

func (c *triviaCountsResolver) ReportsCount() int32 { return int32(c.reports) }

func (c *triviaCountsResolver) ReportedQuestionsCount() int32 { return int32(c.reportedQuestions) }

func (c *triviaCountsResolver) DanglingQuestionsCount() int32 { return int32(c.danglingQuestions) }

// TriviaCounts summarizes the moderation queue. Disabled questions and
// categories are not counted.
func (r *Resolver) TriviaCounts(ctx context.Context) (*triviaCountsResolver, error) {
	if _, err := auth.Require(ctx, models.RoleTriviaAdmin); err != nil {
		return nil, gqlError(err)
	}

	var (
		ret triviaCountsResolver
		yes = true
		no  = false
	)

	g, gctx := errgroup.WithContext(ctx)

	countQuestions := func(dst *int64, verified, reported, dangling *bool) {
		g.Go(func() error {
			return r.db.WithContext(gctx).
				Table(`"trivia_questions" AS "question"`).
				Scopes(questionFilters(verified, &no, reported, dangling)).
				Count(dst).Error
		})
	}
	countCategories := func(dst *int64, verified *bool) {
		g.Go(func() error {
			q := r.db.WithContext(gctx).Model(&models.TriviaCategory{}).Where("disabled = ?", false)
			if verified != nil {
				q = q.Where("verified = ?", *verified)
			}

			return q.Count(dst).Error
		})
	}

	countQuestions(&ret.questions, nil, nil, nil)
	countQuestions(&ret.unverifiedQuestions, &no, nil, nil)
	countQuestions(&ret.reportedQuestions, nil, &yes, nil)
	countQuestions(&ret.danglingQuestions, nil, nil, &yes)
	countCategories(&ret.categories, nil)
	countCategories(&ret.unverifiedCategories, &no)
	g.Go(func() error {
		return r.db.WithContext(gctx).Model(&models.TriviaReport{}).Count(&ret.reports).Error
	})

	if err := g.Wait(); err != nil {
		return nil, gqlError(err)
	}

	return &ret, nil
}
