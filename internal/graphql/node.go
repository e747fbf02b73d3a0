package graphql

import (
	"context"

	graphqlgo "github.com/graph-gophers/graphql-go"

	"github.com/Alp4ka/quizhub/audit"
	"github.com/Alp4ka/quizhub/internal/auth"
	"github.com/Alp4ka/quizhub/internal/models"
)

type node interface {
	ID() graphqlgo.ID
}

type nodeResolver struct {
	node
}

func (n *nodeResolver) ToUser() (*userResolver, bool) {
	r, ok := n.node.(*userResolver)
	return r, ok
}

func (n *nodeResolver) ToUserRole() (*userRoleResolver, bool) {
	r, ok := n.node.(*userRoleResolver)
	return r, ok
}

func (n *nodeResolver) ToLanguage() (*languageResolver, bool) {
	r, ok := n.node.(*languageResolver)
	return r, ok
}

func (n *nodeResolver) ToTriviaCategory() (*triviaCategoryResolver, bool) {
	r, ok := n.node.(*triviaCategoryResolver)
	return r, ok
}

func (n *nodeResolver) ToTriviaQuestion() (*triviaQuestionResolver, bool) {
	r, ok := n.node.(*triviaQuestionResolver)
	return r, ok
}

func (n *nodeResolver) ToTriviaReport() (*triviaReportResolver, bool) {
	r, ok := n.node.(*triviaReportResolver)
	return r, ok
}

func (n *nodeResolver) ToBlogEntry() (*blogEntryResolver, bool) {
	r, ok := n.node.(*blogEntryResolver)
	return r, ok
}

func (n *nodeResolver) ToChange() (*changeResolver, bool) {
	r, ok := n.node.(*changeResolver)
	return r, ok
}

// Node refetches any entity by its global id. Users, reports and changes are
// only visible to the roles that may list them.
func (r *Resolver) Node(ctx context.Context, args idArgs) (*nodeResolver, error) {
	typeName, _, err := models.DecodeID(string(args.ID))
	if err != nil {
		return nil, gqlError(err)
	}

	var n node

	switch typeName {
	case models.TypeUser:
		if _, err = auth.Require(ctx, models.RoleAdmin); err != nil {
			return nil, gqlError(err)
		}
		user, err := findByID[models.User](ctx, r.db, string(args.ID))
		if err != nil || user == nil {
			return nil, gqlError(err)
		}
		n = &userResolver{r, user}
	case models.TypeUserRole:
		role, err := findByID[models.UserRole](ctx, r.db, string(args.ID))
		if err != nil || role == nil {
			return nil, gqlError(err)
		}
		n = &userRoleResolver{role}
	case models.TypeLanguage:
		language, err := r.Language(ctx, args)
		if err != nil || language == nil {
			return nil, err
		}
		n = language
	case models.TypeTriviaCategory:
		category, err := r.TriviaCategory(ctx, args)
		if err != nil || category == nil {
			return nil, err
		}
		n = category
	case models.TypeTriviaQuestion:
		question, err := r.TriviaQuestion(ctx, args)
		if err != nil || question == nil {
			return nil, err
		}
		n = question
	case models.TypeTriviaReport:
		report, err := r.TriviaReport(ctx, args)
		if err != nil || report == nil {
			return nil, err
		}
		n = report
	case models.TypeBlogEntry:
		entry, err := r.BlogEntry(ctx, args)
		if err != nil || entry == nil {
			return nil, err
		}
		n = entry
	case models.TypeChange:
		if _, err = auth.Require(ctx, models.RoleAdmin); err != nil {
			return nil, gqlError(err)
		}
		change, err := findByID[audit.ChangeRecord](ctx, r.db, string(args.ID))
		if err != nil || change == nil {
			return nil, gqlError(err)
		}
		n = &changeResolver{change}
	default:
		return nil, nil
	}

	return &nodeResolver{n}, nil
}
