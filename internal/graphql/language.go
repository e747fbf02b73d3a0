package graphql

import (
	"context"

	graphqlgo "github.com/graph-gophers/graphql-go"

	"github.com/Alp4ka/quizhub/internal/auth"
	"github.com/Alp4ka/quizhub/internal/models"
)

type languageResolver struct {
	language *models.Language
}

func (l *languageResolver) ID() graphqlgo.ID {
	return graphqlgo.ID(l.language.ID)
}

func (l *languageResolver) Name() string {
	return l.language.Name
}

func (l *languageResolver) LanguageCode() *string {
	return l.language.LanguageCode
}

func (l *languageResolver) CountryCode() *string {
	return l.language.CountryCode
}

func (l *languageResolver) CreatedAt() graphqlgo.Time {
	return graphqlgo.Time{Time: l.language.CreatedAt}
}

func (l *languageResolver) UpdatedAt() graphqlgo.Time {
	return graphqlgo.Time{Time: l.language.UpdatedAt}
}

type idArgs struct {
	ID graphqlgo.ID
}

func (r *Resolver) Language(ctx context.Context, args idArgs) (*languageResolver, error) {
	language, err := findByID[models.Language](ctx, r.db, string(args.ID))
	if err != nil || language == nil {
		return nil, gqlError(err)
	}

	return &languageResolver{language}, nil
}

func (r *Resolver) Languages(ctx context.Context) ([]*languageResolver, error) {
	var languages []*models.Language
	if err := r.db.WithContext(ctx).Order("name").Find(&languages).Error; err != nil {
		return nil, gqlError(err)
	}

	ret := make([]*languageResolver, 0, len(languages))
	for _, l := range languages {
		ret = append(ret, &languageResolver{l})
	}

	return ret, nil
}

type languageInput struct {
	Name         string
	LanguageCode *string
	CountryCode  *string
}

func (r *Resolver) AddLanguage(ctx context.Context, args struct{ Input languageInput }) (*languageResolver, error) {
	if _, err := auth.Require(ctx, models.RoleAdmin); err != nil {
		return nil, gqlError(err)
	}

	language := &models.Language{
		ID:           models.NewID(models.TypeLanguage),
		Name:         args.Input.Name,
		LanguageCode: args.Input.LanguageCode,
		CountryCode:  args.Input.CountryCode,
	}
	if err := r.recorder.Create(ctx, r.db, language); err != nil {
		return nil, gqlError(err)
	}

	return &languageResolver{language}, nil
}
