package graphql

import (
	"context"

	graphqlgo "github.com/graph-gophers/graphql-go"

	"github.com/Alp4ka/quizhub/internal/auth"
	"github.com/Alp4ka/quizhub/internal/models"
)

type userResolver struct {
	r    *Resolver
	user *models.User
}

func (u *userResolver) ID() graphqlgo.ID {
	return graphqlgo.ID(u.user.ID)
}

func (u *userResolver) Username() string {
	return u.user.Username
}

// Roles loads the roles of users that were read without them.
func (u *userResolver) Roles(ctx context.Context) ([]*userRoleResolver, error) {
	roles := u.user.Roles
	if roles == nil {
		if err := u.r.db.WithContext(ctx).Model(u.user).Association("Roles").Find(&roles); err != nil {
			return nil, gqlError(err)
		}
	}

	ret := make([]*userRoleResolver, 0, len(roles))
	for i := range roles {
		ret = append(ret, &userRoleResolver{&roles[i]})
	}

	return ret, nil
}

func (u *userResolver) CreatedAt() graphqlgo.Time {
	return graphqlgo.Time{Time: u.user.CreatedAt}
}

func (u *userResolver) UpdatedAt() graphqlgo.Time {
	return graphqlgo.Time{Time: u.user.UpdatedAt}
}

type userRoleResolver struct {
	role *models.UserRole
}

func (r *userRoleResolver) ID() graphqlgo.ID {
	return graphqlgo.ID(r.role.ID)
}

func (r *userRoleResolver) Name() string {
	return r.role.Name
}

func (r *userRoleResolver) Description() *string {
	return r.role.Description
}

type authResultResolver struct {
	r      *Resolver
	result *auth.Result
}

func (a *authResultResolver) Token() string {
	return a.result.Token
}

func (a *authResultResolver) User() *userResolver {
	return &userResolver{a.r, a.result.User}
}

type credentialsArgs struct {
	Username string
	Password string
}

func (r *Resolver) Me(ctx context.Context) (*userResolver, error) {
	if auth.FromContext(ctx) == nil {
		return nil, nil
	}

	user, err := r.auth.CurrentUser(ctx)
	if err != nil {
		return nil, gqlError(err)
	}

	return &userResolver{r, user}, nil
}

func (r *Resolver) Authenticate(ctx context.Context, args credentialsArgs) (*authResultResolver, error) {
	result, err := r.auth.Authenticate(ctx, args.Username, args.Password)
	if err != nil {
		return nil, gqlError(err)
	}

	return &authResultResolver{r, result}, nil
}

func (r *Resolver) RegisterUser(ctx context.Context, args credentialsArgs) (*authResultResolver, error) {
	result, err := r.auth.Register(ctx, args.Username, args.Password)
	if err != nil {
		return nil, gqlError(err)
	}

	return &authResultResolver{r, result}, nil
}
