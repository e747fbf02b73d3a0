package flags

import (
	"errors"
	"time"

	"github.com/spf13/pflag"

	"github.com/Alp4ka/quizhub/internal/auth"
)

type AuthFlags struct {
	JWTSecret     string
	TokenValidity time.Duration
	AdminUsers    []string
}

func NewAuthFlags() *AuthFlags {
	return &AuthFlags{
		TokenValidity: auth.DefaultTokenValidity,
		AdminUsers:    []string{"admin"},
	}
}

func (f *AuthFlags) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&f.JWTSecret, "jwt-secret", f.JWTSecret, "Secret that signs access tokens")
	fs.DurationVar(&f.TokenValidity, "token-validity", f.TokenValidity, "How long access tokens stay valid")
	fs.StringSliceVar(&f.AdminUsers, "admin-users", f.AdminUsers, "Usernames granted the admin and trivia-admin roles when they register")
}

func (f *AuthFlags) Validate() error {
	if f.JWTSecret == "" {
		return errors.New("--jwt-secret is required")
	}

	return nil
}

// DefaultUserRoles maps the admin usernames to the roles they receive.
func (f *AuthFlags) DefaultUserRoles() map[string][]string {
	roles := make(map[string][]string, len(f.AdminUsers))
	for _, u := range f.AdminUsers {
		roles[u] = auth.DefaultUserRoles["admin"]
	}

	return roles
}
