package graphql

import (
	"errors"
	"math"

	log "github.com/sirupsen/logrus"

	"github.com/Alp4ka/quizhub/internal/auth"
	"github.com/Alp4ka/quizhub/internal/models"
	"github.com/Alp4ka/quizhub/pager"
)

const (
	codeBadUserInput    = "BAD_USER_INPUT"
	codeUnauthenticated = "UNAUTHENTICATED"
	codeForbidden       = "FORBIDDEN"
	codeNotFound        = "NOT_FOUND"
	codeInternal        = "INTERNAL_SERVER_ERROR"
)

var errNotFound = models.ErrNotFound

// resolverError carries the extension code clients branch on.
type resolverError struct {
	err        error
	code       string
	retryAfter int
}

func (e *resolverError) Error() string {
	return e.err.Error()
}

func (e *resolverError) Unwrap() error {
	return e.err
}

func (e *resolverError) Extensions() map[string]interface{} {
	ext := map[string]interface{}{"code": e.code}
	if e.retryAfter > 0 {
		ext["retryAfter"] = e.retryAfter
	}

	return ext
}

// gqlError classifies err for the response. It returns nil for a nil err so
// resolvers can return it unconditionally.
func gqlError(err error) error {
	if err == nil {
		return nil
	}

	ret := &resolverError{err: err, code: codeInternal}

	var throttled *auth.ThrottledError
	switch {
	case errors.As(err, &throttled):
		ret.code = codeUnauthenticated
		ret.retryAfter = int(math.Ceil(throttled.RetryAfter.Seconds()))
	case errors.Is(err, auth.ErrUnauthorized):
		ret.code = codeUnauthenticated
	case errors.Is(err, auth.ErrForbidden):
		ret.code = codeForbidden
	case errors.Is(err, errNotFound):
		ret.code = codeNotFound
	case errors.Is(err, pager.ErrInvalidArgument),
		errors.Is(err, models.ErrInvalidID),
		errors.Is(err, auth.ErrMissingCredentials),
		errors.Is(err, auth.ErrUsernameTaken):
		ret.code = codeBadUserInput
	default:
		log.WithError(err).Error("graphql resolver failed")
	}

	return ret
}
