package auth

import (
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// attempts is what the throttle remembers about a session.
type attempts struct {
	failures int
	last     time.Time
}

// Throttle slows down repeated failed logins from one session. After more
// than 3 failures the session waits 5 seconds between attempts, after more
// than 6 a minute, after more than 12 five minutes.
type Throttle struct {
	cache *ristretto.Cache[string, attempts]
	now   func() time.Time
}

// forgetAfter bounds how long a session's failures are remembered.
const forgetAfter = time.Hour

func NewThrottle() (*Throttle, error) {
	cache, err := ristretto.NewCache(&ristretto.Config[string, attempts]{
		NumCounters: 1e5,
		MaxCost:     1e4,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}

	return &Throttle{cache: cache, now: time.Now}, nil
}

// ThrottledError tells the caller how long to wait.
type ThrottledError struct {
	RetryAfter time.Duration
}

func (e *ThrottledError) Error() string {
	return fmt.Sprintf("too many failed attempts, retry in %s", e.RetryAfter.Round(time.Second))
}

func (e *ThrottledError) Unwrap() error {
	return ErrUnauthorized
}

func backoff(failures int) time.Duration {
	switch {
	case failures > 12:
		return 5 * time.Minute
	case failures > 6:
		return time.Minute
	case failures > 3:
		return 5 * time.Second
	}

	return 0
}

// Allow returns a ThrottledError while session has to wait.
func (t *Throttle) Allow(session string) error {
	a, ok := t.cache.Get(session)
	if !ok {
		return nil
	}

	wait := a.last.Add(backoff(a.failures)).Sub(t.now())
	if wait > 0 {
		return &ThrottledError{RetryAfter: wait}
	}

	return nil
}

func (t *Throttle) Failure(session string) {
	a, _ := t.cache.Get(session)
	a.failures++
	a.last = t.now()

	t.cache.SetWithTTL(session, a, 1, forgetAfter)
	t.cache.Wait()
}

func (t *Throttle) Success(session string) {
	t.cache.Del(session)
}

func (t *Throttle) Close() {
	t.cache.Close()
}
