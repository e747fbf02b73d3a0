package graphql

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	graphqlgo "github.com/graph-gophers/graphql-go"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Alp4ka/quizhub/audit"
	"github.com/Alp4ka/quizhub/internal/auth"
	"github.com/Alp4ka/quizhub/internal/models"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	db       *gorm.DB
	mock     sqlmock.Sqlmock
	broker   *audit.MemoryBroker
	signer   *auth.Signer
	resolver *Resolver
	schema   *graphqlgo.Schema
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	conn, mock, err := sqlmock.New()
	require.NoError(t, err)

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: conn}), &gorm.Config{})
	require.NoError(t, err)

	registry, err := models.NewSearchRegistry()
	require.NoError(t, err)

	broker := audit.NewMemoryBroker(0)
	t.Cleanup(broker.Close)

	n := 0
	recorder := audit.NewRecorder(broker, models.AuditPolicy(),
		audit.WithClock(func() time.Time { return fixedNow }),
		audit.WithIDGenerator(func() string {
			n++
			return models.EncodeID(models.TypeChange, fmt.Sprint(n))
		}),
	)

	throttle, err := auth.NewThrottle()
	require.NoError(t, err)
	t.Cleanup(throttle.Close)

	signer := auth.NewSigner([]byte("secret"), time.Hour)
	resolver := NewResolver(db, registry, recorder, broker, auth.NewService(db, recorder, signer, throttle, nil))

	schema, err := NewSchema(resolver)
	require.NoError(t, err)

	return &testEnv{
		db:       db,
		mock:     mock,
		broker:   broker,
		signer:   signer,
		resolver: resolver,
		schema:   schema,
	}
}

type gqlResult struct {
	Data   map[string]any `json:"data"`
	Errors []struct {
		Message    string         `json:"message"`
		Extensions map[string]any `json:"extensions"`
	} `json:"errors"`
}

func (e *testEnv) exec(t *testing.T, ctx context.Context, query string, vars map[string]any) gqlResult {
	t.Helper()

	raw, err := json.Marshal(e.schema.Exec(ctx, query, "", vars))
	require.NoError(t, err)

	var res gqlResult
	require.NoError(t, json.Unmarshal(raw, &res))

	return res
}

func (r gqlResult) errorCode() string {
	if len(r.Errors) == 0 {
		return ""
	}

	code, _ := r.Errors[0].Extensions["code"].(string)
	return code
}

func as(roles ...string) context.Context {
	return auth.WithIdentity(context.Background(), &auth.Identity{
		UserID:   models.EncodeID(models.TypeUser, "1"),
		Username: "tester",
		Roles:    roles,
	})
}
