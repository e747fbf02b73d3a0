package graphql

import (
	"context"
	_ "embed"
	"fmt"

	graphqlgo "github.com/graph-gophers/graphql-go"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/Alp4ka/quizhub/audit"
	"github.com/Alp4ka/quizhub/fulltext"
	"github.com/Alp4ka/quizhub/internal/auth"
)

//go:embed schema.graphql
var schemaSDL string

// maxDepth bounds field nesting so a single query cannot walk the graph
// indefinitely.
const maxDepth = 12

// Resolver is the root of every query, mutation and subscription field.
type Resolver struct {
	db        *gorm.DB
	documents *fulltext.Registry
	recorder  *audit.Recorder
	broker    audit.Broker
	auth      *auth.Service
}

func NewResolver(db *gorm.DB, documents *fulltext.Registry, recorder *audit.Recorder, broker audit.Broker, authService *auth.Service) *Resolver {
	return &Resolver{
		db:        db,
		documents: documents,
		recorder:  recorder,
		broker:    broker,
		auth:      authService,
	}
}

// NewSchema parses the schema and binds it to r.
func NewSchema(r *Resolver) (*graphqlgo.Schema, error) {
	schema, err := graphqlgo.ParseSchema(schemaSDL, r,
		graphqlgo.MaxDepth(maxDepth),
		graphqlgo.Logger(panicLogger{}),
	)
	if err != nil {
		return nil, fmt.Errorf("cannot parse graphql schema: %w", err)
	}

	return schema, nil
}

type panicLogger struct{}

func (panicLogger) LogPanic(_ context.Context, value interface{}) {
	log.WithField("panic", value).Error("graphql resolver panicked")
}

// findByID loads the row of T with the given id. A missing row is nil
// without error.
func findByID[T any](ctx context.Context, db *gorm.DB, id string) (*T, error) {
	row := new(T)

	res := db.WithContext(ctx).Where("id = ?", id).Limit(1).Find(row)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}

	return row, nil
}

// findByIDs loads the rows of T with the given ids, in no particular order.
func findByIDs[T any](ctx context.Context, db *gorm.DB, ids []string) ([]*T, error) {
	rows := make([]*T, 0, len(ids))
	if len(ids) == 0 {
		return rows, nil
	}

	if err := db.WithContext(ctx).Where("id IN ?", lo.Uniq(ids)).Find(&rows).Error; err != nil {
		return nil, err
	}

	return rows, nil
}
