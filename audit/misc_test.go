package audit

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newGORMPostgresMock(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	conn, mock, err := sqlmock.New()
	require.NoError(t, err)

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: conn}), &gorm.Config{})
	require.NoError(t, err)

	return db, mock
}

type tPost struct {
	ID          string `gorm:"primaryKey"`
	Title       string
	Body        *string
	PublishedAt *time.Time
}

func (tPost) TableName() string { return "posts" }

type tPostTag struct {
	PostID string `gorm:"primaryKey"`
	TagID  string `gorm:"primaryKey"`
}

func (tPostTag) TableName() string { return "post_tags" }

type tAccount struct {
	ID   string `gorm:"primaryKey"`
	Name string
}

func (tAccount) TableName() string { return "users" }

// collectingBroker remembers what was published.
type collectingBroker struct {
	mu        sync.Mutex
	published []ChangeRecord
	err       error
}

func (b *collectingBroker) Publish(_ context.Context, change ChangeRecord) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.published = append(b.published, change)
	return b.err
}

func (b *collectingBroker) Subscribe(context.Context, Filter) (<-chan ChangeRecord, error) {
	return nil, fmt.Errorf("not supported")
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("c%d", n)
	}
}

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestRecorder(broker Broker) *Recorder {
	return NewRecorder(broker, nil,
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(sequentialIDs()),
	)
}
