package auth

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Alp4ka/quizhub/audit"
)

func newTestService(t *testing.T) (*Service, sqlmock.Sqlmock) {
	t.Helper()

	conn, mock, err := sqlmock.New()
	require.NoError(t, err)

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: conn}), &gorm.Config{})
	require.NoError(t, err)

	th, err := NewThrottle()
	require.NoError(t, err)
	t.Cleanup(th.Close)

	return NewService(db, audit.NewRecorder(nil, nil), NewSigner([]byte("secret"), time.Hour), th, nil), mock
}

func expectUser(mock sqlmock.Sqlmock, username, hash string) {
	mock.ExpectQuery(`^SELECT \* FROM "users" WHERE username = \$1 LIMIT 1$`).
		WithArgs(username).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password"}).AddRow("u1", username, hash))
	mock.ExpectQuery(`^SELECT \* FROM "user_user_roles" WHERE "user_user_roles"\."user_id" = \$1$`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "user_role_id"}).AddRow("u1", "r1"))
	mock.ExpectQuery(`^SELECT \* FROM "user_roles" WHERE "user_roles"\."id" = \$1$`).
		WithArgs("r1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow("r1", "admin"))
}

func Test_Service_Authenticate(t *testing.T) {
	s, mock := newTestService(t)
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)

	ctx := WithSession(context.Background(), "10.0.0.1")

	expectUser(mock, "admin", hash)
	res, err := s.Authenticate(ctx, "admin", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "u1", res.User.ID)

	id, err := s.Signer().Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, []string{"admin"}, id.Roles)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_Service_Authenticate_ThrottlesSession(t *testing.T) {
	s, mock := newTestService(t)
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)

	ctx := WithSession(context.Background(), "10.0.0.1")

	for i := 0; i < 4; i++ {
		expectUser(mock, "admin", hash)
		_, err = s.Authenticate(ctx, "admin", "wrong")
		require.ErrorIs(t, err, ErrUnauthorized)
	}

	_, err = s.Authenticate(ctx, "admin", "hunter2")
	var throttled *ThrottledError
	assert.ErrorAs(t, err, &throttled, "the store is not consulted while throttled")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_Service_Authenticate_UnknownUser(t *testing.T) {
	s, mock := newTestService(t)

	mock.ExpectQuery(`^SELECT \* FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password"}))

	_, err := s.Authenticate(context.Background(), "ghost", "x")
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.NoError(t, mock.ExpectationsWereMet())
}
