package postgres

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/entregas/core"
	"github.com/trezcool/entregas/core/delivery"
	"github.com/trezcool/entregas/core/user"
)

func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return &DB{db: sqlx.NewDb(db, "postgres")}, mock
}

var deliveryCols = []string{"id", "owner", "subject", "task", "due_date", "file_url", "status", "created_at", "updated_at"}

func TestUserRepository_CreateUser(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("ok", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewUserRepository(db)
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
			WithArgs(sqlmock.AnyArg(), "A001", user.RoleStudent, []byte("hash"), now, now).
			WillReturnResult(sqlmock.NewResult(0, 1))

		usr, err := repo.CreateUser(ctx, user.User{
			Identifier:   "A001",
			Role:         user.RoleStudent,
			PasswordHash: []byte("hash"),
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		require.NoError(t, err)
		assert.NotEmpty(t, usr.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate identifier", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewUserRepository(db)
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
			WillReturnError(&pq.Error{Code: uniqueViolation})

		_, err := repo.CreateUser(ctx, user.User{Identifier: "A001"})
		assert.ErrorIs(t, err, user.ErrAlreadyExists)
	})
}

func TestUserRepository_GetUserByIdentifier(t *testing.T) {
	ctx := context.Background()
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE identifier = $1")).
		WithArgs("admin").
		WillReturnRows(sqlmock.NewRows([]string{"id", "identifier", "role", "password_hash", "created_at", "updated_at"}).
			AddRow("u1", "admin", user.RoleAdmin, []byte("hash"), now, now))
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE identifier = $1")).
		WithArgs("nobody").
		WillReturnError(sql.ErrNoRows)

	usr, err := repo.GetUserByIdentifier(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, "u1", usr.ID)
	assert.True(t, usr.IsAdmin())

	_, err = repo.GetUserByIdentifier(ctx, "nobody")
	assert.ErrorIs(t, err, user.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeliveryRepository_QueryDeliveries(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("all", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewDeliveryRepository(db)
		mock.ExpectQuery(regexp.QuoteMeta("FROM deliveries ORDER BY created_at DESC, seq DESC")).
			WillReturnRows(sqlmock.NewRows(deliveryCols).
				AddRow("d2", "A002", "Programación Web", "Proyecto Final", now, "#", "APPROVED", now, now).
				AddRow("d1", "A001", "Base de Datos", "Modelo ER", now, "#", "SUBMITTED", now.Add(-time.Hour), now))

		deliveries, err := repo.QueryDeliveries(ctx, delivery.QueryFilter{}, delivery.DefaultOrdering)
		require.NoError(t, err)
		require.Len(t, deliveries, 2)
		assert.Equal(t, "d2", deliveries[0].ID)
		assert.Equal(t, delivery.StatusApproved, deliveries[0].Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("by owner", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewDeliveryRepository(db)
		mock.ExpectQuery(regexp.QuoteMeta("FROM deliveries WHERE owner = $1 ORDER BY created_at DESC, seq DESC")).
			WithArgs("A003").
			WillReturnRows(sqlmock.NewRows(deliveryCols))

		deliveries, err := repo.QueryDeliveries(ctx, delivery.QueryFilter{Owner: "A003"}, delivery.DefaultOrdering)
		require.NoError(t, err)
		assert.NotNil(t, deliveries)
		assert.Empty(t, deliveries)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestOrderBy(t *testing.T) {
	assert.Equal(t, "created_at DESC, seq DESC", orderBy(nil))
	assert.Equal(t, "created_at ASC, seq ASC", orderBy([]core.DBOrdering{{Field: "created_at", Ascending: true}}))
	assert.Equal(t, "created_at DESC, seq DESC", orderBy([]core.DBOrdering{{Field: "1; DROP TABLE deliveries"}}))
}

func TestDeliveryRepository_UpdateDeliveryStatus(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()
	db, mock := newMockDB(t)
	repo := NewDeliveryRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE deliveries SET status = $1, updated_at = $2 WHERE id = $3 RETURNING")).
		WithArgs("REJECTED", now, "d1").
		WillReturnRows(sqlmock.NewRows(deliveryCols).
			AddRow("d1", "A001", "Base de Datos", "Modelo ER", now, "#", "REJECTED", now, now))
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE deliveries")).
		WithArgs("REJECTED", now, "nope").
		WillReturnRows(sqlmock.NewRows(deliveryCols))

	d, err := repo.UpdateDeliveryStatus(ctx, "d1", delivery.StatusRejected, now)
	require.NoError(t, err)
	assert.Equal(t, delivery.StatusRejected, d.Status)

	_, err = repo.UpdateDeliveryStatus(ctx, "nope", delivery.StatusRejected, now)
	assert.ErrorIs(t, err, delivery.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeliveryRepository_DeleteDelivery(t *testing.T) {
	ctx := context.Background()
	db, mock := newMockDB(t)
	repo := NewDeliveryRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM deliveries WHERE id = $1")).
		WithArgs("d1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM deliveries WHERE id = $1")).
		WithArgs("d1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repo.DeleteDelivery(ctx, "d1"))
	assert.ErrorIs(t, repo.DeleteDelivery(ctx, "d1"), delivery.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
