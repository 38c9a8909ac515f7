package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/diewo77/go-rems/internal/models"
	"github.com/diewo77/go-rems/internal/store"
	"github.com/diewo77/go-rems/internal/testdb"
)

func TestGetInsertDelete(t *testing.T) {
	db := testdb.SQLite(t)
	ctx := context.Background()

	p := &models.Property{AgentID: 1, Title: "Loft", Address: "1 rue A", City: "Paris", Price: 100}
	require.NoError(t, store.Insert(ctx, db, p))
	require.NotZero(t, p.ID)

	got, err := store.Get[models.Property](ctx, db, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Loft", got.Title)
	assert.False(t, got.Approved)
	assert.Equal(t, models.StatusAvailable, got.Status)

	require.NoError(t, store.Delete[models.Property](ctx, db, p.ID))
	_, err = store.Get[models.Property](ctx, db, p.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, store.Delete[models.Property](ctx, db, p.ID), store.ErrNotFound)
}

func TestUpdate_IdempotentAndMissing(t *testing.T) {
	db := testdb.SQLite(t)
	ctx := context.Background()

	p := &models.Property{AgentID: 1, Title: "Loft", Address: "1 rue A", City: "Paris", Price: 100}
	require.NoError(t, store.Insert(ctx, db, p))

	for i := 0; i < 2; i++ {
		require.NoError(t, store.Update[models.Property](ctx, db, p.ID, map[string]any{"approved": true}))
	}
	got, err := store.Get[models.Property](ctx, db, p.ID)
	require.NoError(t, err)
	assert.True(t, got.Approved)

	err = store.Update[models.Property](ctx, db, 999, map[string]any{"approved": true})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestListAndCount(t *testing.T) {
	db := testdb.SQLite(t)
	ctx := context.Background()
	for _, city := range []string{"Paris", "Lyon", "Paris"} {
		require.NoError(t, store.Insert(ctx, db, &models.Property{AgentID: 1, Title: "x", Address: "y", City: city, Price: 1}))
	}
	inParis := func(q *gorm.DB) *gorm.DB { return q.Where("city = ?", "Paris") }

	list, err := store.List[models.Property](ctx, db, inParis)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	n, err := store.Count[models.Property](ctx, db, inParis)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestUpdate_StoreFailure(t *testing.T) {
	db, mock := testdb.Mock(t)
	mock.ExpectExec(`UPDATE "properties"`).WillReturnError(errors.New("connection reset"))

	err := store.Update[models.Property](context.Background(), db, 3, map[string]any{"approved": true})
	require.Error(t, err)
	assert.NotErrorIs(t, err, store.ErrNotFound)
	assert.Contains(t, err.Error(), "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete_StoreFailure(t *testing.T) {
	db, mock := testdb.Mock(t)
	mock.ExpectExec(`DELETE FROM "reviews"`).WillReturnError(errors.New("timeout"))

	err := store.Delete[models.Review](context.Background(), db, 3)
	require.Error(t, err)
	assert.NotErrorIs(t, err, store.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete_MissingRowViaMock(t *testing.T) {
	db, mock := testdb.Mock(t)
	mock.ExpectExec(`DELETE FROM "reviews"`).WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.Delete[models.Review](context.Background(), db, 3)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, store.IsUniqueViolation(errors.New("UNIQUE constraint failed: messages.client_id")))
	assert.True(t, store.IsUniqueViolation(gorm.ErrDuplicatedKey))
	assert.False(t, store.IsUniqueViolation(errors.New("timeout")))
	assert.False(t, store.IsUniqueViolation(nil))
}
