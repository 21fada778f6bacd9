package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/transactionflow-billing/internal/domain/idempotency"
)

func TestIdempotencyRepository_Get(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &IdempotencyRepository{querier: mock, logger: newTestLogger()}
	now := time.Now()
	columns := []string{"key", "request_method", "request_path", "request_parameters_hash", "response_code", "response_body", "created_at"}
	query := `FROM idempotency_keys\s+WHERE key = \$1`

	t.Run("stored entry", func(t *testing.T) {
		mock.ExpectQuery(query).
			WithArgs("15").
			WillReturnRows(pgxmock.NewRows(columns).AddRow("15", "POST", "/api/v1/transfers", "abc", 201, []byte(`{"id":1}`), now))

		entry, err := repo.Get(ctx, "15")
		require.NoError(t, err)
		require.NotNil(t, entry)
		assert.Equal(t, "POST", entry.RequestMethod)
		assert.Equal(t, 201, entry.ResponseCode)
		assert.Equal(t, []byte(`{"id":1}`), entry.ResponseBody)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unseen key", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs("16").WillReturnError(pgx.ErrNoRows)

		entry, err := repo.Get(ctx, "16")
		assert.NoError(t, err)
		assert.Nil(t, entry)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("db error", func(t *testing.T) {
		dbErr := errors.New("broken pipe")
		mock.ExpectQuery(query).WithArgs("17").WillReturnError(dbErr)

		entry, err := repo.Get(ctx, "17")
		assert.Nil(t, entry)
		assert.ErrorIs(t, err, dbErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestIdempotencyRepository_Create(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &IdempotencyRepository{querier: mock, logger: newTestLogger()}
	entry := idempotency.NewEntry(
		idempotency.Request{Key: "15", Method: "POST", Path: "/api/v1/transfers", ParametersHash: "abc"},
		idempotency.Response{StatusCode: 201, Body: []byte(`{}`)},
	)
	query := `INSERT INTO idempotency_keys .*ON CONFLICT \(key\) DO NOTHING`
	args := []interface{}{"15", "POST", "/api/v1/transfers", "abc", 201, []byte(`{}`), entry.CreatedAt}

	mock.ExpectExec(query).WithArgs(args...).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(query).WithArgs(args...).WillReturnResult(pgxmock.NewResult("INSERT", 0))
	mock.ExpectExec(query).WithArgs(args...).WillReturnError(errors.New("disk full"))

	inserted, err := repo.Create(ctx, entry)
	assert.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = repo.Create(ctx, entry)
	assert.NoError(t, err)
	assert.False(t, inserted)

	inserted, err = repo.Create(ctx, entry)
	assert.Error(t, err)
	assert.False(t, inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotencyRepository_DeleteOlderThan(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &IdempotencyRepository{querier: mock, logger: newTestLogger()}
	cutoff := time.Now().Add(-72 * time.Hour)

	mock.ExpectExec(`DELETE FROM idempotency_keys\s+WHERE created_at < \$1`).
		WithArgs(cutoff).
		WillReturnResult(pgxmock.NewResult("DELETE", 12))

	removed, err := repo.DeleteOlderThan(ctx, cutoff)
	assert.NoError(t, err)
	assert.Equal(t, int64(12), removed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotencyRepository_ReserveKeyBlock(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &IdempotencyRepository{querier: mock, logger: newTestLogger()}
	query := `UPDATE idempotency_key_counter\s+SET next_value = next_value \+ \$1`

	t.Run("reserves block", func(t *testing.T) {
		mock.ExpectQuery(query).
			WithArgs(int64(100)).
			WillReturnRows(pgxmock.NewRows([]string{"start"}).AddRow(int64(201)))

		start, err := repo.ReserveKeyBlock(ctx, 100)
		assert.NoError(t, err)
		assert.Equal(t, int64(201), start)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects empty block", func(t *testing.T) {
		_, err := repo.ReserveKeyBlock(ctx, 0)
		assert.Error(t, err)
	})

	t.Run("db error", func(t *testing.T) {
		dbErr := errors.New("relation does not exist")
		mock.ExpectQuery(query).WithArgs(int64(100)).WillReturnError(dbErr)

		_, err := repo.ReserveKeyBlock(ctx, 100)
		assert.ErrorIs(t, err, dbErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
