package distlock

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestRedisLock_Contention(t *testing.T) {
	mr, client := newTestRedis(t)
	ctx := context.Background()

	first := NewRedisLock(client, "abtest:evaluate:42", time.Minute)
	second := NewRedisLock(client, "abtest:evaluate:42", time.Minute)

	ok, err := first.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = second.Acquire(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "second holder must not acquire")

	// releasing a lock we don't own is a no-op
	require.NoError(t, second.Release(ctx))
	assert.True(t, mr.Exists("lock:abtest:evaluate:42"))

	require.NoError(t, first.Release(ctx))
	assert.False(t, mr.Exists("lock:abtest:evaluate:42"))

	ok, err = second.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLock_ExpiresAfterTTL(t *testing.T) {
	mr, client := newTestRedis(t)
	ctx := context.Background()

	lock := NewRedisLock(client, "k", 30*time.Second)
	ok, err := lock.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(31 * time.Second)

	other := NewRedisLock(client, "k", 30*time.Second)
	ok, err = other.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRun(t *testing.T) {
	_, client := newTestRedis(t)
	ctx := context.Background()
	f := NewFactory(client, nil, time.Minute)

	held := f.Lock("job")
	ok, err := held.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	called := false
	err = Run(ctx, f.Lock("job"), func(context.Context) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrNotAcquired)
	assert.False(t, called)

	require.NoError(t, held.Release(ctx))

	err = Run(ctx, f.Lock("job"), func(context.Context) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, called)

	ok, err = f.Lock("job").Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok, "Run must release the lock")
}

func TestPGAdvisoryLock(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	lock := NewPGAdvisoryLock(db, "abtest:evaluate:7")

	mock.ExpectQuery(`SELECT pg_try_advisory_lock\(\$1\)`).
		WithArgs(lock.lockID).
		WillReturnRows(sqlmock.NewRows([]string{"pg_try_advisory_lock"}).AddRow(true))
	mock.ExpectExec(`SELECT pg_advisory_unlock\(\$1\)`).
		WithArgs(lock.lockID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := lock.Acquire(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, lock.Release(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewLock_FallsBackToPostgres(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	_, isPG := NewLock(nil, db, "k", time.Minute).(*PGAdvisoryLock)
	assert.True(t, isPG)
}

func TestNewRedisClient(t *testing.T) {
	client, err := NewRedisClient(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, client)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client, err = NewRedisClient(context.Background(), "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	require.NotNil(t, client)
	client.Close()

	_, err = NewRedisClient(context.Background(), "http://nope")
	assert.Error(t, err)
}
