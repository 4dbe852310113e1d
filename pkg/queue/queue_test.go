package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	gormlogger "gorm.io/gorm/logger"

	"paydash/app/models/payment"
	"paydash/app/repositories"
	"paydash/pkg/database"
	"paydash/pkg/database/migrations"
	"paydash/pkg/redis"
)

func newTestQueue(t *testing.T) (*RecordQueue, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := redis.NewClient(redis.RedisConfig{Address: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Client.Close() })
	return NewRecordQueue(client, Options{Prefix: "test"}), mr
}

func testRecord(orderID string) *payment.Payment {
	return payment.Compose(payment.Record{
		Gateway:    "pay10",
		Status:     "success",
		OrderID:    orderID,
		ReceivedAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		Fields:     map[string]interface{}{"RESPONSE_CODE": "000"},
		Extra:      map[string]interface{}{"encdata": "ENC", "decryptedRaw": "RESPONSE_CODE=000"},
	})
}

type flakyStore struct {
	mu       sync.Mutex
	failures int
	calls    int
	saved    []*payment.Payment
}

func (s *flakyStore) Upsert(_ context.Context, p *payment.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.calls <= s.failures {
		return errors.New("db down")
	}
	s.saved = append(s.saved, p)
	return nil
}

func TestPushAndPopRecord(t *testing.T) {
	q, mr := newTestQueue(t)
	ctx := context.Background()

	require.NoError(t, q.PushRecord(ctx, testRecord("ORD_1")))
	assert.True(t, mr.Exists("test:payments:replay"))

	n, err := q.Len(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	env, err := q.PopRecord(ctx, 100*time.Millisecond)
	require.NoError(t, err)
	require.NotNil(t, env)
	assert.Equal(t, "ORD_1", env.Record.OrderID)
	assert.Equal(t, "ENC", env.Record.EncData)
	assert.Equal(t, "RESPONSE_CODE=000", env.Record.DecryptedRaw)
	assert.Equal(t, "000", env.Record.Document["RESPONSE_CODE"])
	assert.Equal(t, 0, env.Attempts)
	assert.EqualValues(t, 1, q.Metrics().Snapshot().Pushed)
}

func TestPopRecordEmpty(t *testing.T) {
	q, _ := newTestQueue(t)
	env, err := q.PopRecord(context.Background(), 50*time.Millisecond)
	assert.NoError(t, err)
	assert.Nil(t, env)
}

func TestPopRecordRejectsGarbage(t *testing.T) {
	q, mr := newTestQueue(t)
	_, err := mr.Lpush(q.Key(), "not json")
	require.NoError(t, err)

	_, err = q.PopRecord(context.Background(), 50*time.Millisecond)
	assert.Error(t, err)
	assert.EqualValues(t, 1, q.Metrics().Snapshot().Errors[OpPop])
}

func TestWorkerReplaysAfterRetry(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx := context.Background()
	store := &flakyStore{failures: 1}
	w := NewWorker(q, store, WorkerConfig{MaxRetries: 3, RetryInterval: time.Millisecond, PollTimeout: 50 * time.Millisecond})

	require.NoError(t, q.PushRecord(ctx, testRecord("ORD_2")))

	require.NoError(t, w.ProcessNext(ctx)) // 第一次失败，放回队列
	require.NoError(t, w.ProcessNext(ctx)) // 第二次成功

	require.Len(t, store.saved, 1)
	assert.Equal(t, "ORD_2", store.saved[0].OrderID)

	snap := q.Metrics().Snapshot()
	assert.EqualValues(t, 1, snap.Retried)
	assert.EqualValues(t, 1, snap.Replayed)
	assert.EqualValues(t, 0, snap.Dropped)
}

func TestWorkerReplayKeepsNewerRecord(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx := context.Background()

	db, err := database.Connect(
		sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"),
		gormlogger.Discard,
		database.PoolConfig{MaxOpenConns: 1},
	)
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db, migrations.RegisterTables()))
	t.Cleanup(func() { _ = database.Close(db) })
	repo := repositories.NewPaymentRepository(db)

	stale := payment.Compose(payment.Record{
		Gateway:    "pay10",
		Status:     "failure",
		OrderID:    "ORD_5",
		ReceivedAt: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
		Fields:     map[string]interface{}{"RESPONSE_CODE": "001"},
	})
	require.NoError(t, q.PushRecord(ctx, stale))

	// 补偿写入之前，较新的回调已经落库
	require.NoError(t, repo.Upsert(ctx, testRecord("ORD_5")))

	w := NewWorker(q, repo, WorkerConfig{PollTimeout: 50 * time.Millisecond})
	require.NoError(t, w.ProcessNext(ctx))

	got, err := repo.GetByOrderID(ctx, "ORD_5")
	require.NoError(t, err)
	assert.Equal(t, "success", got.Status)
	assert.Equal(t, "000", got.Document["RESPONSE_CODE"])
}

func TestWorkerDropsAfterMaxRetries(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx := context.Background()
	store := &flakyStore{failures: 100}
	w := NewWorker(q, store, WorkerConfig{MaxRetries: 2, RetryInterval: time.Millisecond, PollTimeout: 50 * time.Millisecond})

	require.NoError(t, q.PushRecord(ctx, testRecord("ORD_3")))
	require.NoError(t, w.ProcessNext(ctx))
	require.NoError(t, w.ProcessNext(ctx))

	n, err := q.Len(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)
	assert.EqualValues(t, 1, q.Metrics().Snapshot().Dropped)
	assert.Equal(t, 2, store.calls)
}

func TestWorkerStartStop(t *testing.T) {
	q, _ := newTestQueue(t)
	store := &flakyStore{}
	w := NewWorker(q, store, WorkerConfig{WorkerCount: 2, PollTimeout: 20 * time.Millisecond})
	w.Start()

	require.NoError(t, q.PushRecord(context.Background(), testRecord("ORD_4")))
	assert.Eventually(t, func() bool {
		store.mu.Lock()
		defer store.mu.Unlock()
		return len(store.saved) == 1
	}, 2*time.Second, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	w.Stop(ctx)
}
