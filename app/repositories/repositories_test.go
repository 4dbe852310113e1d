package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"paydash/app/models/payment"
	"paydash/app/models/terminal"
	"paydash/pkg/database"
	"paydash/pkg/database/migrations"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(
		sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"),
		gormlogger.Discard,
		database.PoolConfig{MaxOpenConns: 1},
	)
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db, migrations.RegisterTables()))
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func TestPaymentUpsertLastWriteWins(t *testing.T) {
	ctx := context.Background()
	repo := NewPaymentRepository(newTestDB(t))

	first := payment.Compose(payment.Record{
		Gateway: "pay10", Status: "failure", OrderID: "ORD_1", ReceivedAt: time.Now(),
		Fields: map[string]interface{}{"RESPONSE_CODE": "001"},
	})
	require.NoError(t, repo.Upsert(ctx, first))

	second := payment.Compose(payment.Record{
		Gateway: "pay10", Status: "success", OrderID: "ORD_1", ReceivedAt: time.Now(),
		Fields: map[string]interface{}{"RESPONSE_CODE": "000"},
	})
	require.NoError(t, repo.Upsert(ctx, second))

	total, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	got, err := repo.GetByOrderID(ctx, "ORD_1")
	require.NoError(t, err)
	assert.Equal(t, "success", got.Status)
	assert.Equal(t, "000", got.Document["RESPONSE_CODE"])
}

func TestPaymentUpsertIgnoresOlderRecord(t *testing.T) {
	ctx := context.Background()
	repo := NewPaymentRepository(newTestDB(t))
	now := time.Now()

	newer := payment.Compose(payment.Record{
		Gateway: "pay10", Status: "success", OrderID: "ORD_2", ReceivedAt: now,
		Fields: map[string]interface{}{"RESPONSE_CODE": "000"},
	})
	require.NoError(t, repo.Upsert(ctx, newer))

	// 延迟到达的旧回调
	older := payment.Compose(payment.Record{
		Gateway: "pay10", Status: "failure", OrderID: "ORD_2", ReceivedAt: now.Add(-time.Minute),
		Fields: map[string]interface{}{"RESPONSE_CODE": "001"},
	})
	require.NoError(t, repo.Upsert(ctx, older))

	got, err := repo.GetByOrderID(ctx, "ORD_2")
	require.NoError(t, err)
	assert.Equal(t, "success", got.Status)
	assert.Equal(t, "000", got.Document["RESPONSE_CODE"])

	total, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestPaymentUpsertRejectsInvalidStatus(t *testing.T) {
	repo := NewPaymentRepository(newTestDB(t))
	err := repo.Upsert(context.Background(), &payment.Payment{OrderID: "X", Gateway: "pay10", Status: "pending"})
	assert.Error(t, err)
}

func TestPaymentGetMissing(t *testing.T) {
	repo := NewPaymentRepository(newTestDB(t))
	_, err := repo.GetByOrderID(context.Background(), "nope")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestTerminalRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewTerminalRepository(newTestDB(t))

	require.NoError(t, repo.Save(ctx, &terminal.Terminal{
		Gateway: "pay10", Name: "main", UtilityID: "electricity",
		PayloadID: "P1", SecretKey: "s1", EncryptionKey: "k1",
	}))
	require.NoError(t, repo.Save(ctx, &terminal.Terminal{
		Gateway: "zwitch", Name: "z", UtilityID: "fastag",
		Extra: datatypes.JSONMap{"api_key": "abc"},
	}))

	// 同名更新
	require.NoError(t, repo.Save(ctx, &terminal.Terminal{
		Gateway: "pay10", Name: "main", UtilityID: "education",
		PayloadID: "P1", SecretKey: "s2", EncryptionKey: "k2",
	}))

	list, err := repo.List(ctx, "pay10")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "k2", list[0].EncryptionKey)
	assert.Equal(t, "education", list[0].UtilityID)

	found, err := repo.FirstByPayloadID(ctx, "P1")
	require.NoError(t, err)
	assert.Equal(t, "main", found.Name)

	_, err = repo.FirstByPayloadID(ctx, "P404")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	byUtility, err := repo.FirstByUtility(ctx, "zwitch", "fastag")
	require.NoError(t, err)
	assert.Equal(t, "abc", byUtility.Extra["api_key"])

	utilities, err := repo.UtilitiesWithTerminals(ctx, "pay10")
	require.NoError(t, err)
	assert.Equal(t, []string{"education"}, utilities)

	require.NoError(t, repo.Delete(ctx, "pay10", "main"))
	assert.ErrorIs(t, repo.Delete(ctx, "pay10", "main"), gorm.ErrRecordNotFound)

	_, err = repo.Get(ctx, "pay10", "main")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
