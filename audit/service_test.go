package audit

import (
	"context"
	"testing"
	"time"

	"github.com/kasuganosora/questservice/model"
	"github.com/kasuganosora/questservice/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func nop() *zap.Logger { return zap.NewNop() }

func TestNew_StartsWorker(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db, nop())
	require.NotNil(t, svc)
	svc.Stop(context.Background())
}

func TestLog_EnqueuedAndFlushed(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db, nop())

	svc.Log(Entry{
		TraceID:    "trace-123",
		PlayerID:   "p1",
		Action:     "finish_quest",
		Request:    map[string]string{"definition_id": "kill-slimes"},
		Response:   map[string]int{"reward_item_count": 2},
		DurationMs: 42,
	})

	// Stop flushes remaining entries
	svc.Stop(context.Background())

	var logs []model.AuditLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, "trace-123", logs[0].TraceID)
	assert.Equal(t, "p1", logs[0].PlayerID)
	assert.Equal(t, "finish_quest", logs[0].Action)
	assert.JSONEq(t, `{"definition_id":"kill-slimes"}`, string(logs[0].Request))
	assert.Equal(t, 42, logs[0].DurationMs)
}

func TestLog_BatchFlush(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db, nop())

	for i := 0; i < batchSize+5; i++ {
		svc.Log(Entry{Action: "batch"})
	}
	svc.Stop(context.Background())

	var count int64
	db.Model(&model.AuditLog{}).Count(&count)
	assert.Equal(t, int64(batchSize+5), count)
}

func TestLog_ErrorAndNilPayload(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db, nop())

	svc.Log(Entry{Action: "grant_items", PlayerID: "p2", Error: "collection service unavailable"})
	svc.Stop(context.Background())

	var logs []model.AuditLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, "collection service unavailable", logs[0].Error)
	assert.Empty(t, logs[0].Request)
}

func TestStop_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db, nop())
	svc.Stop(context.Background())
	assert.NotPanics(t, func() { svc.Stop(context.Background()) })
}

func TestLog_DropsWhenFull(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db, nop())

	for i := 0; i < queueSize+10; i++ {
		svc.Log(Entry{Action: "flood"})
	}
	svc.Stop(context.Background())
}

func TestPrune_RemovesOldRows(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db, nop())
	defer svc.Stop(context.Background())

	now := time.Now()
	require.NoError(t, db.Create(&model.AuditLog{Action: "old", CreatedAt: now.Add(-48 * time.Hour)}).Error)
	require.NoError(t, db.Create(&model.AuditLog{Action: "new", CreatedAt: now}).Error)

	n, err := svc.Prune(context.Background(), now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	var logs []model.AuditLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, "new", logs[0].Action)
}

func TestPruneTask(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db, nop())
	defer svc.Stop(context.Background())

	require.NoError(t, db.Create(&model.AuditLog{Action: "old", CreatedAt: time.Now().Add(-10 * 24 * time.Hour)}).Error)
	svc.PruneTask(7 * 24 * time.Hour)(context.Background())

	var count int64
	require.NoError(t, db.Model(&model.AuditLog{}).Count(&count).Error)
	assert.Zero(t, count)
}
