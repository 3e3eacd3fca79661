package quest

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/kasuganosora/questservice/game/reward"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFinishQuest_ProgressThenFinishGrantsReward(t *testing.T) {
	f := newFixture(t)
	f.seedCatalog(t)
	ctx := context.Background()
	q := f.insertQuest(t, "p1", "d1", 0, f.clock.Now())

	require.NoError(t, f.svc.IncreaseProgress(ctx, "p1", "d1", 2))
	require.NoError(t, f.svc.IncreaseProgress(ctx, "p1", "d1", 3))
	assert.Equal(t, 5, f.reload(t, q.ID).CurrentProgress)

	_, err := f.svc.FinishQuest(ctx, "p1", "d1")
	requireCode(t, err, ErrInsufficientProgress)
	assert.Empty(t, f.granter.calls())

	require.NoError(t, f.svc.IncreaseProgress(ctx, "p1", "d1", 5))
	assert.Equal(t, 6, f.reload(t, q.ID).CurrentProgress)

	rw, err := f.svc.FinishQuest(ctx, "p1", "d1")
	require.NoError(t, err)
	assert.Equal(t, Reward{RewardItemDefinitionID: "gold", RewardItemCount: 2}, rw)
	assert.Equal(t, []reward.Grant{{PlayerID: "p1", ItemDefinitionID: "gold", Count: 2}}, f.granter.calls())

	done := f.reload(t, q.ID)
	require.NotNil(t, done.CompletedAt)
	assert.True(t, done.CompletedAt.Equal(f.clock.Now()))

	// Finishing again finds no active instance.
	_, err = f.svc.FinishQuest(ctx, "p1", "d1")
	requireCode(t, err, ErrQuestNotFound)
	assert.Len(t, f.granter.calls(), 1)

	entries := f.audit.logged()
	require.Len(t, entries, 1)
	assert.Equal(t, "p1", entries[0].PlayerID)
	assert.Equal(t, actionFinishQuest, entries[0].Action)
	assert.Empty(t, entries[0].Error)
}

func TestFinishQuest_CheckOrder(t *testing.T) {
	f := newFixture(t)
	f.seedCatalog(t)
	ctx := context.Background()

	_, err := f.svc.FinishQuest(ctx, "", "nope")
	requireCode(t, err, ErrInvalidRequest)

	_, err = f.svc.FinishQuest(ctx, "p1", "nope")
	requireCode(t, err, ErrUnknownQuestDefinition)

	_, err = f.svc.FinishQuest(ctx, "p1", "d1")
	requireCode(t, err, ErrQuestNotFound)

	f.insertQuest(t, "p1", "d1", 1, f.clock.Now())
	_, err = f.svc.FinishQuest(ctx, "p1", "d1")
	requireCode(t, err, ErrInsufficientProgress)
}

func TestFinishQuest_RewardFailureKeepsQuestActive(t *testing.T) {
	f := newFixture(t)
	f.seedCatalog(t)
	ctx := context.Background()
	q := f.insertQuest(t, "p1", "d1", 6, f.clock.Now())

	f.granter.err = errors.New("collection service returned 503")
	_, err := f.svc.FinishQuest(ctx, "p1", "d1")
	requireCode(t, err, ErrRewardGrantFailed)
	assert.Nil(t, f.reload(t, q.ID).CompletedAt)

	entries := f.audit.logged()
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Error, "503")

	// A retry after the collaborator recovers succeeds.
	f.granter.err = nil
	_, err = f.svc.FinishQuest(ctx, "p1", "d1")
	require.NoError(t, err)
	assert.NotNil(t, f.reload(t, q.ID).CompletedAt)
}

func TestFinishQuest_WithoutGranterFails(t *testing.T) {
	f := newFixture(t)
	f.seedCatalog(t)
	f.svc.granter = nil
	q := f.insertQuest(t, "p1", "d1", 6, f.clock.Now())

	_, err := f.svc.FinishQuest(context.Background(), "p1", "d1")
	requireCode(t, err, ErrRewardGrantFailed)
	assert.ErrorIs(t, err, reward.ErrUnavailable)
	assert.Nil(t, f.reload(t, q.ID).CompletedAt)
}

func TestFinishQuest_ZeroRequirementFinishesImmediately(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.svc.PutQuestCategories(ctx, []CategoryInput{{ID: "daily"}}))
	require.NoError(t, f.svc.PutQuestDefinitions(ctx, []DefinitionInput{
		{ID: "login", Category: "daily", RewardItemDefinitionID: "coin", RewardItemCount: 0},
	}))
	_, err := f.svc.CreateQuests(ctx, "p1")
	require.NoError(t, err)

	rw, err := f.svc.FinishQuest(ctx, "p1", "login")
	require.NoError(t, err)
	assert.Equal(t, "coin", rw.RewardItemDefinitionID)
	assert.Equal(t, 0, rw.RewardItemCount)
}

func TestFinishQuest_PublishesCompletedEvent(t *testing.T) {
	f := newFixture(t)
	f.seedCatalog(t)
	ctx := context.Background()
	f.insertQuest(t, "p1", "w1", 20, f.clock.Now())

	ch, cancel, err := f.svc.pubsub.Subscribe(ctx, Channel("p1"))
	require.NoError(t, err)
	defer cancel()

	_, err = f.svc.FinishQuest(ctx, "p1", "w1")
	require.NoError(t, err)

	select {
	case msg := <-ch:
		var ev Event
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &ev))
		assert.Equal(t, EventCompleted, ev.Type)
		require.NotNil(t, ev.Reward)
		assert.Equal(t, "gem", ev.Reward.RewardItemDefinitionID)
		require.NotNil(t, ev.Quest)
		assert.NotNil(t, ev.Quest.CompletedAt)
	case <-time.After(time.Second):
		t.Fatal("missing quest_completed event")
	}
}
