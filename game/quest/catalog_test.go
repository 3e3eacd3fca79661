package quest

import (
	"context"
	"testing"
	"time"

	"github.com/kasuganosora/questservice/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutQuestCategories_ReplaceSet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.PutQuestCategories(ctx, []CategoryInput{
		{ID: "a"}, {ID: "b", GenerationDayOfWeek: intPtr(3)},
	}))
	require.NoError(t, f.svc.PutQuestCategories(ctx, []CategoryInput{
		{ID: "b", GenerationHourOfDay: intPtr(6)}, {ID: "c"},
	}))

	cats, err := f.svc.GetQuestCategories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, "b", cats[0].ID)
	assert.Nil(t, cats[0].GenerationDayOfWeek, "update replaces every field")
	require.NotNil(t, cats[0].GenerationHourOfDay)
	assert.Equal(t, 6, *cats[0].GenerationHourOfDay)
	assert.Equal(t, "c", cats[1].ID)

	// An empty set clears the catalog.
	require.NoError(t, f.svc.PutQuestCategories(ctx, nil))
	cats, err = f.svc.GetQuestCategories(ctx)
	require.NoError(t, err)
	assert.Empty(t, cats)
}

func TestPutQuestCategories_StoresEveryEntry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := []CategoryInput{
		{ID: "weekly", GenerationHourOfDay: intPtr(4), GenerationDayOfWeek: intPtr(1)},
		{ID: "daily", GenerationHourOfDay: intPtr(4)},
		{ID: "event"},
		{ID: "bonus", GenerationHourOfDay: intPtr(12)},
	}
	require.NoError(t, f.svc.PutQuestCategories(ctx, in))

	cats, err := f.svc.GetQuestCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []CategoryView{in[3], in[1], in[2], in[0]}, cats)

	// Dropping two and reviving one in a single call.
	require.NoError(t, f.svc.PutQuestCategories(ctx, []CategoryInput{in[1], in[3]}))
	require.NoError(t, f.svc.PutQuestCategories(ctx, []CategoryInput{in[0], in[1], in[3]}))
	cats, err = f.svc.GetQuestCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []CategoryView{in[3], in[1], in[0]}, cats)
}

func TestPutQuestDefinitions_StoresEveryEntry(t *testing.T) {
	f := newFixture(t)
	f.seedCatalog(t)
	ctx := context.Background()

	defs, err := f.svc.GetQuestDefinitions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []DefinitionView{
		{ID: "d1", Category: "daily", RequiredProgress: 6, RewardItemDefinitionID: "gold", RewardItemCount: 2},
		{ID: "d2", Category: "daily", RequiredProgress: 6, RewardItemDefinitionID: "gold", RewardItemCount: 2},
		{ID: "w1", Category: "weekly", RequiredProgress: 20, RewardItemDefinitionID: "gem", RewardItemCount: 1},
	}, defs)

	in := []DefinitionInput{
		{ID: "d1", Category: "daily", RequiredProgress: 3, RewardItemDefinitionID: "gold", RewardItemCount: 1},
		{ID: "d3", Category: "daily", RequiredProgress: 5},
		{ID: "w1", Category: "weekly", RequiredProgress: 10, RewardItemDefinitionID: "gem", RewardItemCount: 4},
		{ID: "w2", Category: "weekly", RequiredProgress: 15, RewardItemDefinitionID: "gem", RewardItemCount: 2},
	}
	require.NoError(t, f.svc.PutQuestDefinitions(ctx, in))
	defs, err = f.svc.GetQuestDefinitions(ctx)
	require.NoError(t, err)
	assert.Equal(t, in, defs)
}

func TestPutQuestDefinitions_ReviveRoundTrip(t *testing.T) {
	f := newFixture(t)
	f.seedCatalog(t)
	ctx := context.Background()

	all := []DefinitionInput{
		{ID: "d1", Category: "daily", RequiredProgress: 6, RewardItemDefinitionID: "gold", RewardItemCount: 2},
		{ID: "d2", Category: "daily", RequiredProgress: 6, RewardItemDefinitionID: "gold", RewardItemCount: 2},
		{ID: "w1", Category: "weekly", RequiredProgress: 20, RewardItemDefinitionID: "gem", RewardItemCount: 1},
	}
	require.NoError(t, f.svc.PutQuestDefinitions(ctx, all[:1]))
	defs, err := f.svc.GetQuestDefinitions(ctx)
	require.NoError(t, err)
	require.Len(t, defs, 1)

	all[1].RequiredProgress = 8
	require.NoError(t, f.svc.PutQuestDefinitions(ctx, all))
	defs, err = f.svc.GetQuestDefinitions(ctx)
	require.NoError(t, err)
	assert.Equal(t, all, defs)
}

func TestPutQuestCategories_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := map[string][]CategoryInput{
		"empty id":  {{ID: ""}},
		"duplicate": {{ID: "a"}, {ID: "a"}},
		"hour":      {{ID: "a", GenerationHourOfDay: intPtr(24)}},
		"day low":   {{ID: "a", GenerationDayOfWeek: intPtr(0)}},
		"day high":  {{ID: "a", GenerationDayOfWeek: intPtr(8)}},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			requireCode(t, f.svc.PutQuestCategories(ctx, in), ErrInvalidRequest)
		})
	}
}

func TestPutQuestDefinitions_UnknownCategoryWritesNothing(t *testing.T) {
	f := newFixture(t)
	f.seedCatalog(t)
	ctx := context.Background()

	err := f.svc.PutQuestDefinitions(ctx, []DefinitionInput{
		{ID: "d1", Category: "daily", RequiredProgress: 99},
		{ID: "x", Category: "monthly", RequiredProgress: 1},
	})
	requireCode(t, err, ErrUnknownQuestCategory)

	defs, err := f.svc.GetQuestDefinitions(ctx)
	require.NoError(t, err)
	require.Len(t, defs, 3)
	assert.Equal(t, 6, defs[0].RequiredProgress)
}

func TestPutQuestDefinitions_Validation(t *testing.T) {
	f := newFixture(t)
	f.seedCatalog(t)
	ctx := context.Background()

	requireCode(t, f.svc.PutQuestDefinitions(ctx, []DefinitionInput{{ID: "", Category: "daily"}}), ErrInvalidRequest)
	requireCode(t, f.svc.PutQuestDefinitions(ctx, []DefinitionInput{
		{ID: "a", Category: "daily"}, {ID: "a", Category: "daily"},
	}), ErrInvalidRequest)
	requireCode(t, f.svc.PutQuestDefinitions(ctx, []DefinitionInput{{ID: "a", Category: "daily", RequiredProgress: -1}}), ErrInvalidRequest)
	requireCode(t, f.svc.PutQuestDefinitions(ctx, []DefinitionInput{{ID: "a", Category: "daily", RewardItemCount: -1}}), ErrInvalidRequest)
}

func TestPutQuestDefinitions_RemovedDefinitionKeepsHistory(t *testing.T) {
	f := newFixture(t)
	f.seedCatalog(t)
	ctx := context.Background()
	q := f.insertQuest(t, "p1", "d2", 3, f.clock.Now().Add(-time.Hour))

	require.NoError(t, f.svc.PutQuestDefinitions(ctx, []DefinitionInput{
		{ID: "d1", Category: "daily", RequiredProgress: 6, RewardItemDefinitionID: "gold", RewardItemCount: 2},
		{ID: "w1", Category: "weekly", RequiredProgress: 20, RewardItemDefinitionID: "gem", RewardItemCount: 1},
	}))

	defs, err := f.svc.GetQuestDefinitions(ctx)
	require.NoError(t, err)
	assert.Len(t, defs, 2)

	views, err := f.svc.GetPlayerQuests(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, q.ID, views[0].ID)
	assert.Equal(t, "d2", views[0].QuestDefinitionID)
	assert.Equal(t, "daily", views[0].QuestCategoryID)

	// The removed definition no longer accepts progress.
	requireCode(t, f.svc.IncreaseProgress(ctx, "p1", "d2", 1), ErrUnknownQuestDefinition)

	// Re-adding it revives the row.
	require.NoError(t, f.svc.PutQuestDefinitions(ctx, []DefinitionInput{
		{ID: "d2", Category: "daily", RequiredProgress: 4},
	}))
	require.NoError(t, f.svc.IncreaseProgress(ctx, "p1", "d2", 9))
	assert.Equal(t, 4, f.reload(t, q.ID).CurrentProgress)
}

func TestGetPlayerQuests_IncludesCompleted(t *testing.T) {
	f := newFixture(t)
	f.seedCatalog(t)
	ctx := context.Background()
	now := f.clock.Now()

	done := f.insertQuest(t, "p1", "d1", 6, now.Add(-48*time.Hour))
	require.NoError(t, f.db.Model(&model.PlayerQuest{}).Where("id = ?", done.ID).Update("completed_at", now.Add(-47*time.Hour)).Error)
	f.insertQuest(t, "p1", "w1", 5, now)
	f.insertQuest(t, "p2", "w1", 5, now)

	views, err := f.svc.GetPlayerQuests(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.NotNil(t, views[0].CompletedAt)
	assert.Equal(t, 6, views[0].RequiredProgress)
	assert.Nil(t, views[1].CompletedAt)
	assert.Equal(t, 5, views[1].CurrentProgress)
	assert.Equal(t, "weekly", views[1].QuestCategoryID)

	none, err := f.svc.GetPlayerQuests(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestReconcile(t *testing.T) {
	type row struct {
		id  string
		val int
	}
	key := func(r *row) string { return r.id }
	apply := func(dst, src *row) { dst.val = src.val }

	existingB := &row{id: "b", val: 1}
	current := []*row{{id: "a", val: 1}, existingB}
	desired := []*row{{id: "b", val: 2}, {id: "c", val: 3}}

	toSave, toDelete := Reconcile(desired, current, key, apply)
	require.Len(t, toSave, 2)
	assert.Same(t, existingB, toSave[0], "existing entity is merged, not replaced")
	assert.Equal(t, 2, existingB.val)
	assert.Equal(t, "c", toSave[1].id)
	require.Len(t, toDelete, 1)
	assert.Equal(t, "a", toDelete[0].id)

	toSave, toDelete = Reconcile(nil, current, key, apply)
	assert.Empty(t, toSave)
	assert.Len(t, toDelete, 2)
}
