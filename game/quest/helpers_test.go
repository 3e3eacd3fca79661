package quest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/kasuganosora/questservice/audit"
	"github.com/kasuganosora/questservice/game/reward"
	"github.com/kasuganosora/questservice/model"
	"github.com/kasuganosora/questservice/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeGranter struct {
	mu     sync.Mutex
	grants []reward.Grant
	err    error
}

func (g *fakeGranter) GrantItems(_ context.Context, _ *gorm.DB, grant reward.Grant) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return g.err
	}
	g.grants = append(g.grants, grant)
	return nil
}

func (g *fakeGranter) calls() []reward.Grant {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]reward.Grant(nil), g.grants...)
}

type fakeAudit struct {
	mu      sync.Mutex
	entries []audit.Entry
}

func (a *fakeAudit) Log(e audit.Entry) {
	a.mu.Lock()
	a.entries = append(a.entries, e)
	a.mu.Unlock()
}

func (a *fakeAudit) logged() []audit.Entry {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]audit.Entry(nil), a.entries...)
}

// fakeClock is a settable time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type fixture struct {
	svc     *Service
	db      *gorm.DB
	granter *fakeGranter
	audit   *fakeAudit
	clock   *fakeClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.SetupTestDB(t)
	c, ps := testutil.SetupTestCache(t)
	f := &fixture{
		db:      db,
		granter: &fakeGranter{},
		audit:   &fakeAudit{},
		clock:   &fakeClock{now: time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)},
	}
	f.svc = NewService(db, Options{
		Granter:  f.granter,
		Cache:    c,
		PubSub:   ps,
		Audit:    f.audit,
		Picker:   NewRandomPicker(42),
		Now:      f.clock.Now,
		LockWait: 2 * time.Second,
	}, zap.NewNop())
	return f
}

func intPtr(v int) *int { return &v }

// seedCatalog installs a daily category "daily" with definitions d1, d2 and
// a weekly category "weekly" with w1.
func (f *fixture) seedCatalog(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.svc.PutQuestCategories(ctx, []CategoryInput{
		{ID: "daily", GenerationHourOfDay: intPtr(4)},
		{ID: "weekly", GenerationHourOfDay: intPtr(4), GenerationDayOfWeek: intPtr(1)},
	}))
	require.NoError(t, f.svc.PutQuestDefinitions(ctx, []DefinitionInput{
		{ID: "d1", Category: "daily", RequiredProgress: 6, RewardItemDefinitionID: "gold", RewardItemCount: 2},
		{ID: "d2", Category: "daily", RequiredProgress: 6, RewardItemDefinitionID: "gold", RewardItemCount: 2},
		{ID: "w1", Category: "weekly", RequiredProgress: 20, RewardItemDefinitionID: "gem", RewardItemCount: 1},
	}))
}

// insertQuest stores an instance directly, bypassing generation.
func (f *fixture) insertQuest(t *testing.T, playerID, defID string, progress int, at time.Time) *model.PlayerQuest {
	t.Helper()
	q := &model.PlayerQuest{PlayerID: playerID, DefinitionID: defID, CurrentProgress: progress, GeneratedAt: at}
	require.NoError(t, f.db.Create(q).Error)
	return q
}

func (f *fixture) reload(t *testing.T, id int64) model.PlayerQuest {
	t.Helper()
	var q model.PlayerQuest
	require.NoError(t, f.db.First(&q, id).Error)
	return q
}

func requireCode(t *testing.T, err error, kind *Error) {
	t.Helper()
	require.Error(t, err)
	require.True(t, errors.Is(err, kind), "want code %d, got %v", kind.Code, err)
}
