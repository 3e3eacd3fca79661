package quest

import (
	"context"
	"time"

	"github.com/kasuganosora/questservice/audit"
	"github.com/kasuganosora/questservice/cache"
	"github.com/kasuganosora/questservice/game/reward"
	"github.com/kasuganosora/questservice/pkg/ctxutil"
	"github.com/kasuganosora/questservice/repo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultLockTTL  = 10 * time.Second
	defaultLockWait = 3 * time.Second
)

// Auditor records completed or failed reward hand-outs.
type Auditor interface {
	Log(entry audit.Entry)
}

// Options carries the collaborators of a Service. Granter is required;
// a nil Cache disables the generation lock, a nil PubSub disables events
// and a nil Audit disables the audit trail.
type Options struct {
	Granter  reward.Granter
	Cache    cache.Cache
	PubSub   cache.PubSub
	Audit    Auditor
	Picker   Picker
	Now      func() time.Time
	LockTTL  time.Duration
	LockWait time.Duration
}

// Service runs the quest lifecycle: generation, progress, completion and
// catalog administration. Each operation runs in one transaction.
type Service struct {
	db          *gorm.DB
	categories  repo.CategoryRepo
	definitions repo.DefinitionRepo
	quests      repo.PlayerQuestRepo

	granter  reward.Granter
	cache    cache.Cache
	pubsub   cache.PubSub
	audit    Auditor
	picker   Picker
	now      func() time.Time
	lockTTL  time.Duration
	lockWait time.Duration

	tracer trace.Tracer
	logger *zap.Logger
}

// NewService creates a quest Service backed by db.
func NewService(db *gorm.DB, opts Options, logger *zap.Logger) *Service {
	if opts.Picker == nil {
		opts.Picker = NewRandomPicker(0)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.LockTTL <= 0 {
		opts.LockTTL = defaultLockTTL
	}
	if opts.LockWait <= 0 {
		opts.LockWait = defaultLockWait
	}
	return &Service{
		db:          db,
		categories:  repo.NewCategoryRepo(db, logger),
		definitions: repo.NewDefinitionRepo(db, logger),
		quests:      repo.NewPlayerQuestRepo(db, logger),
		granter:     opts.Granter,
		cache:       opts.Cache,
		pubsub:      opts.PubSub,
		audit:       opts.Audit,
		picker:      opts.Picker,
		now:         opts.Now,
		lockTTL:     opts.LockTTL,
		lockWait:    opts.LockWait,
		tracer:      otel.Tracer("github.com/kasuganosora/questservice/game/quest"),
		logger:      logger,
	}
}

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "quest."+name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (s *Service) log(ctx context.Context) *zap.Logger {
	if id := ctxutil.TraceID(ctx); id != "" {
		return s.logger.With(zap.String("trace_id", id))
	}
	return s.logger
}
