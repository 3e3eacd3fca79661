package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/questservice/api/rest"
	"github.com/kasuganosora/questservice/api/sse"
	"github.com/kasuganosora/questservice/config"
	mw "github.com/kasuganosora/questservice/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RouterConfig holds everything NewRouter wires together.
type RouterConfig struct {
	Config *config.Config
	Quests *rest.QuestHandler
	Admin  *rest.AdminHandler
	Events *sse.Handler
	Logger *zap.Logger
}

// NewRouter builds the HTTP surface. ctx bounds background work started by
// middleware.
func NewRouter(ctx context.Context, rc RouterConfig) *gin.Engine {
	cfg := rc.Config
	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(otelgin.Middleware(cfg.Telemetry.ServiceName))
	r.Use(mw.TraceID(), mw.Logger(rc.Logger), mw.Recovery(rc.Logger))
	// Preflight requests match no route, so CORS sits on the engine.
	r.Use(mw.CORS(cfg.Security.AllowedOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	client := r.Group("/client")
	client.Use(mw.PlayerAuth(cfg.Security))
	if cfg.Security.RateLimitRPS > 0 {
		client.Use(mw.RateLimit(ctx, rate.Limit(cfg.Security.RateLimitRPS), cfg.Security.RateLimitBurst))
	}
	{
		client.POST("/createquests", rc.Quests.CreateQuests)
		client.POST("/finishquest/:questDefinitionId", rc.Quests.FinishQuest)
		client.GET("/events", rc.Events.ServeEvents)
	}

	trusted := []gin.HandlerFunc{
		mw.IPWhitelist(cfg.Security.ServerAllowedIPs),
		mw.AdminAuth(cfg.Server.AdminKey),
	}

	server := r.Group("/server", trusted...)
	server.POST("/increasequestprogress/:playerId/:questDefinitionId", rc.Quests.IncreaseProgress)

	admin := r.Group("/admin", trusted...)
	{
		admin.GET("/playerquests/:playerId", rc.Admin.PlayerQuests)
		admin.GET("/questcategories", rc.Admin.GetCategories)
		admin.PUT("/questcategories", rc.Admin.PutCategories)
		admin.GET("/questdefinitions", rc.Admin.GetDefinitions)
		admin.PUT("/questdefinitions", rc.Admin.PutDefinitions)
		admin.GET("/playeritems/:playerId", rc.Admin.PlayerItems)
	}
	return r
}
