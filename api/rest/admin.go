package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/questservice/game/quest"
	"github.com/kasuganosora/questservice/game/reward"
	"go.uber.org/zap"
)

// AdminHandler serves catalog administration and player inspection.
// Routes should be protected by middleware.AdminAuth.
type AdminHandler struct {
	svc    *quest.Service
	ledger *reward.Ledger // nil unless rewards are kept locally
	logger *zap.Logger
}

// NewAdminHandler creates an AdminHandler. ledger may be nil.
func NewAdminHandler(svc *quest.Service, ledger *reward.Ledger, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{svc: svc, ledger: ledger, logger: logger}
}

// PlayerQuests handles GET /admin/playerquests/:playerId.
func (h *AdminHandler) PlayerQuests(c *gin.Context) {
	views, err := h.svc.GetPlayerQuests(c.Request.Context(), c.Param("playerId"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"quests": views})
}

// GetCategories handles GET /admin/questcategories.
func (h *AdminHandler) GetCategories(c *gin.Context) {
	cats, err := h.svc.GetQuestCategories(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": cats})
}

type putCategoriesRequest struct {
	Categories []quest.CategoryInput `json:"categories"`
}

// PutCategories handles PUT /admin/questcategories.
func (h *AdminHandler) PutCategories(c *gin.Context) {
	var req putCategoriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if err := h.svc.PutQuestCategories(c.Request.Context(), req.Categories); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetDefinitions handles GET /admin/questdefinitions.
func (h *AdminHandler) GetDefinitions(c *gin.Context) {
	defs, err := h.svc.GetQuestDefinitions(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"questDefinitions": defs})
}

type putDefinitionsRequest struct {
	QuestDefinitions []quest.DefinitionInput `json:"questDefinitions"`
}

// PutDefinitions handles PUT /admin/questdefinitions.
func (h *AdminHandler) PutDefinitions(c *gin.Context) {
	var req putDefinitionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if err := h.svc.PutQuestDefinitions(c.Request.Context(), req.QuestDefinitions); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// PlayerItems handles GET /admin/playeritems/:playerId. It is only
// available when rewards go to the local ledger.
func (h *AdminHandler) PlayerItems(c *gin.Context) {
	if h.ledger == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "local inventory ledger disabled"})
		return
	}
	items, err := h.ledger.List(c.Request.Context(), c.Param("playerId"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}
