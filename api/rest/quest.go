package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/questservice/game/quest"
	mw "github.com/kasuganosora/questservice/middleware"
	"go.uber.org/zap"
)

// QuestHandler serves the player and game-server quest endpoints.
type QuestHandler struct {
	svc    *quest.Service
	logger *zap.Logger
}

// NewQuestHandler creates a new QuestHandler.
func NewQuestHandler(svc *quest.Service, logger *zap.Logger) *QuestHandler {
	return &QuestHandler{svc: svc, logger: logger}
}

// CreateQuests handles POST /client/createquests.
func (h *QuestHandler) CreateQuests(c *gin.Context) {
	views, err := h.svc.CreateQuests(c.Request.Context(), mw.GetPlayerID(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"quests": views})
}

// FinishQuest handles POST /client/finishquest/:questDefinitionId.
func (h *QuestHandler) FinishQuest(c *gin.Context) {
	rw, err := h.svc.FinishQuest(c.Request.Context(), mw.GetPlayerID(c), c.Param("questDefinitionId"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, rw)
}

type increaseProgressRequest struct {
	ProgressMade *int `json:"progressMade"`
}

// IncreaseProgress handles
// POST /server/increasequestprogress/:playerId/:questDefinitionId.
func (h *QuestHandler) IncreaseProgress(c *gin.Context) {
	var req increaseProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if req.ProgressMade == nil {
		badRequest(c, "progressMade is required")
		return
	}
	err := h.svc.IncreaseProgress(c.Request.Context(), c.Param("playerId"), c.Param("questDefinitionId"), *req.ProgressMade)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
