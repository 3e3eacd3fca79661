package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/questservice/game/quest"
	mw "github.com/kasuganosora/questservice/middleware"
	"go.uber.org/zap"
)

// statusFor maps a quest error code to its HTTP status.
func statusFor(code quest.Code) int {
	switch code {
	case quest.CodeBusy:
		return http.StatusConflict
	case quest.CodeRewardGrantFailed:
		return http.StatusBadGateway
	default:
		return http.StatusBadRequest
	}
}

// writeError renders err. Domain errors carry their code and message;
// anything else is logged and hidden behind a 500.
func writeError(c *gin.Context, logger *zap.Logger, err error) {
	_ = c.Error(err)
	if qe, ok := quest.AsError(err); ok {
		c.AbortWithStatusJSON(statusFor(qe.Code), gin.H{
			"errorCode":    int(qe.Code),
			"errorMessage": qe.Error(),
		})
		return
	}
	if ctxErr := c.Request.Context().Err(); ctxErr != nil && errors.Is(err, ctxErr) {
		// client disconnected
		c.Abort()
		return
	}
	logger.Error("request failed",
		zap.String("trace_id", mw.GetTraceID(c)),
		zap.String("path", c.FullPath()),
		zap.Error(err))
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"errorCode":    int(quest.CodeInvalidRequest),
		"errorMessage": msg,
	})
}
