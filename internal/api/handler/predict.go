package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kickon/kickon/internal/api/middleware"
	"github.com/kickon/kickon/internal/service"
)

// Scorer produces a fused transfer probability for a player.
type Scorer interface {
	Score(ctx context.Context, playerName string) (*service.Prediction, error)
}

// PredictHandler handles prediction endpoints.
type PredictHandler struct {
	scorer Scorer
}

// NewPredictHandler creates a new predict handler.
func NewPredictHandler(scorer Scorer) *PredictHandler {
	return &PredictHandler{scorer: scorer}
}

// predictResponse is the wire shape of a scored prediction.
type predictResponse struct {
	PlayerName     string  `json:"player_name"`
	TransferChance float64 `json:"transfer_chance"`
}

// Predict handles GET /predict?player_name=...
func (h *PredictHandler) Predict(c *gin.Context) {
	playerName := c.Query("player_name")
	if playerName == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Query parameter 'player_name' is required",
		})
		return
	}

	pred, err := h.scorer.Score(c.Request.Context(), playerName)
	if err != nil {
		middleware.GetLogger(c).WithError(err).Error("Prediction failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Prediction failed",
		})
		return
	}

	c.JSON(http.StatusOK, predictResponse{
		PlayerName:     pred.PlayerName,
		TransferChance: pred.Chance,
	})
}
