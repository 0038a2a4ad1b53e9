package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/aroundegypt/internal/entities"
)

type RefreshStatusResponse struct {
	LastAt     string `json:"last_at,omitempty"`
	LastStatus string `json:"last_status,omitempty"`
}

type RefreshController struct {
	trigger  RefreshTrigger
	settings SettingsReader
	logger   *zap.Logger
}

func NewRefreshController(trigger RefreshTrigger, settings SettingsReader, logger *zap.Logger) *RefreshController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RefreshController{trigger: trigger, settings: settings, logger: logger}
}

// Run handles POST /api/refresh
func (rc *RefreshController) Run(c *gin.Context) {
	id, err := rc.trigger.EnqueueRefresh("manual")
	if err != nil {
		respondInternalError(c, rc.logger, err, "enqueue refresh")
		return
	}
	if id == "" {
		respondSuccess(c, "refresh already running")
		return
	}
	respondAccepted(c, "refresh enqueued", gin.H{"task_id": id})
}

// Status handles GET /api/refresh
func (rc *RefreshController) Status(c *gin.Context) {
	ctx := c.Request.Context()
	lastAt, err := rc.settings.GetValue(ctx, entities.SettingKeyRefreshLastAt)
	if err != nil {
		respondInternalError(c, rc.logger, err, "read refresh time")
		return
	}
	lastStatus, err := rc.settings.GetValue(ctx, entities.SettingKeyRefreshLastStatus)
	if err != nil {
		respondInternalError(c, rc.logger, err, "read refresh status")
		return
	}
	c.JSON(http.StatusOK, RefreshStatusResponse{LastAt: lastAt, LastStatus: lastStatus})
}
