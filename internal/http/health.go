package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/aroundegypt/internal/connectivity"
	"github.com/mrlokans/aroundegypt/internal/database/experiences"
)

type HealthResponse struct {
	Status    string            `json:"status"`
	Time      string            `json:"time"`
	Version   string            `json:"version,omitempty"`
	Checks    map[string]string `json:"checks"`
	Cached    map[string]int64  `json:"cached,omitempty"`
	Connected bool              `json:"connected"`
}

type HealthController struct {
	db      Pinger
	cache   CacheCounter
	oracle  connectivity.Oracle
	version string
}

func NewHealthController(db Pinger, cache CacheCounter, oracle connectivity.Oracle, version string) *HealthController {
	return &HealthController{
		db:      db,
		cache:   cache,
		oracle:  oracle,
		version: version,
	}
}

func (h *HealthController) Status(c *gin.Context) {
	ctx := c.Request.Context()
	checks := make(map[string]string)
	status := "healthy"

	// Check database connectivity
	if h.db != nil {
		if err := h.db.Ping(ctx); err != nil {
			checks["database"] = "error: " + err.Error()
			status = "unhealthy"
		} else {
			checks["database"] = "ok"
		}
	} else {
		checks["database"] = "not configured"
	}

	var cached map[string]int64
	if h.cache != nil && status == "healthy" {
		cached = make(map[string]int64)
		for _, p := range []experiences.Partition{experiences.PartitionRecent, experiences.PartitionRecommended} {
			n, err := h.cache.Count(ctx, p)
			if err != nil {
				checks["cache"] = "error: " + err.Error()
				continue
			}
			cached[p.String()] = n
		}
	}

	connected := h.oracle != nil && h.oracle.IsConnected()
	if connected {
		checks["connectivity"] = "online"
	} else {
		checks["connectivity"] = "offline"
	}

	health := HealthResponse{
		Status:    status,
		Time:      time.Now().Format(time.RFC3339),
		Version:   h.version,
		Checks:    checks,
		Cached:    cached,
		Connected: connected,
	}

	statusCode := http.StatusOK
	if status != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.IndentedJSON(statusCode, health)
}
