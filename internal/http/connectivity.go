package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type ConnectivityResponse struct {
	Connected  bool `json:"connected"`
	Overridden bool `json:"overridden"`
}

type SetConnectivityRequest struct {
	Connected *bool `json:"connected" binding:"required"`
}

// ConnectivityController lets a tester force the app online or offline.
type ConnectivityController struct {
	oracle ConnectivityOverrider
}

func NewConnectivityController(oracle ConnectivityOverrider) *ConnectivityController {
	return &ConnectivityController{oracle: oracle}
}

// Get handles GET /api/connectivity
func (cc *ConnectivityController) Get(c *gin.Context) {
	c.JSON(http.StatusOK, cc.status())
}

// Set handles PUT /api/connectivity
func (cc *ConnectivityController) Set(c *gin.Context) {
	var req SetConnectivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "connected is required")
		return
	}
	cc.oracle.SetOverride(*req.Connected)
	c.JSON(http.StatusOK, cc.status())
}

// Clear handles DELETE /api/connectivity
func (cc *ConnectivityController) Clear(c *gin.Context) {
	cc.oracle.ClearOverride()
	c.JSON(http.StatusOK, cc.status())
}

func (cc *ConnectivityController) status() ConnectivityResponse {
	return ConnectivityResponse{
		Connected:  cc.oracle.IsConnected(),
		Overridden: cc.oracle.Overridden(),
	}
}
