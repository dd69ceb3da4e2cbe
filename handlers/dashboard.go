package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/mmdatafocus/vouchers_backend/config"
	"github.com/mmdatafocus/vouchers_backend/models"
)

type DashboardHandler struct {
	Store  *models.Store
	Logger *logrus.Logger
}

func (h *DashboardHandler) Dashboard(c *gin.Context) {
	data, err := h.Store.Dashboard(c.Request.Context())
	if err != nil {
		config.LogError(h.Logger, "handlers", "Dashboard", "build dashboard", nil, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, data)
}
