package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mmdatafocus/vouchers_backend/config"
	"github.com/mmdatafocus/vouchers_backend/middlewares"
	"github.com/mmdatafocus/vouchers_backend/migration"
)

// Migrator is the slice of the migration service the handler needs.
type Migrator interface {
	MigrateUsers(ctx context.Context, invokedBy primitive.ObjectID) (*migration.UserMigrationResult, error)
	MigrateDocuments(ctx context.Context, page, rowPerPage int) (*migration.DocumentMigrationResult, error)
}

type MigrationHandler struct {
	Logger *logrus.Logger

	// NewMigrator builds a fresh service per request so every invocation
	// opens and closes its own source connection.
	NewMigrator func() Migrator
}

func (h *MigrationHandler) MigrateUserData(c *gin.Context) {
	userID, ok := middlewares.AuthUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	result, err := h.NewMigrator().MigrateUsers(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, migration.ErrDuplicateMigration) {
			c.JSON(http.StatusConflict, gin.H{"error": "users already migrated"})
			return
		}
		if errors.Is(err, migration.ErrSourceUnavailable) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "legacy database unavailable"})
			return
		}
		config.LogError(h.Logger, "handlers", "MigrateUserData", "migrate users", nil, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "migration failed"})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *MigrationHandler) MigrateDocData(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("pageIndex", "1"))
	if err != nil || page < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "pageIndex must be a positive integer"})
		return
	}
	rowPerPage, err := strconv.Atoi(c.DefaultQuery("rowPerPage", "10"))
	if err != nil || rowPerPage < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "rowPerPage must be a positive integer"})
		return
	}

	result, err := h.NewMigrator().MigrateDocuments(c.Request.Context(), page, rowPerPage)
	if err != nil {
		if errors.Is(err, migration.ErrSourceUnavailable) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "legacy database unavailable"})
			return
		}
		config.LogError(h.Logger, "handlers", "MigrateDocData", "migrate documents", page, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "migration failed"})
		return
	}
	c.JSON(http.StatusOK, result)
}
