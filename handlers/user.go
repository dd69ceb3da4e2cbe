package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/mmdatafocus/vouchers_backend/config"
	"github.com/mmdatafocus/vouchers_backend/middlewares"
	"github.com/mmdatafocus/vouchers_backend/models"
	"github.com/mmdatafocus/vouchers_backend/utils"
)

type UserHandler struct {
	Store  *models.Store
	Logger *logrus.Logger
}

type createUserInput struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"omitempty,email"`
	Phone    string `json:"phone"`
	Password string `json:"password" binding:"required,min=6"`
}

// Create registers a staff account. The login code is generated, not
// chosen by the client, so it stays short enough to type at the counter.
func (h *UserHandler) Create(c *gin.Context) {
	var input createUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	creatorID, ok := middlewares.AuthUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	ctx := c.Request.Context()

	loginCode, err := utils.GenerateLoginCode(ctx, h.Store.LoginCodeExists)
	if err != nil {
		config.LogError(h.Logger, "handlers", "Create", "generate login code", input.Name, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not allocate a login code"})
		return
	}
	hashed, err := utils.HashPassword(input.Password)
	if err != nil {
		config.LogError(h.Logger, "handlers", "Create", "hash password", nil, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	user := &models.User{
		Name:        input.Name,
		Email:       input.Email,
		Phone:       input.Phone,
		Password:    string(hashed),
		LoginCode:   loginCode,
		CreatedByID: &creatorID,
	}
	if err := h.Store.CreateUser(ctx, user); err != nil {
		config.LogError(h.Logger, "handlers", "Create", "insert user", input.Name, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusCreated, user)
}
