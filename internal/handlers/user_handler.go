package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"dtm-test-service/internal/service"

	"github.com/gin-gonic/gin"
)

// userID reads the X-User-ID header set by the front end for every
// action. Responds 401 and returns false when missing or malformed.
func userID(c *gin.Context) (int64, bool) {
	raw := c.GetHeader("X-User-ID")
	if raw == "" {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Authentication required",
			"code":  "MISSING_USER_ID",
		})
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid user id",
			"code":  "BAD_USER_ID",
		})
		return 0, false
	}
	return id, true
}

type UserHandler struct {
	Service *service.UserService
}

func NewUserHandler(s *service.UserService) *UserHandler {
	return &UserHandler{Service: s}
}

// Start registers the user if needed and returns their profile, so the
// client knows whether to prompt for a language.
func (h *UserHandler) Start(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}
	var req struct {
		Username  string `json:"username"`
		FirstName string `json:"first_name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.Service.Register(context.Background(), id, req.Username, req.FirstName)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, user)
}

// SelectLanguage stores the user's interface language.
func (h *UserHandler) SelectLanguage(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}
	var req struct {
		Language string `json:"language" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.Service.SetLanguage(context.Background(), id, req.Language); err != nil {
		if errors.Is(err, service.ErrUnsupportedLanguage) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"language": req.Language})
}
