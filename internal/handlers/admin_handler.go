package handlers

import (
	"context"
	"net/http"

	"dtm-test-service/internal/service"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	Service *service.AdminService
}

func NewAdminHandler(s *service.AdminService) *AdminHandler {
	return &AdminHandler{Service: s}
}

// RequireAdmin guards the admin group: the configured super admin or a
// stored admin passes, everyone else gets 403.
func (h *AdminHandler) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := userID(c)
		if !ok {
			c.Abort()
			return
		}
		if !h.Service.IsAdmin(context.Background(), id) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin rights required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// Statistics serves the aggregate dashboard numbers.
func (h *AdminHandler) Statistics(c *gin.Context) {
	stats, err := h.Service.Statistics(context.Background())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// QuestionStats serves question-bank counts per subject and language.
func (h *AdminHandler) QuestionStats(c *gin.Context) {
	stats, err := h.Service.QuestionStats(context.Background())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Users serves the simplified user overview.
func (h *AdminHandler) Users(c *gin.Context) {
	stats, err := h.Service.Statistics(context.Background())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"total_users": stats.TotalUsers,
		"total_tests": stats.TotalTests,
	})
}

// AddAdmin puts another user on the stored allow-list.
func (h *AdminHandler) AddAdmin(c *gin.Context) {
	var req struct {
		UserID int64 `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.Service.AddAdmin(context.Background(), req.UserID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user_id": req.UserID})
}
