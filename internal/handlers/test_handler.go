package handlers

import (
	"context"
	"errors"
	"net/http"

	"dtm-test-service/internal/config"
	"dtm-test-service/internal/models"
	"dtm-test-service/internal/service"
	"dtm-test-service/internal/session"
	"dtm-test-service/internal/translations"

	"github.com/gin-gonic/gin"
)

type TestHandler struct {
	Service      *service.TestService
	Users        *service.UserService
	Translations *translations.Manager
	Config       *config.Config
}

func NewTestHandler(s *service.TestService, users *service.UserService, tr *translations.Manager, cfg *config.Config) *TestHandler {
	return &TestHandler{Service: s, Users: users, Translations: tr, Config: cfg}
}

// StartTest selects a subject and opens a test for the user, returning
// the first question. Any test already in progress is discarded.
func (h *TestHandler) StartTest(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}
	var req struct {
		Subject string `json:"subject" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !h.Config.IsKnownSubject(req.Subject) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown subject", "subject": req.Subject})
		return
	}

	lang := h.Users.Language(context.Background(), id)
	first, err := h.Service.StartTest(context.Background(), id, req.Subject, lang)
	if err != nil {
		if errors.Is(err, session.ErrNoQuestions) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "no_questions_available",
				"message": h.Translations.Text(lang, "no_questions_available", "No questions available for this subject"),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"question": first})
}

// Answer submits one answer and returns either the next question or the
// final summary. Stale actions are informational, never crashes.
func (h *TestHandler) Answer(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}
	var req struct {
		Answer        string `json:"answer" binding:"required"`
		QuestionIndex *int   `json:"question_index" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	outcome, err := h.Service.SubmitAnswer(context.Background(), id, req.Answer, *req.QuestionIndex)
	if err != nil {
		lang := h.Users.Language(context.Background(), id)
		switch {
		case errors.Is(err, service.ErrNoActiveTest):
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "test_not_found",
				"message": h.Translations.Text(lang, "test_not_found", "No active test"),
			})
		case errors.Is(err, session.ErrIndexMismatch):
			c.JSON(http.StatusConflict, gin.H{"error": "stale_question_index"})
		case errors.Is(err, session.ErrFinished):
			c.JSON(http.StatusConflict, gin.H{"error": "test_already_finished"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, outcome)
}

// CurrentQuestion re-sends the question the user is on, for clients
// re-rendering after a reconnect.
func (h *TestHandler) CurrentQuestion(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}
	q, err := h.Service.CurrentQuestion(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "test_not_found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"question": q})
}

// CancelTest abandons the test. Cancelling with nothing in progress is a
// no-op, not an error.
func (h *TestHandler) CancelTest(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}
	cancelled := h.Service.CancelTest(id)
	c.JSON(http.StatusOK, gin.H{"cancelled": cancelled})
}

// Analysis returns the finished test's transcript, once.
func (h *TestHandler) Analysis(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}
	transcript, err := h.Service.Analysis(id)
	if err != nil {
		lang := h.Users.Language(context.Background(), id)
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "no_analysis_available",
			"message": h.Translations.Text(lang, "no_analysis_available", "No analysis available. Take a test first."),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"answers": transcript})
}

// Results lists the user's recent persisted results, newest first.
func (h *TestHandler) Results(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}
	results, err := h.Service.RecentResults(context.Background(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if results == nil {
		results = []models.TestResult{}
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}
