package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/quizforge/attempt-service/internal/models"
	"github.com/quizforge/attempt-service/internal/repositories"
	"github.com/quizforge/attempt-service/internal/services"
	"github.com/quizforge/attempt-service/internal/utils"
)

type QuizHandler struct {
	BaseHandler
	quizService services.QuizService
}

func NewQuizHandler(quizService services.QuizService, logger utils.Logger) *QuizHandler {
	return &QuizHandler{
		BaseHandler: NewBaseHandler(logger),
		quizService: quizService,
	}
}

// CreateQuiz creates a quiz or exam definition.
func (h *QuizHandler) CreateQuiz(c *gin.Context) {
	var quiz models.QuizDefinition
	if err := c.ShouldBindJSON(&quiz); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	created, err := h.quizService.Create(c.Request.Context(), &quiz)
	if err != nil {
		h.HandleServiceError(c, err, "Failed to create quiz definition")
		return
	}
	h.RespondWithSuccess(c, http.StatusCreated, "Quiz definition created", created,
		"quiz_id", created.ID)
}

// GetQuiz returns one definition with its quotas.
func (h *QuizHandler) GetQuiz(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid quiz id", err)
		return
	}

	quiz, err := h.quizService.GetByID(c.Request.Context(), uint(id))
	if err != nil {
		h.HandleServiceError(c, err, "Failed to get quiz definition")
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Quiz definition", Data: quiz})
}

// ListQuizzes returns stored definitions.
func (h *QuizHandler) ListQuizzes(c *gin.Context) {
	filters := repositories.QuizFilters{}
	if topicID := c.Query("topic_id"); topicID != "" {
		id, err := strconv.ParseUint(topicID, 10, 32)
		if err != nil {
			h.RespondWithError(c, http.StatusBadRequest, "Invalid topic id", err)
			return
		}
		parsed := uint(id)
		filters.TopicID = &parsed
	}
	filters.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	filters.Offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))

	quizzes, total, err := h.quizService.List(c.Request.Context(), filters)
	if err != nil {
		h.HandleServiceError(c, err, "Failed to list quiz definitions")
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Quiz definitions",
		Data:    ListResponse{Items: quizzes, Total: total},
	})
}

// DeleteQuiz removes a definition.
func (h *QuizHandler) DeleteQuiz(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid quiz id", err)
		return
	}

	if err := h.quizService.Delete(c.Request.Context(), uint(id)); err != nil {
		h.HandleServiceError(c, err, "Failed to delete quiz definition")
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Quiz definition deleted", nil, "quiz_id", id)
}

// GetPreferences returns the stored defaults for new definitions.
func (h *QuizHandler) GetPreferences(c *gin.Context) {
	prefs, err := h.quizService.GetPreferences(c.Request.Context())
	if err != nil {
		h.HandleServiceError(c, err, "Failed to get preferences")
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Preferences", Data: prefs})
}

// UpdatePreferences stores new defaults.
func (h *QuizHandler) UpdatePreferences(c *gin.Context) {
	var prefs models.Preferences
	if err := c.ShouldBindJSON(&prefs); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	updated, err := h.quizService.UpdatePreferences(c.Request.Context(), &prefs)
	if err != nil {
		h.HandleServiceError(c, err, "Failed to update preferences")
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Preferences updated", updated)
}
