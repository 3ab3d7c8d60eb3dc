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

type QuestionHandler struct {
	BaseHandler
	questionService services.QuestionService
}

func NewQuestionHandler(questionService services.QuestionService, logger utils.Logger) *QuestionHandler {
	return &QuestionHandler{
		BaseHandler:     NewBaseHandler(logger),
		questionService: questionService,
	}
}

// CreateQuestion stores a question with its type-specific payload.
func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	var question models.Question
	if err := c.ShouldBindJSON(&question); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	created, err := h.questionService.Create(c.Request.Context(), &question)
	if err != nil {
		h.HandleServiceError(c, err, "Failed to create question")
		return
	}
	h.RespondWithSuccess(c, http.StatusCreated, "Question created", created,
		"question_id", created.ID, "type", created.Type)
}

// GetQuestion returns one question with its payload.
func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid question id", err)
		return
	}

	question, err := h.questionService.GetByID(c.Request.Context(), uint(id))
	if err != nil {
		h.HandleServiceError(c, err, "Failed to get question")
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Question", Data: question})
}

// GetQuestionsByTopic returns a topic's full pool.
func (h *QuestionHandler) GetQuestionsByTopic(c *gin.Context) {
	topicID, err := strconv.ParseUint(c.Param("topic_id"), 10, 32)
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid topic id", err)
		return
	}

	questions, err := h.questionService.GetByTopic(c.Request.Context(), uint(topicID))
	if err != nil {
		h.HandleServiceError(c, err, "Failed to get topic questions")
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Topic questions",
		Data:    ListResponse{Items: questions, Total: int64(len(questions))},
	})
}

// ListQuestions returns questions with filters and pagination.
func (h *QuestionHandler) ListQuestions(c *gin.Context) {
	filters := repositories.QuestionFilters{}
	if topicID := c.Query("topic_id"); topicID != "" {
		id, err := strconv.ParseUint(topicID, 10, 32)
		if err != nil {
			h.RespondWithError(c, http.StatusBadRequest, "Invalid topic id", err)
			return
		}
		parsed := uint(id)
		filters.TopicID = &parsed
	}
	if questionType := c.Query("type"); questionType != "" {
		parsed := models.QuestionType(questionType)
		filters.Type = &parsed
	}
	if difficulty := c.Query("difficulty"); difficulty != "" {
		parsed := models.DifficultyLevel(difficulty)
		filters.Difficulty = &parsed
	}
	filters.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	filters.Offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	filters.SortBy = c.Query("sort_by")
	filters.SortOrder = c.Query("sort_order")

	questions, total, err := h.questionService.List(c.Request.Context(), filters)
	if err != nil {
		h.HandleServiceError(c, err, "Failed to list questions")
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Questions",
		Data:    ListResponse{Items: questions, Total: total},
	})
}

// DeleteQuestion removes a question and its payload rows.
func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid question id", err)
		return
	}

	if err := h.questionService.Delete(c.Request.Context(), uint(id)); err != nil {
		h.HandleServiceError(c, err, "Failed to delete question")
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Question deleted", nil, "question_id", id)
}
