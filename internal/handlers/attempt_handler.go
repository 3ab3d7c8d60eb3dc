package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/quizforge/attempt-service/internal/repositories"
	"github.com/quizforge/attempt-service/internal/services"
	"github.com/quizforge/attempt-service/internal/utils"
	"github.com/quizforge/attempt-service/internal/validator"
)

type AttemptHandler struct {
	BaseHandler
	attemptService services.AttemptService
	exportService  services.ExportService
	validator      *validator.Validator
}

func NewAttemptHandler(
	attemptService services.AttemptService,
	exportService services.ExportService,
	v *validator.Validator,
	logger utils.Logger,
) *AttemptHandler {
	return &AttemptHandler{
		BaseHandler:    NewBaseHandler(logger),
		attemptService: attemptService,
		exportService:  exportService,
		validator:      v,
	}
}

// StartAttempt starts a new session from a quiz definition.
func (h *AttemptHandler) StartAttempt(c *gin.Context) {
	var req services.StartAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Validation failed", err, validator.ToValidationErrors(err))
		return
	}

	state, err := h.attemptService.Start(c.Request.Context(), &req)
	if err != nil {
		h.HandleServiceError(c, err, "Failed to start attempt")
		return
	}
	h.RespondWithSuccess(c, http.StatusCreated, "Attempt started", state,
		"session_id", state.SessionID, "quiz_id", state.QuizID)
}

// SubmitAnswer records the answer for one question in the session.
func (h *AttemptHandler) SubmitAnswer(c *gin.Context) {
	sessionID := c.Param("id")
	questionID, err := strconv.ParseUint(c.Param("question_id"), 10, 32)
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid question id", err)
		return
	}

	var submission services.AnswerSubmission
	if err := c.ShouldBindJSON(&submission); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	if err := h.attemptService.Answer(c.Request.Context(), sessionID, uint(questionID), &submission); err != nil {
		h.HandleServiceError(c, err, "Failed to record answer")
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Answer recorded", nil,
		"session_id", sessionID, "question_id", questionID)
}

// Navigate moves the session cursor.
func (h *AttemptHandler) Navigate(c *gin.Context) {
	sessionID := c.Param("id")

	var req services.NavigateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	state, err := h.attemptService.Navigate(c.Request.Context(), sessionID, &req)
	if err != nil {
		h.HandleServiceError(c, err, "Failed to navigate")
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Navigated", Data: state})
}

// SubmitAttempt finishes the session and returns the graded result.
func (h *AttemptHandler) SubmitAttempt(c *gin.Context) {
	sessionID := c.Param("id")

	result, err := h.attemptService.Submit(c.Request.Context(), sessionID)
	if err != nil {
		h.HandleServiceError(c, err, "Failed to submit attempt")
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Attempt submitted", result,
		"session_id", sessionID,
		"score", result.Summary.Score,
		"passed", result.Summary.Passed)
}

// GetState returns the live session view.
func (h *AttemptHandler) GetState(c *gin.Context) {
	state, err := h.attemptService.GetState(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err, "Failed to get attempt state")
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Attempt state", Data: state})
}

// GetTimeRemaining reports the countdown for a timed session.
func (h *AttemptHandler) GetTimeRemaining(c *gin.Context) {
	state, err := h.attemptService.GetState(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err, "Failed to get time remaining")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session_id":             state.SessionID,
		"time_remaining_seconds": state.TimeRemainingSeconds,
		"timed":                  state.TimeRemainingSeconds >= 0,
	})
}

// GetResult returns the graded outcome of a finished session.
func (h *AttemptHandler) GetResult(c *gin.Context) {
	result, err := h.attemptService.GetResult(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err, "Failed to get attempt result")
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Attempt result", Data: result})
}

// ExportResult streams the attempt breakdown as an xlsx workbook.
func (h *AttemptHandler) ExportResult(c *gin.Context) {
	sessionID := c.Param("id")

	data, err := h.exportService.ExportAttempt(c.Request.Context(), sessionID)
	if err != nil {
		h.HandleServiceError(c, err, "Failed to export attempt")
		return
	}

	filename := "attempt-" + sessionID + ".xlsx"
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// ListAttempts returns stored attempt records.
func (h *AttemptHandler) ListAttempts(c *gin.Context) {
	filters := repositories.AttemptFilters{}
	if quizID := c.Query("quiz_id"); quizID != "" {
		id, err := strconv.ParseUint(quizID, 10, 32)
		if err != nil {
			h.RespondWithError(c, http.StatusBadRequest, "Invalid quiz id", err)
			return
		}
		parsed := uint(id)
		filters.QuizID = &parsed
	}
	if passed := c.Query("passed"); passed != "" {
		value := passed == "true"
		filters.Passed = &value
	}
	if from := c.Query("from"); from != "" {
		ts, err := time.Parse(time.RFC3339, from)
		if err != nil {
			h.RespondWithError(c, http.StatusBadRequest, "Invalid from timestamp", err)
			return
		}
		filters.DateFrom = &ts
	}
	if to := c.Query("to"); to != "" {
		ts, err := time.Parse(time.RFC3339, to)
		if err != nil {
			h.RespondWithError(c, http.StatusBadRequest, "Invalid to timestamp", err)
			return
		}
		filters.DateTo = &ts
	}
	filters.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	filters.Offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))

	attempts, total, err := h.attemptService.ListAttempts(c.Request.Context(), filters)
	if err != nil {
		h.HandleServiceError(c, err, "Failed to list attempts")
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Attempts",
		Data:    ListResponse{Items: attempts, Total: total},
	})
}

// GetStats returns aggregate statistics for a quiz definition.
func (h *AttemptHandler) GetStats(c *gin.Context) {
	quizID, err := strconv.ParseUint(c.Param("quiz_id"), 10, 32)
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid quiz id", err)
		return
	}

	stats, err := h.attemptService.GetStats(c.Request.Context(), uint(quizID))
	if err != nil {
		h.HandleServiceError(c, err, "Failed to get attempt stats")
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Attempt stats", Data: stats})
}
