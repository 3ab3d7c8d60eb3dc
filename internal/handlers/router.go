package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/quizforge/attempt-service/internal/services"
	"github.com/quizforge/attempt-service/internal/utils"
	"github.com/quizforge/attempt-service/internal/validator"
)

type HandlerManager struct {
	attemptHandler  *AttemptHandler
	quizHandler     *QuizHandler
	questionHandler *QuestionHandler
}

func NewHandlerManager(
	attemptService services.AttemptService,
	exportService services.ExportService,
	quizService services.QuizService,
	questionService services.QuestionService,
	v *validator.Validator,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		attemptHandler:  NewAttemptHandler(attemptService, exportService, v, logger),
		quizHandler:     NewQuizHandler(quizService, logger),
		questionHandler: NewQuestionHandler(questionService, logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "attempt-service",
		})
	})

	v1 := router.Group("/api/v1")
	{
		// Attempt session routes
		attempts := v1.Group("/attempts")
		{
			attempts.POST("/start", hm.attemptHandler.StartAttempt)
			attempts.GET("", hm.attemptHandler.ListAttempts)
			attempts.GET("/:id", hm.attemptHandler.GetState)
			attempts.POST("/:id/answer/:question_id", hm.attemptHandler.SubmitAnswer)
			attempts.POST("/:id/navigate", hm.attemptHandler.Navigate)
			attempts.POST("/:id/submit", hm.attemptHandler.SubmitAttempt)
			attempts.GET("/:id/time-remaining", hm.attemptHandler.GetTimeRemaining)
			attempts.GET("/:id/result", hm.attemptHandler.GetResult)
			attempts.GET("/:id/export", hm.attemptHandler.ExportResult)
			attempts.GET("/stats/:quiz_id", hm.attemptHandler.GetStats)
		}

		// Quiz / exam definition routes
		quizzes := v1.Group("/quizzes")
		{
			quizzes.POST("", hm.quizHandler.CreateQuiz)
			quizzes.GET("", hm.quizHandler.ListQuizzes)
			quizzes.GET("/:id", hm.quizHandler.GetQuiz)
			quizzes.DELETE("/:id", hm.quizHandler.DeleteQuiz)
		}

		// Learner preference routes
		preferences := v1.Group("/preferences")
		{
			preferences.GET("", hm.quizHandler.GetPreferences)
			preferences.PUT("", hm.quizHandler.UpdatePreferences)
		}

		// Question routes
		questions := v1.Group("/questions")
		{
			questions.POST("", hm.questionHandler.CreateQuestion)
			questions.GET("", hm.questionHandler.ListQuestions)
			questions.GET("/:id", hm.questionHandler.GetQuestion)
			questions.DELETE("/:id", hm.questionHandler.DeleteQuestion)
			questions.GET("/topic/:topic_id", hm.questionHandler.GetQuestionsByTopic)
		}
	}
}
