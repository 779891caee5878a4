package handlers

import (
	"net/http"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"

	"github.com/examstack/exam-service/internal/models"
	"github.com/examstack/exam-service/internal/services"
	"github.com/examstack/exam-service/internal/utils"
)

// HandlerManager owns every HTTP handler and the route table.
type HandlerManager struct {
	session    *SessionHandler
	result     *ResultHandler
	proctoring *ProctoringHandler
	exam       *ExamHandler
	question   *QuestionHandler

	casdoor *casdoorsdk.Client
	health  func(c *gin.Context)
}

func NewHandlerManager(
	manager *services.ServiceManager,
	casdoorClient *casdoorsdk.Client,
	logger utils.Logger,
	healthCheck func(c *gin.Context),
) *HandlerManager {
	return &HandlerManager{
		session:    NewSessionHandler(manager.Session(), logger),
		result:     NewResultHandler(manager.Result(), logger),
		proctoring: NewProctoringHandler(manager.Proctoring(), logger),
		exam:       NewExamHandler(manager.Exam(), logger),
		question:   NewQuestionHandler(manager.Question(), logger),
		casdoor:    casdoorClient,
		health:     healthCheck,
	}
}

// SetupRoutes wires the API under /api/v1. Faculty routes carry an extra
// role gate; everything else requires only a valid token.
func (m *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", m.health)

	api := router.Group("/api/v1")
	api.Use(AuthMiddleware(m.casdoor))

	faculty := RequireRole(models.RoleFaculty)

	// Exams
	exams := api.Group("/exams")
	{
		exams.POST("", faculty, m.exam.Create)
		exams.GET("/:id", m.exam.Get)
		exams.GET("/:id/questions", m.exam.GetWithQuestions)
		exams.POST("/:id/publish", faculty, m.exam.SetPublished)
		exams.PUT("/:id/rules", faculty, m.exam.UpdateRules)

		exams.POST("/:id/questions", faculty, m.question.Attach)
		exams.DELETE("/:id/questions/:questionID", faculty, m.question.Detach)

		exams.GET("/:id/sessions", faculty, m.session.ListByExam)

		exams.GET("/:id/results", faculty, m.result.Overview)
		exams.POST("/:id/results/publish", faculty, m.result.Publish)
		exams.GET("/:id/results/export", faculty, m.result.Export)
	}

	// Sessions
	sessions := api.Group("/sessions")
	{
		sessions.POST("", m.session.Start)
		sessions.GET("/:id", m.session.Get)
		sessions.PUT("/:id/answers", m.session.SaveAnswer)
		sessions.POST("/:id/submit", m.session.Submit)
		sessions.POST("/:id/terminate", faculty, m.session.Terminate)

		sessions.GET("/:id/result", m.result.GetMine)

		sessions.POST("/:id/events", m.proctoring.Record)
		sessions.GET("/:id/events", faculty, m.proctoring.List)
	}

	// Question bank
	questions := api.Group("/questions")
	{
		questions.POST("", faculty, m.question.Create)
		questions.GET("/:id", faculty, m.question.Get)
	}
	api.GET("/courses/:id/questions", faculty, m.question.ListByCourse)

	// Grading
	grading := api.Group("/grading")
	{
		grading.GET("/sessions/:id", faculty, m.result.GetForGrading)
		grading.PUT("/sessions/:id", faculty, m.result.ApplyManualGrades)
	}
}

// DefaultHealthHandler reports liveness plus dependency status.
func DefaultHealthHandler(checks map[string]func() error) func(c *gin.Context) {
	return func(c *gin.Context) {
		status := http.StatusOK
		deps := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(); err != nil {
				deps[name] = err.Error()
				status = http.StatusServiceUnavailable
			} else {
				deps[name] = "ok"
			}
		}
		c.JSON(status, gin.H{"status": http.StatusText(status), "dependencies": deps})
	}
}
