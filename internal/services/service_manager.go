package services

import (
	"log/slog"

	"github.com/examstack/exam-service/internal/cache"
	"github.com/examstack/exam-service/internal/events"
	"github.com/examstack/exam-service/internal/repositories"
	"github.com/examstack/exam-service/internal/validator"
)

// ServiceManager wires all services over the shared repository, cache,
// publisher and validator.
type ServiceManager struct {
	session    SessionService
	result     ResultService
	proctoring ProctoringService
	exam       ExamService
	question   QuestionService
}

func NewServiceManager(
	repo repositories.Repository,
	cacheManager *cache.CacheManager,
	publisher events.EventPublisher,
	logger *slog.Logger,
	v *validator.Validator,
) *ServiceManager {
	return &ServiceManager{
		session:    NewSessionService(repo, cacheManager, publisher, logger, v),
		result:     NewResultService(repo, cacheManager, publisher, logger, v),
		proctoring: NewProctoringService(repo, publisher, logger, v),
		exam:       NewExamService(repo, cacheManager, logger, v),
		question:   NewQuestionService(repo, cacheManager, logger, v),
	}
}

func (m *ServiceManager) Session() SessionService       { return m.session }
func (m *ServiceManager) Result() ResultService         { return m.result }
func (m *ServiceManager) Proctoring() ProctoringService { return m.proctoring }
func (m *ServiceManager) Exam() ExamService             { return m.exam }
func (m *ServiceManager) Question() QuestionService     { return m.question }
