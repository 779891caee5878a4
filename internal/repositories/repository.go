package repositories

import "context"

// Repository aggregates all entity repositories behind one interface so
// services depend on a single constructor argument.
type Repository interface {
	Exam() ExamRepository
	Question() QuestionRepository
	Session() SessionRepository
	Answer() AnswerRepository
	Result() ResultRepository
	Proctoring() ProctoringRepository
	Enrollment() EnrollmentRepository
	User() UserRepository

	// WithTransaction runs fn against a transaction-scoped Repository.
	// The transaction commits when fn returns nil and rolls back otherwise.
	WithTransaction(ctx context.Context, fn func(repo Repository) error) error

	Ping(ctx context.Context) error
	Close() error
}

// RepositoryManager manages repository lifecycle.
type RepositoryManager interface {
	Initialize(ctx context.Context) error
	GetRepository() Repository
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
