package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/examstack/exam-service/internal/models"
	"github.com/examstack/exam-service/internal/repositories"
)

// fakeRepo implements repositories.Repository in memory for service tests.
// Only the behavior the services under test exercise is modeled; everything
// else answers with gorm.ErrRecordNotFound or a no-op.
type fakeRepo struct {
	exam       *fakeExamRepo
	question   *fakeQuestionRepo
	session    *fakeSessionRepo
	answer     *fakeAnswerRepo
	result     *fakeResultRepo
	proctoring *fakeProctoringRepo
	enrollment *fakeEnrollmentRepo
	user       *fakeUserRepo
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		exam:       &fakeExamRepo{exams: map[uint]*models.Exam{}},
		question:   &fakeQuestionRepo{questions: map[uint]*models.Question{}},
		session:    &fakeSessionRepo{sessions: map[uint]*models.ExamSession{}},
		answer:     &fakeAnswerRepo{},
		result:     &fakeResultRepo{},
		proctoring: &fakeProctoringRepo{},
		enrollment: &fakeEnrollmentRepo{},
		user:       &fakeUserRepo{roles: map[string]models.UserRole{}},
	}
}

func (f *fakeRepo) Exam() repositories.ExamRepository             { return f.exam }
func (f *fakeRepo) Question() repositories.QuestionRepository     { return f.question }
func (f *fakeRepo) Session() repositories.SessionRepository       { return f.session }
func (f *fakeRepo) Answer() repositories.AnswerRepository         { return f.answer }
func (f *fakeRepo) Result() repositories.ResultRepository         { return f.result }
func (f *fakeRepo) Proctoring() repositories.ProctoringRepository { return f.proctoring }
func (f *fakeRepo) Enrollment() repositories.EnrollmentRepository { return f.enrollment }
func (f *fakeRepo) User() repositories.UserRepository             { return f.user }

// WithTransaction runs fn against the same repo; the fakes have no
// transactional semantics to model.
func (f *fakeRepo) WithTransaction(ctx context.Context, fn func(repo repositories.Repository) error) error {
	return fn(f)
}

func (f *fakeRepo) Ping(ctx context.Context) error { return nil }
func (f *fakeRepo) Close() error                   { return nil }

// ===== EXAM =====

type fakeExamRepo struct {
	exams map[uint]*models.Exam
}

func (r *fakeExamRepo) Create(ctx context.Context, tx *gorm.DB, exam *models.Exam) error {
	exam.ID = uint(len(r.exams) + 1)
	r.exams[exam.ID] = exam
	return nil
}

func (r *fakeExamRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Exam, error) {
	exam, ok := r.exams[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return exam, nil
}

func (r *fakeExamRepo) GetWithQuestions(ctx context.Context, tx *gorm.DB, id uint) (*models.Exam, error) {
	return r.GetByID(ctx, tx, id)
}

func (r *fakeExamRepo) Update(ctx context.Context, tx *gorm.DB, exam *models.Exam) error { return nil }
func (r *fakeExamRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error           { return nil }

func (r *fakeExamRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.ExamFilters) ([]*models.Exam, int64, error) {
	return nil, 0, nil
}

func (r *fakeExamRepo) SetPublished(ctx context.Context, tx *gorm.DB, id uint, published bool) error {
	exam, ok := r.exams[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	exam.Published = published
	return nil
}

func (r *fakeExamRepo) UpsertRules(ctx context.Context, tx *gorm.DB, rules *models.ExamRules) error {
	return nil
}

// ===== QUESTION =====

type attachedQuestion struct {
	ExamID     uint
	QuestionID uint
	Position   int
}

type fakeQuestionRepo struct {
	questions map[uint]*models.Question
	attached  []attachedQuestion
}

func (r *fakeQuestionRepo) Create(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	question.ID = uint(len(r.questions) + 1)
	r.questions[question.ID] = question
	return nil
}

func (r *fakeQuestionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error) {
	question, ok := r.questions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return question, nil
}

func (r *fakeQuestionRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uint) ([]*models.Question, error) {
	return nil, nil
}

func (r *fakeQuestionRepo) Update(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	return nil
}

func (r *fakeQuestionRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error { return nil }

func (r *fakeQuestionRepo) ListByCourse(ctx context.Context, tx *gorm.DB, courseID uint) ([]*models.Question, error) {
	var questions []*models.Question
	for _, question := range r.questions {
		if question.CourseID == courseID {
			questions = append(questions, question)
		}
	}
	return questions, nil
}

func (r *fakeQuestionRepo) AttachToExam(ctx context.Context, tx *gorm.DB, examID, questionID uint, position int) error {
	r.attached = append(r.attached, attachedQuestion{ExamID: examID, QuestionID: questionID, Position: position})
	return nil
}

func (r *fakeQuestionRepo) DetachFromExam(ctx context.Context, tx *gorm.DB, examID, questionID uint) error {
	for i, link := range r.attached {
		if link.ExamID == examID && link.QuestionID == questionID {
			r.attached = append(r.attached[:i], r.attached[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

// ===== SESSION =====

// fakeSessionRepo answers GetByStudentAndExam from a scripted sequence so
// tests can model what each transaction observes, and Create from a scripted
// error sequence so tests can inject unique violations.
type fakeSessionRepo struct {
	sessions map[uint]*models.ExamSession
	nextID   uint

	prior      [][]*models.ExamSession
	priorCalls int

	createErr   []error
	createCalls int
	created     []*models.ExamSession

	updateRowsSeq []int64
	updateCalls   int
}

func (r *fakeSessionRepo) Create(ctx context.Context, tx *gorm.DB, session *models.ExamSession) error {
	call := r.createCalls
	r.createCalls++
	if call < len(r.createErr) && r.createErr[call] != nil {
		return r.createErr[call]
	}

	r.nextID++
	session.ID = r.nextID
	r.sessions[session.ID] = session
	r.created = append(r.created, session)
	return nil
}

func (r *fakeSessionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.ExamSession, error) {
	session, ok := r.sessions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return session, nil
}

func (r *fakeSessionRepo) GetByStudentAndExam(ctx context.Context, tx *gorm.DB, studentID string, examID uint) ([]*models.ExamSession, error) {
	call := r.priorCalls
	r.priorCalls++
	if call < len(r.prior) {
		return r.prior[call], nil
	}
	return nil, nil
}

func (r *fakeSessionRepo) Update(ctx context.Context, tx *gorm.DB, session *models.ExamSession) error {
	r.sessions[session.ID] = session
	return nil
}

func (r *fakeSessionRepo) UpdateStatusIf(ctx context.Context, tx *gorm.DB, id uint, expected []models.SessionStatus, updates map[string]interface{}) (int64, error) {
	call := r.updateCalls
	r.updateCalls++

	rows := int64(1)
	if call < len(r.updateRowsSeq) {
		rows = r.updateRowsSeq[call]
	}
	if rows == 0 {
		return 0, nil
	}

	if session, ok := r.sessions[id]; ok {
		if status, ok := updates["status"].(models.SessionStatus); ok {
			session.Status = status
		}
	}
	return rows, nil
}

func (r *fakeSessionRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.SessionFilters) ([]*models.ExamSession, int64, error) {
	return nil, 0, nil
}

// ===== ANSWER =====

type fakeAnswerRepo struct {
	upserted []*models.Answer
}

func (r *fakeAnswerRepo) Upsert(ctx context.Context, tx *gorm.DB, answer *models.Answer) error {
	r.upserted = append(r.upserted, answer)
	return nil
}

func (r *fakeAnswerRepo) UpsertBatch(ctx context.Context, tx *gorm.DB, answers []*models.Answer) error {
	r.upserted = append(r.upserted, answers...)
	return nil
}

func (r *fakeAnswerRepo) GetBySession(ctx context.Context, tx *gorm.DB, sessionID uint) ([]*models.Answer, error) {
	var answers []*models.Answer
	for _, answer := range r.upserted {
		if answer.SessionID == sessionID {
			answers = append(answers, answer)
		}
	}
	return answers, nil
}

func (r *fakeAnswerRepo) GetBySessionAndQuestion(ctx context.Context, tx *gorm.DB, sessionID, questionID uint) (*models.Answer, error) {
	return nil, gorm.ErrRecordNotFound
}

// ===== RESULT =====

type fakeResultRepo struct {
	upserted *models.Result
	upserts  int
}

func (r *fakeResultRepo) Upsert(ctx context.Context, tx *gorm.DB, result *models.Result) error {
	r.upserted = result
	r.upserts++
	return nil
}

func (r *fakeResultRepo) GetBySession(ctx context.Context, tx *gorm.DB, sessionID uint) (*models.Result, error) {
	if r.upserted == nil || r.upserted.SessionID != sessionID {
		return nil, gorm.ErrRecordNotFound
	}
	return r.upserted, nil
}

func (r *fakeResultRepo) ListByExam(ctx context.Context, tx *gorm.DB, examID uint) ([]*models.Result, error) {
	return nil, nil
}

func (r *fakeResultRepo) SetPublishedByExam(ctx context.Context, tx *gorm.DB, examID uint, published bool) (int64, error) {
	return 0, nil
}

// ===== PROCTORING =====

type fakeProctoringRepo struct {
	events []*models.SuspiciousEvent
}

func (r *fakeProctoringRepo) Create(ctx context.Context, tx *gorm.DB, event *models.SuspiciousEvent) error {
	r.events = append(r.events, event)
	return nil
}

func (r *fakeProctoringRepo) ListBySession(ctx context.Context, tx *gorm.DB, sessionID uint) ([]*models.SuspiciousEvent, error) {
	return r.events, nil
}

func (r *fakeProctoringRepo) CountBySession(ctx context.Context, tx *gorm.DB, sessionID uint) (int64, error) {
	return int64(len(r.events)), nil
}

// ===== ENROLLMENT =====

type fakeEnrollmentRepo struct {
	enrolled bool
}

func (r *fakeEnrollmentRepo) IsEnrolled(ctx context.Context, tx *gorm.DB, courseID uint, studentID string) (bool, error) {
	return r.enrolled, nil
}

func (r *fakeEnrollmentRepo) ListByCourse(ctx context.Context, tx *gorm.DB, courseID uint) ([]*models.Enrollment, error) {
	return nil, nil
}

// ===== USER =====

type fakeUserRepo struct {
	roles map[string]models.UserRole
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) GetByIDs(ctx context.Context, ids []string) ([]*models.User, error) {
	return nil, nil
}

func (r *fakeUserRepo) ExistsByID(ctx context.Context, id string) (bool, error) {
	_, ok := r.roles[id]
	return ok, nil
}

func (r *fakeUserRepo) HasRole(ctx context.Context, id string, role models.UserRole) (bool, error) {
	return r.roles[id] == role, nil
}

func (r *fakeUserRepo) List(ctx context.Context, filters repositories.UserFilters) ([]*models.User, int64, error) {
	return nil, 0, nil
}
