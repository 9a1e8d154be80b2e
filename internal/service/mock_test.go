package service

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/sakif/faq-chatbot/internal/apperror"
	"github.com/sakif/faq-chatbot/internal/auth"
	"github.com/sakif/faq-chatbot/internal/model"
	"github.com/sakif/faq-chatbot/internal/repository"
)

// =========================================================================
// MOCK REPOSITORIES
// =========================================================================
//
// In-memory stand-ins for the sqlite implementations. Questions are kept in a
// slice so insertion order is the iteration order, the same as "ORDER BY id".
// Setting err makes every call fail, which is how the tests simulate a broken
// database.

type mockQuestionRepo struct {
	questions []model.Question
	nextID    int64
	err       error
	creates   int
}

func newMockQuestionRepo() *mockQuestionRepo {
	return &mockQuestionRepo{}
}

func (m *mockQuestionRepo) Create(_ context.Context, q *model.Question) error {
	if m.err != nil {
		return m.err
	}
	m.nextID++
	m.creates++
	q.ID = m.nextID
	m.questions = append(m.questions, *q)
	return nil
}

func (m *mockQuestionRepo) GetByID(_ context.Context, id int64) (*model.Question, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, q := range m.questions {
		if q.ID == id {
			result := q
			return &result, nil
		}
	}
	return nil, apperror.NotFound("question", id)
}

func (m *mockQuestionRepo) List(_ context.Context, opts repository.ListOptions) ([]model.Question, error) {
	if m.err != nil {
		return nil, m.err
	}
	result := append([]model.Question{}, m.questions...)
	if opts.Offset >= len(result) {
		return []model.Question{}, nil
	}
	result = result[opts.Offset:]
	if opts.Limit > 0 && opts.Limit < len(result) {
		result = result[:opts.Limit]
	}
	return result, nil
}

func (m *mockQuestionRepo) Update(_ context.Context, q *model.Question) error {
	if m.err != nil {
		return m.err
	}
	for i := range m.questions {
		if m.questions[i].ID == q.ID {
			m.questions[i] = *q
			return nil
		}
	}
	return apperror.NotFound("question", q.ID)
}

func (m *mockQuestionRepo) Delete(_ context.Context, id int64) error {
	if m.err != nil {
		return m.err
	}
	for i := range m.questions {
		if m.questions[i].ID == id {
			m.questions = append(m.questions[:i], m.questions[i+1:]...)
			return nil
		}
	}
	return apperror.NotFound("question", id)
}

func (m *mockQuestionRepo) FindByTextCaseInsensitive(_ context.Context, text string) ([]model.Question, error) {
	if m.err != nil {
		return nil, m.err
	}
	result := []model.Question{}
	for _, q := range m.questions {
		if strings.EqualFold(q.QuestionText, text) {
			result = append(result, q)
		}
	}
	return result, nil
}

func (m *mockQuestionRepo) FindByOwner(_ context.Context, adminID int64) ([]model.Question, error) {
	if m.err != nil {
		return nil, m.err
	}
	result := []model.Question{}
	for _, q := range m.questions {
		if q.OwnerID != nil && *q.OwnerID == adminID {
			result = append(result, q)
		}
	}
	return result, nil
}

type mockAdminRepo struct {
	admins []model.Admin
	nextID int64
}

func newMockAdminRepo() *mockAdminRepo {
	return &mockAdminRepo{}
}

func (m *mockAdminRepo) CreateAdmin(_ context.Context, a *model.Admin) error {
	for _, existing := range m.admins {
		if existing.Username == a.Username {
			return apperror.Conflict("admin", "username "+a.Username)
		}
	}
	m.nextID++
	a.ID = m.nextID
	m.admins = append(m.admins, *a)
	return nil
}

func (m *mockAdminRepo) GetAdminByID(_ context.Context, id int64) (*model.Admin, error) {
	for _, a := range m.admins {
		if a.ID == id {
			result := a
			return &result, nil
		}
	}
	return nil, apperror.NotFound("admin", id)
}

func (m *mockAdminRepo) GetAdminByUsername(_ context.Context, username string) (*model.Admin, error) {
	for _, a := range m.admins {
		if a.Username == username {
			result := a
			return &result, nil
		}
	}
	return nil, &apperror.AppError{Err: apperror.ErrNotFound, Message: "admin not found with username " + username}
}

func (m *mockAdminRepo) ListAdmins(_ context.Context) ([]model.Admin, error) {
	return append([]model.Admin{}, m.admins...), nil
}

func (m *mockAdminRepo) UpdateAdmin(_ context.Context, a *model.Admin) error {
	for i := range m.admins {
		if m.admins[i].ID == a.ID {
			m.admins[i] = *a
			return nil
		}
	}
	return apperror.NotFound("admin", a.ID)
}

func (m *mockAdminRepo) DeleteAdmin(_ context.Context, id int64) error {
	for i := range m.admins {
		if m.admins[i].ID == id {
			m.admins = append(m.admins[:i], m.admins[i+1:]...)
			return nil
		}
	}
	return apperror.NotFound("admin", id)
}

// mockClassifier returns a canned reply and counts calls.
type mockClassifier struct {
	reply string
	calls int
}

func (m *mockClassifier) Classify(_ context.Context, _ string) string {
	m.calls++
	return m.reply
}

// =========================================================================
// TEST HELPERS
// =========================================================================

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestQuestionService(t *testing.T) (*QuestionService, *mockQuestionRepo) {
	t.Helper()
	repo := newMockQuestionRepo()
	return NewQuestionService(repo, testLogger()), repo
}

func newTestAdminService(t *testing.T) (*AdminService, *mockAdminRepo, *mockQuestionRepo) {
	t.Helper()
	admins := newMockAdminRepo()
	questions := newMockQuestionRepo()
	tokens, err := auth.NewTokenService("test-secret-that-is-long-enough", 0)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	svc := NewAdminService(admins, questions, auth.NewPasswordServiceForTest(), tokens, testLogger())
	return svc, admins, questions
}
