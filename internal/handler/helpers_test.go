package handler_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/sakif/faq-chatbot/internal/auth"
	"github.com/sakif/faq-chatbot/internal/handler"
	"github.com/sakif/faq-chatbot/internal/model"
	sqliteRepo "github.com/sakif/faq-chatbot/internal/repository/sqlite"
	"github.com/sakif/faq-chatbot/internal/service"
)

// testEnv wires real services over an in-memory database. Only the external
// classifier is faked.
type testEnv struct {
	db        *sqliteRepo.DB
	questions *service.QuestionService
	lookup    *service.LookupService
	admins    *service.AdminService
	tokens    *auth.TokenService
	logger    *slog.Logger
}

type stubClassifier struct{ reply string }

func (s stubClassifier) Classify(context.Context, string) string { return s.reply }

func newTestEnv(t *testing.T, cls service.Classifier, source service.AnswerSource) *testEnv {
	t.Helper()

	db, err := sqliteRepo.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	tokens, err := auth.NewTokenService("handler-test-secret-0123456789", 0)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &testEnv{
		db:        db,
		questions: service.NewQuestionService(db, logger),
		lookup:    service.NewLookupService(db, cls, source, logger),
		admins:    service.NewAdminService(db, db, auth.NewPasswordServiceForTest(), tokens, logger),
		tokens:    tokens,
		logger:    logger,
	}
}

func (e *testEnv) seed(t *testing.T, text, answer string) *model.Question {
	t.Helper()
	q, err := e.questions.Create(context.Background(), text, answer, nil)
	require.NoError(t, err)
	return q
}

// serve mounts fn on pattern in a fresh chi router (so {id} URL params resolve)
// and sends one request to path.
func serve(method, pattern string, fn http.HandlerFunc, path, body string) *httptest.ResponseRecorder {
	return serveRequest(method, pattern, fn, newRequest(method, path, body))
}

func serveRequest(method, pattern string, fn http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Method(method, pattern, fn)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func newRequest(method, path, body string) *http.Request {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&v), "body: %s", rr.Body.String())
	return v
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) handler.ErrorResponse {
	t.Helper()
	return decode[handler.ErrorResponse](t, rr)
}
