// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → validates, enforces rules, orchestrates
//	Repository (Data layer)  → reads/writes to the database
//
// Services take repository interfaces, not *sqlite.DB, so tests inject in-memory
// fakes and the HTTP handlers never see SQL.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/sakif/faq-chatbot/internal/apperror"
	"github.com/sakif/faq-chatbot/internal/model"
	"github.com/sakif/faq-chatbot/internal/repository"
)

// UnavailableAnswer is stored when a question is created through the
// create-if-absent path without an answer.
const UnavailableAnswer = "Réponse non disponible"

// QuestionService implements admin CRUD over question records.
type QuestionService struct {
	repo   repository.QuestionRepository
	logger *slog.Logger
}

func NewQuestionService(repo repository.QuestionRepository, logger *slog.Logger) *QuestionService {
	return &QuestionService{
		repo:   repo,
		logger: logger,
	}
}

// validateText trims s and checks it is non-empty and at most MaxTextLength runes.
func validateText(field, label, s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", apperror.ValidationFailed(field, label+" is required")
	}
	if utf8.RuneCountInString(s) > model.MaxTextLength {
		return "", apperror.ValidationFailed(field,
			fmt.Sprintf("%s must be %d characters or less", label, model.MaxTextLength))
	}
	return s, nil
}

func validateID(resource string, id int64) error {
	if id <= 0 {
		return apperror.ValidationFailed("id", resource+" ID must be a positive integer")
	}
	return nil
}

// Create validates and stores a new question. Validation happens before any write,
// so a rejected call leaves the store untouched. ownerID may be nil.
func (s *QuestionService) Create(ctx context.Context, text, answer string, ownerID *int64) (*model.Question, error) {
	text, err := validateText("questionText", "question text", text)
	if err != nil {
		return nil, err
	}
	answer, err = validateText("answerText", "answer text", answer)
	if err != nil {
		return nil, err
	}

	q := &model.Question{
		QuestionText: text,
		AnswerText:   answer,
		OwnerID:      ownerID,
	}

	if err := s.repo.Create(ctx, q); err != nil {
		s.logger.Error("failed to create question",
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating question: %w", err)
	}

	s.logger.Info("question created", slog.Int64("id", q.ID))
	return q, nil
}

// CreateIfAbsent returns the first stored question matching text (case-insensitive)
// if there is one; otherwise it stores a new record. An empty answer is replaced by
// UnavailableAnswer. created reports which branch ran.
func (s *QuestionService) CreateIfAbsent(ctx context.Context, text, answer string) (q *model.Question, created bool, err error) {
	text, err = validateText("questionText", "question text", text)
	if err != nil {
		return nil, false, err
	}

	existing, err := s.repo.FindByTextCaseInsensitive(ctx, text)
	if err != nil {
		return nil, false, fmt.Errorf("looking up question: %w", err)
	}
	if len(existing) > 0 {
		return &existing[0], false, nil
	}

	if strings.TrimSpace(answer) == "" {
		answer = UnavailableAnswer
	}
	q, err = s.Create(ctx, text, answer, nil)
	if err != nil {
		return nil, false, err
	}
	return q, true, nil
}

func (s *QuestionService) GetByID(ctx context.Context, id int64) (*model.Question, error) {
	if err := validateID("question", id); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// List returns questions in insertion order. limit <= 0 means all of them.
func (s *QuestionService) List(ctx context.Context, limit, offset int) ([]model.Question, error) {
	if offset < 0 {
		offset = 0
	}

	questions, err := s.repo.List(ctx, repository.ListOptions{Limit: limit, Offset: offset})
	if err != nil {
		s.logger.Error("failed to list questions", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing questions: %w", err)
	}
	return questions, nil
}

// Update applies a partial change: a nil field keeps its current value. The store
// then receives a full replace of both text fields. Unknown IDs yield NotFound and
// never create a record.
func (s *QuestionService) Update(ctx context.Context, id int64, text, answer *string) (*model.Question, error) {
	if err := validateID("question", id); err != nil {
		return nil, err
	}

	q, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if text != nil {
		v, err := validateText("questionText", "question text", *text)
		if err != nil {
			return nil, err
		}
		q.QuestionText = v
	}
	if answer != nil {
		v, err := validateText("answerText", "answer text", *answer)
		if err != nil {
			return nil, err
		}
		q.AnswerText = v
	}

	if err := s.repo.Update(ctx, q); err != nil {
		return nil, fmt.Errorf("updating question: %w", err)
	}

	s.logger.Info("question updated", slog.Int64("id", q.ID))
	return q, nil
}

func (s *QuestionService) Delete(ctx context.Context, id int64) error {
	if err := validateID("question", id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("question deleted", slog.Int64("id", id))
	return nil
}
