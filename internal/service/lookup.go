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

const (
	// SentinelAnswer is returned by Answer on a miss. Nothing is persisted.
	SentinelAnswer = "Je ne connais pas encore la réponse à cette question."

	// PlaceholderAnswer is stored and returned by AnswerOrRecord on a miss.
	PlaceholderAnswer = "Désolé, je ne connais pas la réponse."

	// ClassifierDisabledAnswer is returned when no classifier is configured.
	ClassifierDisabledAnswer = "Erreur : NLP non disponible."
)

// AnswerSource selects where Answer looks for a response.
type AnswerSource string

const (
	SourceStore    AnswerSource = "store"    // record store only, sentinel on miss
	SourceNLP      AnswerSource = "nlp"      // external classifier only
	SourceFallback AnswerSource = "fallback" // record store, classifier on miss
)

// ParseAnswerSource maps a config value to an AnswerSource. Empty means store.
func ParseAnswerSource(s string) (AnswerSource, error) {
	switch src := AnswerSource(strings.ToLower(strings.TrimSpace(s))); src {
	case "":
		return SourceStore, nil
	case SourceStore, SourceNLP, SourceFallback:
		return src, nil
	default:
		return "", fmt.Errorf("unknown answer source %q (want store, nlp or fallback)", s)
	}
}

// Classifier is the fail-soft external answer source. *classifier.Client
// implements it.
type Classifier interface {
	Classify(ctx context.Context, question string) string
}

// AnswerResult is what the chatbot endpoints send back.
type AnswerResult struct {
	// Question is the stored question text that matched; empty on a miss.
	Question string
	Response string
	Matched  bool
	// Recorded is the record created by AnswerOrRecord on a miss.
	Recorded *model.Question
}

// LookupService answers free-text questions from the record store and, depending
// on the configured source, from the external classifier.
//
// MISS POLICY PER ENTRY POINT:
//   - Answer never writes. A miss returns SentinelAnswer (or the classifier's
//     answer under SourceFallback).
//   - AnswerOrRecord always uses the store and persists a miss with
//     PlaceholderAnswer so an admin can fill it in later.
type LookupService struct {
	repo       repository.QuestionRepository
	classifier Classifier
	source     AnswerSource
	logger     *slog.Logger
}

// NewLookupService wires the service. classifier may be nil, in which case every
// source behaves like SourceStore and Classify reports ClassifierDisabledAnswer.
func NewLookupService(repo repository.QuestionRepository, classifier Classifier, source AnswerSource, logger *slog.Logger) *LookupService {
	if classifier == nil {
		source = SourceStore
	}
	return &LookupService{
		repo:       repo,
		classifier: classifier,
		source:     source,
		logger:     logger,
	}
}

// Source reports the effective answer source.
func (s *LookupService) Source() AnswerSource {
	return s.source
}

// normalizeQuestion trims surrounding whitespace and rejects blank and oversized
// input. Every write path stores trimmed text, so lookups trim too; nothing else
// about the text is normalised and matching only ignores case.
func normalizeQuestion(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", apperror.ValidationFailed("question", "question is required")
	}
	if utf8.RuneCountInString(text) > model.MaxTextLength {
		return "", apperror.ValidationFailed("question",
			fmt.Sprintf("question must be %d characters or less", model.MaxTextLength))
	}
	return text, nil
}

// Answer looks the question up without persisting anything.
func (s *LookupService) Answer(ctx context.Context, text string) (*AnswerResult, error) {
	text, err := normalizeQuestion(text)
	if err != nil {
		return nil, err
	}

	if s.source == SourceNLP {
		return &AnswerResult{Response: s.classifier.Classify(ctx, text)}, nil
	}

	match, err := s.firstMatch(ctx, text)
	if err != nil {
		return nil, err
	}
	if match != nil {
		return &AnswerResult{Question: match.QuestionText, Response: match.AnswerText, Matched: true}, nil
	}

	if s.source == SourceFallback {
		s.logger.Debug("no stored answer, asking classifier")
		return &AnswerResult{Response: s.classifier.Classify(ctx, text)}, nil
	}
	return &AnswerResult{Response: SentinelAnswer}, nil
}

// AnswerOrRecord looks the question up in the store and, on a miss, stores it with
// PlaceholderAnswer and returns the placeholder.
func (s *LookupService) AnswerOrRecord(ctx context.Context, text string) (*AnswerResult, error) {
	text, err := normalizeQuestion(text)
	if err != nil {
		return nil, err
	}

	match, err := s.firstMatch(ctx, text)
	if err != nil {
		return nil, err
	}
	if match != nil {
		return &AnswerResult{Question: match.QuestionText, Response: match.AnswerText, Matched: true}, nil
	}

	q := &model.Question{QuestionText: text, AnswerText: PlaceholderAnswer}
	if err := s.repo.Create(ctx, q); err != nil {
		return nil, fmt.Errorf("recording unanswered question: %w", err)
	}

	s.logger.Info("unanswered question recorded", slog.Int64("id", q.ID))
	return &AnswerResult{Response: PlaceholderAnswer, Recorded: q}, nil
}

// Classify asks the external classifier directly, whatever the configured source.
func (s *LookupService) Classify(ctx context.Context, text string) (string, error) {
	text, err := normalizeQuestion(text)
	if err != nil {
		return "", err
	}
	if s.classifier == nil {
		return ClassifierDisabledAnswer, nil
	}
	return s.classifier.Classify(ctx, text), nil
}

// firstMatch returns the oldest case-insensitive match, or nil. Several matches are
// not an error.
func (s *LookupService) firstMatch(ctx context.Context, text string) (*model.Question, error) {
	matches, err := s.repo.FindByTextCaseInsensitive(ctx, text)
	if err != nil {
		s.logger.Error("failed to look up question", slog.String("error", err.Error()))
		return nil, fmt.Errorf("looking up question: %w", err)
	}
	if len(matches) == 0 {
		return nil, nil
	}
	return &matches[0], nil
}
