// Package seed loads question/answer pairs from a YAML file into the record store.
//
// File format:
//
//	questions:
//	  - question: What is your name?
//	    answer: I am a chatbot.
//	  - question: Quels sont vos horaires ?
//	    answer: Du lundi au vendredi, de 9h à 18h.
//
// Seeding is idempotent: a question already stored (compared case-insensitively) is
// skipped, so the same file can be applied on every start.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sakif/faq-chatbot/internal/model"
)

// Entry is one question/answer pair of a seed file.
type Entry struct {
	Question string `yaml:"question"`
	Answer   string `yaml:"answer"`
}

type file struct {
	Questions []Entry `yaml:"questions"`
}

// Store is satisfied by *service.QuestionService.
type Store interface {
	CreateIfAbsent(ctx context.Context, text, answer string) (*model.Question, bool, error)
}

// Result counts what Apply did.
type Result struct {
	Added   int
	Skipped int
}

// Parse decodes a seed document. Unknown keys and entries with a blank question or
// answer are errors, reported with the 1-based entry number.
func Parse(r io.Reader) ([]Entry, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f file
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("seed: decoding: %w", err)
	}

	for i, e := range f.Questions {
		if strings.TrimSpace(e.Question) == "" {
			return nil, fmt.Errorf("seed: entry %d: question is required", i+1)
		}
		if strings.TrimSpace(e.Answer) == "" {
			return nil, fmt.Errorf("seed: entry %d (%q): answer is required", i+1, e.Question)
		}
	}
	return f.Questions, nil
}

// LoadFile reads and parses the seed file at path.
func LoadFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("seed: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// Apply stores every entry that is not already known. It stops at the first store
// error; entries before it stay applied.
func Apply(ctx context.Context, store Store, entries []Entry, logger *slog.Logger) (Result, error) {
	var res Result
	for i, e := range entries {
		q, created, err := store.CreateIfAbsent(ctx, e.Question, e.Answer)
		if err != nil {
			return res, fmt.Errorf("seed: entry %d (%q): %w", i+1, e.Question, err)
		}
		if created {
			res.Added++
			continue
		}
		res.Skipped++
		logger.Debug("seed entry already stored", slog.Int64("id", q.ID))
	}

	logger.Info("seed applied", slog.Int("added", res.Added), slog.Int("skipped", res.Skipped))
	return res, nil
}

// ApplyFile is LoadFile followed by Apply.
func ApplyFile(ctx context.Context, store Store, path string, logger *slog.Logger) (Result, error) {
	entries, err := LoadFile(path)
	if err != nil {
		return Result{}, err
	}
	return Apply(ctx, store, entries, logger)
}
