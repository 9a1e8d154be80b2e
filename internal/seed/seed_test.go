package seed

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sqliteRepo "github.com/sakif/faq-chatbot/internal/repository/sqlite"
	"github.com/sakif/faq-chatbot/internal/service"
)

const sample = `
questions:
  - question: What is your name?
    answer: I am a chatbot.
  - question: Quels sont vos horaires ?
    answer: Du lundi au vendredi, de 9h à 18h.
`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newStore(t *testing.T) *service.QuestionService {
	t.Helper()
	db, err := sqliteRepo.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return service.NewQuestionService(db, testLogger())
}

func TestParse(t *testing.T) {
	got, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)

	want := []Entry{
		{Question: "What is your name?", Answer: "I am a chatbot."},
		{Question: "Quels sont vos horaires ?", Answer: "Du lundi au vendredi, de 9h à 18h."},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_Empty(t *testing.T) {
	got, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"missing answer", "questions:\n  - question: q\n", "entry 1"},
		{"blank question", "questions:\n  - question: ok\n    answer: a\n  - question: ' '\n    answer: a\n", "entry 2"},
		{"unknown key", "questions:\n  - question: q\n    answer: a\n    category: x\n", "category"},
		{"not yaml", "questions: [", "decoding"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestApply_Idempotent(t *testing.T) {
	store := newStore(t)
	entries, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)

	first, err := Apply(context.Background(), store, entries, testLogger())
	require.NoError(t, err)
	assert.Equal(t, Result{Added: 2}, first)

	second, err := Apply(context.Background(), store, entries, testLogger())
	require.NoError(t, err)
	assert.Equal(t, Result{Skipped: 2}, second)

	all, err := store.List(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestApply_StopsOnStoreError(t *testing.T) {
	store := newStore(t)
	entries := []Entry{
		{Question: "ok", Answer: "fine"},
		{Question: strings.Repeat("x", 501), Answer: "too long"},
		{Question: "never", Answer: "reached"},
	}

	res, err := Apply(context.Background(), store, entries, testLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "entry 2")
	assert.Equal(t, Result{Added: 1}, res)
}

func TestApplyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	res, err := ApplyFile(context.Background(), newStore(t), path, testLogger())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Added)

	_, err = ApplyFile(context.Background(), newStore(t), filepath.Join(t.TempDir(), "missing.yaml"), testLogger())
	assert.Error(t, err)
}
