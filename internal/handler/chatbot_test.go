package handler_test

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/faq-chatbot/internal/handler"
	"github.com/sakif/faq-chatbot/internal/model"
	"github.com/sakif/faq-chatbot/internal/service"
)

func TestChatbotHandler_Status(t *testing.T) {
	env := newTestEnv(t, nil, service.SourceStore)
	h := handler.NewChatbotHandler(env.lookup, env.questions, env.logger)

	rr := serve(http.MethodGet, "/chatbot", h.HandleStatus, "/chatbot", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "L'API Chatbot est en ligne 🚀", decode[handler.MessageResponse](t, rr).Message)
}

func TestChatbotHandler_Ask(t *testing.T) {
	env := newTestEnv(t, nil, service.SourceStore)
	env.seed(t, "What is your name?", "I am a chatbot.")
	h := handler.NewChatbotHandler(env.lookup, env.questions, env.logger)

	t.Run("hit is case-insensitive", func(t *testing.T) {
		rr := serve(http.MethodPost, "/chatbot", h.HandleAsk, "/chatbot", `{"question":"what is your name?"}`)

		require.Equal(t, http.StatusOK, rr.Code)
		got := decode[handler.AnswerResponse](t, rr)
		assert.Equal(t, "I am a chatbot.", got.Response)
		assert.Equal(t, "What is your name?", got.Question)
	})

	t.Run("miss returns the sentinel and stores nothing", func(t *testing.T) {
		rr := serve(http.MethodPost, "/chatbot", h.HandleAsk, "/chatbot", `{"question":"unknown question"}`)

		require.Equal(t, http.StatusOK, rr.Code)
		got := decode[handler.AnswerResponse](t, rr)
		assert.Equal(t, service.SentinelAnswer, got.Response)
		assert.Empty(t, got.Question)

		all, err := env.questions.List(context.Background(), 0, 0)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("blank question", func(t *testing.T) {
		rr := serve(http.MethodPost, "/chatbot", h.HandleAsk, "/chatbot", `{"question":"   "}`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "validation_error", decodeError(t, rr).Error)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		rr := serve(http.MethodPost, "/chatbot", h.HandleAsk, "/chatbot", `{"question":`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "body", decodeError(t, rr).Field)
	})
}

func TestChatbotHandler_Classify(t *testing.T) {
	t.Run("configured", func(t *testing.T) {
		env := newTestEnv(t, stubClassifier{reply: "Catégorie : c\nRéponse : r\nConfiance : 0.90"}, service.SourceStore)
		h := handler.NewChatbotHandler(env.lookup, env.questions, env.logger)

		rr := serve(http.MethodPost, "/chatbot/nlp", h.HandleClassify, "/chatbot/nlp", `{"question":"q"}`)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "Catégorie : c\nRéponse : r\nConfiance : 0.90", decode[handler.AnswerResponse](t, rr).Response)
	})

	t.Run("disabled", func(t *testing.T) {
		env := newTestEnv(t, nil, service.SourceStore)
		h := handler.NewChatbotHandler(env.lookup, env.questions, env.logger)

		rr := serve(http.MethodPost, "/chatbot/nlp", h.HandleClassify, "/chatbot/nlp", `{"question":"q"}`)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, service.ClassifierDisabledAnswer, decode[handler.AnswerResponse](t, rr).Response)
	})
}

func TestChatbotHandler_Add(t *testing.T) {
	env := newTestEnv(t, nil, service.SourceStore)
	h := handler.NewChatbotHandler(env.lookup, env.questions, env.logger)

	rr := serve(http.MethodPost, "/chatbot/add", h.HandleAdd, "/chatbot/add",
		`{"questionText":"Hours?","answerText":"9 to 5"}`)

	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "Question ajoutée avec succès !", decode[handler.MessageResponse](t, rr).Message)

	rr = serve(http.MethodGet, "/chatbot/questions", h.HandleList, "/chatbot/questions", "")
	require.Equal(t, http.StatusOK, rr.Code)
	list := decode[[]model.Question](t, rr)
	require.Len(t, list, 1)
	assert.Equal(t, "Hours?", list[0].QuestionText)
	assert.Nil(t, list[0].OwnerID)
}

// Field names are matched case-insensitively by encoding/json, so the lower-case
// keys sent by the chat widget front end are accepted too.
func TestChatbotHandler_AddLowercaseKeys(t *testing.T) {
	env := newTestEnv(t, nil, service.SourceStore)
	h := handler.NewChatbotHandler(env.lookup, env.questions, env.logger)

	rr := serve(http.MethodPost, "/chatbot/add", h.HandleAdd, "/chatbot/add",
		`{"questiontext":"Hours?","answertext":"9 to 5"}`)

	assert.Equal(t, http.StatusCreated, rr.Code)
}

func TestChatbotHandler_AddValidation(t *testing.T) {
	env := newTestEnv(t, nil, service.SourceStore)
	h := handler.NewChatbotHandler(env.lookup, env.questions, env.logger)

	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"missing answer", `{"questionText":"q"}`, "answerText"},
		{"empty question", `{"questionText":"","answerText":"a"}`, "questionText"},
		{"too long", `{"questionText":"` + strings.Repeat("x", model.MaxTextLength+1) + `","answerText":"a"}`, "questionText"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := serve(http.MethodPost, "/chatbot/add", h.HandleAdd, "/chatbot/add", tt.body)

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, tt.field, decodeError(t, rr).Field)
		})
	}

	all, err := env.questions.List(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Empty(t, all, "rejected input must not be stored")
}

func TestChatbotHandler_ListPagination(t *testing.T) {
	env := newTestEnv(t, nil, service.SourceStore)
	for _, text := range []string{"a", "b", "c"} {
		env.seed(t, text, "x")
	}
	h := handler.NewChatbotHandler(env.lookup, env.questions, env.logger)

	rr := serve(http.MethodGet, "/chatbot/questions", h.HandleList, "/chatbot/questions?limit=1&offset=1", "")

	require.Equal(t, http.StatusOK, rr.Code)
	list := decode[[]model.Question](t, rr)
	require.Len(t, list, 1)
	assert.Equal(t, "b", list[0].QuestionText)
}
