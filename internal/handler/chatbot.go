package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/faq-chatbot/internal/service"
)

const (
	statusMessage = "L'API Chatbot est en ligne 🚀"
	addedMessage  = "Question ajoutée avec succès !"
)

// ChatbotHandler serves the public /chatbot endpoints used by the chat widget.
type ChatbotHandler struct {
	lookup    *service.LookupService
	questions *service.QuestionService
	logger    *slog.Logger
}

func NewChatbotHandler(lookup *service.LookupService, questions *service.QuestionService, logger *slog.Logger) *ChatbotHandler {
	return &ChatbotHandler{
		lookup:    lookup,
		questions: questions,
		logger:    logger,
	}
}

// AskRequest is the body of every "ask a question" endpoint: {"question": "..."}.
type AskRequest struct {
	Question string `json:"question"`
}

// AnswerResponse is what the chat widget displays. Question echoes the stored
// question on a hit and is omitted otherwise.
type AnswerResponse struct {
	Question string `json:"question,omitempty"`
	Response string `json:"response"`
}

// QuestionRequest is the body for creating or updating a record. Pointers tell
// "field absent" (keep the current value on update) from "field empty" (rejected).
type QuestionRequest struct {
	QuestionText *string `json:"questionText"`
	AnswerText   *string `json:"answerText"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func toAnswerResponse(res *service.AnswerResult) AnswerResponse {
	return AnswerResponse{Question: res.Question, Response: res.Response}
}

// HandleStatus is the liveness probe of the chatbot API.
//
// HTTP: GET /chatbot
func (h *ChatbotHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	h.logger.Debug("chatbot status requested")
	writeMessage(w, http.StatusOK, statusMessage)
}

// HandleAsk answers a question without storing anything.
//
// HTTP: POST /chatbot
// REQUEST BODY: {"question": "What is your name?"}
func (h *ChatbotHandler) HandleAsk(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	res, err := h.lookup.Answer(r.Context(), req.Question)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAnswerResponse(res))
}

// HandleClassify forwards the question to the NLP service.
//
// HTTP: POST /chatbot/nlp
func (h *ChatbotHandler) HandleClassify(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	text, err := h.lookup.Classify(r.Context(), req.Question)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AnswerResponse{Response: text})
}

// HandleAdd stores a question/answer pair without an owner.
//
// HTTP: POST /chatbot/add
// REQUEST BODY: {"questionText": "...", "answerText": "..."}
func (h *ChatbotHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	var req QuestionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	if _, err := h.questions.Create(r.Context(), deref(req.QuestionText), deref(req.AnswerText), nil); err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, http.StatusCreated, addedMessage)
}

// HandleList returns every stored record in insertion order.
//
// HTTP: GET /chatbot/questions
func (h *ChatbotHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)
	questions, err := h.questions.List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, questions)
}
