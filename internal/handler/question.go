package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/faq-chatbot/internal/service"
)

const controllerOKMessage = "Le contrôleur fonctionne !"

// QuestionHandler serves the /api/questions family used by the chat widget
// front end. Unlike /chatbot, its chatbot endpoint records unanswered questions.
type QuestionHandler struct {
	questions *service.QuestionService
	lookup    *service.LookupService
	logger    *slog.Logger
}

func NewQuestionHandler(questions *service.QuestionService, lookup *service.LookupService, logger *slog.Logger) *QuestionHandler {
	return &QuestionHandler{
		questions: questions,
		lookup:    lookup,
		logger:    logger,
	}
}

// HTTP: GET /api/questions
func (h *QuestionHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)
	questions, err := h.questions.List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, questions)
}

// HandleCreate returns the first stored record matching the question text, or
// stores a new one. Both cases answer 200 with the record.
//
// HTTP: POST /api/questions
// REQUEST BODY: {"questionText": "...", "answerText": ""}
func (h *QuestionHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req QuestionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	q, created, err := h.questions.CreateIfAbsent(r.Context(), deref(req.QuestionText), deref(req.AnswerText))
	if err != nil {
		writeError(w, err)
		return
	}

	h.logger.Debug("create-if-absent", slog.Int64("id", q.ID), slog.Bool("created", created))
	writeJSON(w, http.StatusOK, q)
}

// HTTP: GET /api/questions/{id}
func (h *QuestionHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	q, err := h.questions.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

// HTTP: PUT /api/questions/{id}
func (h *QuestionHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req QuestionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	q, err := h.questions.Update(r.Context(), id, req.QuestionText, req.AnswerText)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

// HTTP: DELETE /api/questions/{id}
func (h *QuestionHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.questions.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleChatbot answers from the store and records unknown questions with a
// placeholder answer for an admin to fill in.
//
// HTTP: POST /api/questions/chatbot
// REQUEST BODY: {"question": "..."}
func (h *QuestionHandler) HandleChatbot(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	res, err := h.lookup.AnswerOrRecord(r.Context(), req.Question)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAnswerResponse(res))
}

// HTTP: GET /api/questions/test
func (h *QuestionHandler) HandleTest(w http.ResponseWriter, r *http.Request) {
	writeMessage(w, http.StatusOK, controllerOKMessage)
}
