package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/faq-chatbot/internal/auth"
	"github.com/sakif/faq-chatbot/internal/service"
)

// AdminHandler serves the /admin API: question management and admin accounts.
//
// The router mounts it behind auth.RequireAuth when a JWT secret is configured, so
// AdminIDFromContext yields the caller. Without a secret the context carries no
// admin and new questions are stored without an owner.
type AdminHandler struct {
	questions *service.QuestionService
	admins    *service.AdminService
	logger    *slog.Logger
}

func NewAdminHandler(questions *service.QuestionService, admins *service.AdminService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		questions: questions,
		admins:    admins,
		logger:    logger,
	}
}

// AdminRequest is the body for creating or updating an admin. On update, absent
// fields keep their current value.
type AdminRequest struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
}

// =========================================================================
// QUESTIONS
// =========================================================================

// HandleCreateQuestion stores a new question owned by the caller.
//
// HTTP: POST /admin/questions
// REQUEST BODY: {"questionText": "...", "answerText": "..."}
func (h *AdminHandler) HandleCreateQuestion(w http.ResponseWriter, r *http.Request) {
	var req QuestionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	var owner *int64
	if id, ok := auth.AdminIDFromContext(r.Context()); ok {
		owner = &id
	}

	q, err := h.questions.Create(r.Context(), deref(req.QuestionText), deref(req.AnswerText), owner)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, q)
}

// HTTP: GET /admin/questions
func (h *AdminHandler) HandleListQuestions(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)
	questions, err := h.questions.List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, questions)
}

// HTTP: GET /admin/questions/{id}
func (h *AdminHandler) HandleGetQuestion(w http.ResponseWriter, r *http.Request) {
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

// HandleUpdateQuestion applies a partial update.
//
// HTTP: PUT /admin/questions/{id}
// REQUEST BODY: {"answerText": "..."} (either field may be omitted)
func (h *AdminHandler) HandleUpdateQuestion(w http.ResponseWriter, r *http.Request) {
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

// HTTP: DELETE /admin/questions/{id}
func (h *AdminHandler) HandleDeleteQuestion(w http.ResponseWriter, r *http.Request) {
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

// =========================================================================
// ADMINS
// =========================================================================

// HTTP: POST /admin/admins
// REQUEST BODY: {"username": "alice", "password": "at least 8 bytes"}
func (h *AdminHandler) HandleCreateAdmin(w http.ResponseWriter, r *http.Request) {
	var req AdminRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	a, err := h.admins.CreateAdmin(r.Context(), deref(req.Username), deref(req.Password))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

// HTTP: GET /admin/admins
func (h *AdminHandler) HandleListAdmins(w http.ResponseWriter, r *http.Request) {
	admins, err := h.admins.ListAdmins(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, admins)
}

// HTTP: GET /admin/admins/{id}
func (h *AdminHandler) HandleGetAdmin(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	a, err := h.admins.GetAdmin(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// HTTP: PUT /admin/admins/{id}
func (h *AdminHandler) HandleUpdateAdmin(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req AdminRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	a, err := h.admins.UpdateAdmin(r.Context(), id, req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// HandleDeleteAdmin removes an admin; their questions stay, unowned.
//
// HTTP: DELETE /admin/admins/{id}
func (h *AdminHandler) HandleDeleteAdmin(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.admins.DeleteAdmin(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HTTP: GET /admin/admins/{id}/questions
func (h *AdminHandler) HandleListAdminQuestions(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	questions, err := h.admins.ListQuestions(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, questions)
}
