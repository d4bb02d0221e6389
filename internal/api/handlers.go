package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"thirdvoice.ai/third-voice/internal/core"
	"thirdvoice.ai/third-voice/internal/logger"
)

const maxBodyBytes = 64 << 10

type Pinger interface {
	Ping(ctx context.Context) error
}

// Services groups what the handlers depend on.
type Services struct {
	Auth     *core.AuthService
	Contacts *core.ContactService
	Coach    *core.CoachService
	Insights *core.InsightsService
	Feedback *core.FeedbackService
	DB       Pinger
}

type APIHandler struct {
	auth     *core.AuthService
	contacts *core.ContactService
	coach    *core.CoachService
	insights *core.InsightsService
	feedback *core.FeedbackService
	db       Pinger
	log      *logger.Logger
}

func NewAPIHandler(svc Services, log *logger.Logger) *APIHandler {
	return &APIHandler{
		auth:     svc.Auth,
		contacts: svc.Contacts,
		coach:    svc.Coach,
		insights: svc.Insights,
		feedback: svc.Feedback,
		db:       svc.DB,
		log:      log.With("component", "api"),
	}
}

func (h *APIHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := toAPIError(err)
	if apiErr.Status >= 500 {
		h.log.Error("Request error", "path", r.URL.Path, "request_id", middleware.GetReqID(r.Context()), "error", err)
	}
	respondError(w, apiErr)
}

func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return NewError(http.StatusBadRequest, "invalid_body", errors.New("invalid request body: "+err.Error()))
	}
	return nil
}

func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		if err := h.db.Ping(r.Context()); err != nil {
			h.log.Error("Health check failed", "error", err)
			respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *APIHandler) SignupHandler(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	user, err := h.auth.SignUp(r.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, user)
}

func (h *APIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if req.Email == "" || req.Password == "" {
		h.fail(w, r, NewError(http.StatusBadRequest, "invalid_request", errors.New("email and password are required")))
		return
	}
	res, err := h.auth.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

func (h *APIHandler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.SignOut(r.Context(), sessionFrom(r.Context()).ID); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) SessionHandler(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"user":    userFrom(r.Context()),
		"session": sessionFrom(r.Context()),
	})
}

func (h *APIHandler) ContextsHandler(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"contexts": core.Contexts()})
}

type ContactRequest struct {
	Name    string `json:"name"`
	Context string `json:"context"`
}

func (h *APIHandler) ListContactsHandler(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.contacts.List(r.Context(), userFrom(r.Context()).ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, contacts)
}

func (h *APIHandler) CreateContactHandler(w http.ResponseWriter, r *http.Request) {
	var req ContactRequest
	if err := decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	contact, err := h.contacts.Create(r.Context(), userFrom(r.Context()).ID, req.Name, req.Context)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, contact)
}

func (h *APIHandler) GetContactHandler(w http.ResponseWriter, r *http.Request) {
	contact, err := h.contacts.Get(r.Context(), userFrom(r.Context()).ID, chi.URLParam(r, "contactID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, contact)
}

func (h *APIHandler) UpdateContactHandler(w http.ResponseWriter, r *http.Request) {
	var req ContactRequest
	if err := decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	contact, err := h.contacts.Update(r.Context(), userFrom(r.Context()).ID, chi.URLParam(r, "contactID"), req.Name, req.Context)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, contact)
}

func (h *APIHandler) DeleteContactHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.contacts.Delete(r.Context(), userFrom(r.Context()).ID, chi.URLParam(r, "contactID")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) ListMessagesHandler(w http.ResponseWriter, r *http.Request) {
	limit := core.HistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			h.fail(w, r, NewError(http.StatusBadRequest, "invalid_limit", errors.New("limit must be a positive integer")))
			return
		}
		limit = n
	}
	messages, err := h.contacts.History(r.Context(), userFrom(r.Context()).ID, chi.URLParam(r, "contactID"), limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, messages)
}

type MessageRequest struct {
	Message string `json:"message"`
}

func (h *APIHandler) ProcessMessageHandler(w http.ResponseWriter, r *http.Request) {
	var req MessageRequest
	if err := decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	res, err := h.coach.Process(r.Context(), userFrom(r.Context()).ID, chi.URLParam(r, "contactID"), req.Message)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

func (h *APIHandler) InterpretHandler(w http.ResponseWriter, r *http.Request) {
	var req MessageRequest
	if err := decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	res, err := h.coach.Interpret(r.Context(), userFrom(r.Context()).ID, chi.URLParam(r, "contactID"), req.Message)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

func (h *APIHandler) InsightsHandler(w http.ResponseWriter, r *http.Request) {
	res, err := h.insights.ForContact(r.Context(), userFrom(r.Context()).ID, chi.URLParam(r, "contactID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

func (h *APIHandler) PurgeCacheHandler(w http.ResponseWriter, r *http.Request) {
	n, err := h.coach.PurgeCache(r.Context(), userFrom(r.Context()).ID, chi.URLParam(r, "contactID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"deleted": n})
}

type FeedbackRequest struct {
	Rating         int    `json:"rating"`
	FeedbackText   string `json:"feedback_text"`
	FeatureContext string `json:"feature_context"`
}

func (h *APIHandler) FeedbackHandler(w http.ResponseWriter, r *http.Request) {
	var req FeedbackRequest
	if err := decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	fb, err := h.feedback.Submit(r.Context(), userFrom(r.Context()).ID, req.Rating, req.FeedbackText, req.FeatureContext)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, fb)
}

func (h *APIHandler) StatsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := h.insights.Stats(r.Context(), userFrom(r.Context()).ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}
