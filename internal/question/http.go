package question

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/student-toolkit/internal/auth"
	"github.com/gokatarajesh/student-toolkit/internal/logging"
	httperrors "github.com/gokatarajesh/student-toolkit/pkg/http/errors"
)

// HTTPHandlers exposes question generation, answer checking and lookups.
type HTTPHandlers struct {
	generator *Generator
	evaluator *Evaluator
	store     QuestionStore
	logger    zerolog.Logger
}

// NewHTTPHandlers creates HTTP handlers for question endpoints.
func NewHTTPHandlers(generator *Generator, evaluator *Evaluator, store QuestionStore, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{
		generator: generator,
		evaluator: evaluator,
		store:     store,
		logger:    logger,
	}
}

// Generate handles POST /v1/questions/generate
func (h *HTTPHandlers) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}

	q, err := h.generator.Generate(r.Context(), req)
	if err != nil {
		h.respondFailure(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, q)
}

// CheckAnswer handles POST /v1/answers/check
func (h *HTTPHandlers) CheckAnswer(w http.ResponseWriter, r *http.Request) {
	email, ok := auth.EmailFromContext(r.Context())
	if !ok {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, "Unauthorized access")
		return
	}

	var req EvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}

	verdict, err := h.evaluator.Evaluate(r.Context(), email, req)
	if err != nil {
		h.respondFailure(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, verdict)
}

// GetQuestion handles GET /v1/questions/{id}
func (h *HTTPHandlers) GetQuestion(w http.ResponseWriter, r *http.Request) {
	q, err := Lookup(r.Context(), h.store, r.PathValue("id"))
	if err != nil {
		h.respondFailure(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, q)
}

// Random handles GET /v1/questions/random
func (h *HTTPHandlers) Random(w http.ResponseWriter, r *http.Request) {
	q, err := Random(r.Context(), h.store)
	if err != nil {
		h.respondFailure(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, q)
}

// respondFailure maps an engine error onto the HTTP error envelope.
func (h *HTTPHandlers) respondFailure(w http.ResponseWriter, r *http.Request, err error) {
	logger := logging.FromContext(r.Context(), h.logger)

	if IsUpstream(err) {
		logger.Warn().Err(err).Str("path", r.URL.Path).Msg("upstream failure")
		httperrors.RespondBadGateway(w, httperrors.ErrCodeUpstreamError, Message(err))
		return
	}

	switch KindOf(err) {
	case InvalidArgument:
		code := httperrors.ErrCodeInvalidRequest
		switch {
		case errors.Is(err, ErrMissingField):
			code = httperrors.ErrCodeMissingField
		case errors.Is(err, ErrInvalidOption):
			code = httperrors.ErrCodeInvalidOption
		}
		if field := FieldOf(err); field != "" {
			httperrors.RespondValidationError(w, code, Message(err), field)
			return
		}
		httperrors.RespondBadRequest(w, code, Message(err))
	case NotFound:
		httperrors.RespondNotFound(w, httperrors.ErrCodeQuestionNotFound, Message(err))
	default:
		logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		httperrors.RespondInternalError(w, "Something went wrong")
	}
}

func (h *HTTPHandlers) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error().Err(err).Msg("failed to encode JSON response")
	}
}
