package invoice

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/backend-jewelry/internal/common"
)

// Handler exposes invoice calculation endpoints.
type Handler struct {
	service  *Service
	validate *validator.Validate
}

// HandlerConfig configures the Handler dependencies.
type HandlerConfig struct {
	Service   *Service
	Validator *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(cfg HandlerConfig) *Handler {
	v := cfg.Validator
	if v == nil {
		v = validator.New(validator.WithRequiredStructEnabled())
	}
	return &Handler{service: cfg.Service, validate: v}
}

// Calculate handles POST /api/v1/invoices/calculate.
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "invoice service not configured", nil)
		return
	}
	var req DraftRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	if err := common.Validate(h.validate, req); err != nil {
		common.WriteError(w, err)
		return
	}
	result, err := h.service.CalculateDraft(r.Context(), req)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": result})
}

// Summary handles GET /api/v1/invoices/{id}/summary.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "invoice service not configured", nil)
		return
	}
	summary, err := h.service.Summarize(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": summary})
}

// GoldWeight handles GET /api/v1/gold/weight?amount=&rate=.
func (h *Handler) GoldWeight(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "invoice service not configured", nil)
		return
	}
	q := r.URL.Query()
	if q.Get("amount") == "" {
		common.JSONError(w, http.StatusBadRequest, "AMOUNT_REQUIRED", "amount query parameter is required", nil)
		return
	}
	result, err := h.service.GoldWeight(r.Context(), q.Get("amount"), q.Get("rate"))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": result})
}
