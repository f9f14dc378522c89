package loan

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/backend-jewelry/internal/common"
	"github.com/noah-isme/backend-jewelry/internal/pricing"
)

// Handler exposes gold-loan endpoints.
type Handler struct {
	Service  *Service
	Validate *validator.Validate
}

type paymentRequest struct {
	Amount any    `json:"amount" validate:"required"`
	Mode   string `json:"mode" validate:"required,oneof=CASH UPI CARD BANK_TRANSFER CHEQUE"`
	Notes  string `json:"notes" validate:"max=500"`
}

// AddPayment handles POST /api/v1/loans/{id}/payments.
func (h *Handler) AddPayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	if err := common.Validate(h.Validate, req); err != nil {
		common.WriteError(w, err)
		return
	}
	actor, _ := common.UserID(r.Context())
	out, err := h.Service.AddPayment(r.Context(), chi.URLParam(r, "id"), Payment{
		Amount: pricing.SafeNumber(req.Amount).Round(2),
		Mode:   req.Mode,
		Notes:  req.Notes,
	}, actor)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": out})
}

// Close handles POST /api/v1/loans/{id}/close.
func (h *Handler) Close(w http.ResponseWriter, r *http.Request) {
	actor, _ := common.UserID(r.Context())
	out, err := h.Service.Close(r.Context(), chi.URLParam(r, "id"), actor)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": out})
}
