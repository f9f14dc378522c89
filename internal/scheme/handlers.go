package scheme

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/noah-isme/backend-jewelry/internal/common"
	"github.com/noah-isme/backend-jewelry/internal/pricing"
)

// Handler exposes scheme forecasting endpoints.
type Handler struct {
	Service *Service
}

// MaturityForecast handles GET /api/v1/schemes/maturity-forecast?months=&rate=.
func (h *Handler) MaturityForecast(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "scheme service not configured", nil)
		return
	}
	q, err := ParseQuery(r)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	report, err := h.Service.Forecast(r.Context(), q)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": report})
}

// ParseQuery reads months and rate from the query string. Months must be a
// whole number between 1 and MaxHorizonMonths when present.
func ParseQuery(r *http.Request) (Query, error) {
	values := r.URL.Query()
	var q Query
	if raw := strings.TrimSpace(values.Get("months")); raw != "" {
		months, err := strconv.Atoi(raw)
		if err != nil || months < 1 || months > MaxHorizonMonths {
			return Query{}, common.NewAppError("INVALID_MONTHS", "months must be between 1 and "+strconv.Itoa(MaxHorizonMonths), http.StatusBadRequest, err)
		}
		q.Months = months
	}
	q.Rate = pricing.NonNegative(pricing.SafeNumber(values.Get("rate")))
	return q, nil
}
