package report

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-jewelry/internal/common"
	"github.com/noah-isme/backend-jewelry/internal/obs"
	"github.com/noah-isme/backend-jewelry/internal/scheme"
	"github.com/noah-isme/backend-jewelry/internal/tenant"
)

// Forecaster produces the report contents.
type Forecaster interface {
	Forecast(ctx context.Context, q scheme.Query) (scheme.Report, error)
}

// Link is a published report.
type Link struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Handler exports maturity forecasts. Without a Store the workbook is
// streamed back as an attachment.
type Handler struct {
	Forecaster Forecaster
	Store      ObjectStore
	URLTTL     time.Duration
	Now        func() time.Time
	Logger     zerolog.Logger
}

// ExportForecast handles GET /api/v1/schemes/maturity-forecast/export.
func (h *Handler) ExportForecast(w http.ResponseWriter, r *http.Request) {
	if h.Forecaster == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "forecaster not configured", nil)
		return
	}
	q, err := scheme.ParseQuery(r)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	ctx := r.Context()
	rep, err := h.Forecaster.Forecast(ctx, q)
	if err != nil {
		obs.CountReportExport("error")
		common.WriteError(w, err)
		return
	}
	data, err := RenderForecast(rep)
	if err != nil {
		obs.CountReportExport("error")
		h.Logger.Error().Ctx(ctx).Err(err).Msg("render_forecast_failed")
		common.JSONError(w, http.StatusInternalServerError, "REPORT_RENDER_FAILED", "could not render report", nil)
		return
	}

	now := h.now()
	name := fmt.Sprintf("maturity-forecast-%s-%dm.xlsx", now.Format("20060102-150405"), rep.Months)
	if h.Store == nil {
		obs.CountReportExport("streamed")
		w.Header().Set("Content-Type", ContentTypeXLSX)
		w.Header().Set("Content-Disposition", "attachment; filename="+strconv.Quote(name))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	tenantID, _ := tenant.From(ctx)
	key := tenantID + "/forecasts/" + name
	if err := h.Store.Put(ctx, key, data, ContentTypeXLSX); err != nil {
		obs.CountReportExport("error")
		h.Logger.Error().Ctx(ctx).Err(err).Str("key", key).Msg("upload_report_failed")
		common.JSONError(w, http.StatusBadGateway, "REPORT_UPLOAD_FAILED", "could not store report", nil)
		return
	}
	ttl := h.URLTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	url, err := h.Store.PresignedURL(ctx, key, ttl)
	if err != nil {
		obs.CountReportExport("error")
		h.Logger.Error().Ctx(ctx).Err(err).Str("key", key).Msg("presign_report_failed")
		common.JSONError(w, http.StatusBadGateway, "REPORT_UPLOAD_FAILED", "could not sign report link", nil)
		return
	}
	obs.CountReportExport("uploaded")
	common.JSON(w, http.StatusCreated, map[string]any{"data": Link{Key: key, URL: url, ExpiresAt: now.Add(ttl)}})
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}
