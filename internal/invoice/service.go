// Package invoice prices draft and persisted invoices for the tenant in
// context.
package invoice

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-jewelry/internal/common"
	"github.com/noah-isme/backend-jewelry/internal/db"
	"github.com/noah-isme/backend-jewelry/internal/loyalty"
	"github.com/noah-isme/backend-jewelry/internal/obs"
	"github.com/noah-isme/backend-jewelry/internal/pricing"
	"github.com/noah-isme/backend-jewelry/internal/repo"
)

// ErrInsufficientPoints is returned when a customer asks to redeem more
// points than they hold.
var ErrInsufficientPoints = errors.New("invoice: insufficient loyalty points")

type settingsReader interface {
	Shop(ctx context.Context) (db.ShopSetting, error)
	Loyalty(ctx context.Context) (db.LoyaltySetting, error)
}

type invoiceReader interface {
	Get(ctx context.Context, id string) (db.Invoice, error)
	Items(ctx context.Context, invoiceID string) ([]db.InvoiceItem, error)
	CustomerPoints(ctx context.Context, customerID string) (int64, error)
}

// Service loads shop configuration and runs the pricing engine.
type Service struct {
	settings    settingsReader
	invoices    invoiceReader
	defaultSGST decimal.Decimal
	defaultCGST decimal.Decimal
	logger      zerolog.Logger
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Settings    settingsReader
	Invoices    invoiceReader
	DefaultSGST decimal.Decimal
	DefaultCGST decimal.Decimal
	Logger      zerolog.Logger
}

// NewService constructs a Service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		settings:    cfg.Settings,
		invoices:    cfg.Invoices,
		defaultSGST: cfg.DefaultSGST,
		defaultCGST: cfg.DefaultCGST,
		logger:      obs.Component(cfg.Logger, "invoice"),
	}
}

// DraftItem is a line as typed into the billing form. Values may be numbers,
// numeric strings, blank or null.
type DraftItem struct {
	Description string `json:"description" validate:"max=200"`
	NetWeight   any    `json:"netWeight"`
	Rate        any    `json:"rate"`
	MakingRate  any    `json:"makingRate"`
	StoneAmount any    `json:"stoneAmount"`
}

// DraftRequest is an unsaved invoice. Missing GST percentages fall back to the
// shop's configuration and then to the service defaults.
type DraftRequest struct {
	Items          []DraftItem `json:"items" validate:"max=500,dive"`
	CustomerID     string      `json:"customerId" validate:"omitempty,uuid"`
	SGSTPercent    any         `json:"sgstPercent"`
	CGSTPercent    any         `json:"cgstPercent"`
	CashDiscount   any         `json:"cashDiscount"`
	RedeemPoints   bool        `json:"redeemPoints"`
	PointsToRedeem any         `json:"pointsToRedeem"`
}

// Summary is a persisted invoice priced with current shop settings.
type Summary struct {
	InvoiceID     string         `json:"invoiceId"`
	InvoiceNumber string         `json:"invoiceNumber"`
	Status        string         `json:"status"`
	ItemCount     int            `json:"itemCount"`
	Totals        pricing.Result `json:"totals"`
}

// WeightResult is the outcome of converting an amount into grams of gold.
type WeightResult struct {
	Amount      decimal.Decimal `json:"amount"`
	RatePerGram decimal.Decimal `json:"ratePerGram"`
	Grams       decimal.Decimal `json:"grams"`
}

type shopContext struct {
	goldRate decimal.Decimal
	sgst     decimal.Decimal
	cgst     decimal.Decimal
	loyalty  loyalty.Option
}

// CalculateDraft prices an unsaved invoice.
func (s *Service) CalculateDraft(ctx context.Context, req DraftRequest) (pricing.Result, error) {
	shop, err := s.loadShop(ctx)
	if err != nil {
		return pricing.Result{}, err
	}
	points := pricing.NonNegative(pricing.SafeNumber(req.PointsToRedeem))
	if req.RedeemPoints && req.CustomerID != "" && points.IsPositive() {
		if err := s.checkBalance(ctx, req.CustomerID, points); err != nil {
			return pricing.Result{}, err
		}
	}

	items := make([]pricing.LineItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, pricing.NewLineItem(it.NetWeight, it.Rate, it.MakingRate, it.StoneAmount))
	}
	in := pricing.Input{
		Items:          items,
		FallbackRate:   shop.goldRate,
		SGSTPercent:    percentOr(req.SGSTPercent, shop.sgst),
		CGSTPercent:    percentOr(req.CGSTPercent, shop.cgst),
		CashDiscount:   pricing.SafeNumber(req.CashDiscount),
		RedeemPoints:   req.RedeemPoints,
		PointsToRedeem: points,
		Loyalty:        shop.loyalty,
	}
	result := pricing.Calculate(in)
	obs.CountInvoiceCalculation("draft")
	s.logger.Debug().Ctx(ctx).Int("items", len(items)).Str("grand_total", result.GrandTotal.String()).Msg("draft_invoice_calculated")
	return result, nil
}

// Summarize loads a persisted invoice with its lines and prices it.
func (s *Service) Summarize(ctx context.Context, invoiceID string) (Summary, error) {
	inv, err := s.invoices.Get(ctx, invoiceID)
	if err != nil {
		return Summary{}, repo.Classify(err)
	}
	rows, err := s.invoices.Items(ctx, invoiceID)
	if err != nil {
		return Summary{}, repo.Classify(err)
	}
	shop, err := s.loadShop(ctx)
	if err != nil {
		return Summary{}, err
	}

	in := pricing.Input{
		Items:          LineItemsFromRows(rows),
		FallbackRate:   shop.goldRate,
		SGSTPercent:    numericOr(inv.SgstPercent, shop.sgst),
		CGSTPercent:    numericOr(inv.CgstPercent, shop.cgst),
		CashDiscount:   db.NumericToDecimal(inv.CashDiscount),
		RedeemPoints:   inv.RedeemPoints,
		PointsToRedeem: decimal.NewFromInt(inv.PointsRedeemed),
		Loyalty:        shop.loyalty,
	}
	result := pricing.Calculate(in)
	obs.CountInvoiceCalculation("stored")
	return Summary{
		InvoiceID:     db.UUIDString(inv.ID),
		InvoiceNumber: inv.InvoiceNumber,
		Status:        inv.Status,
		ItemCount:     len(rows),
		Totals:        result,
	}, nil
}

// GoldWeight converts amount into grams at rate, or at the shop's current
// gold rate when rate is missing or not positive.
func (s *Service) GoldWeight(ctx context.Context, amount, rate any) (WeightResult, error) {
	perGram := pricing.SafeNumber(rate)
	if !perGram.IsPositive() {
		shop, err := s.loadShop(ctx)
		if err != nil {
			return WeightResult{}, err
		}
		perGram = shop.goldRate
	}
	value := pricing.SafeNumber(amount)
	return WeightResult{
		Amount:      value,
		RatePerGram: perGram,
		Grams:       pricing.GoldWeight(value, perGram),
	}, nil
}

func (s *Service) checkBalance(ctx context.Context, customerID string, requested decimal.Decimal) error {
	balance, err := s.invoices.CustomerPoints(ctx, customerID)
	if err != nil {
		return repo.Classify(err)
	}
	if requested.GreaterThan(decimal.NewFromInt(balance)) {
		return &common.AppError{
			Code:       "INSUFFICIENT_POINTS",
			Message:    "customer does not hold enough loyalty points",
			HTTPStatus: http.StatusUnprocessableEntity,
			Err:        fmt.Errorf("%w: requested %s, available %d", ErrInsufficientPoints, requested, balance),
			Details:    map[string]any{"requested": requested, "available": balance},
		}
	}
	return nil
}

// loadShop reads the tenant's settings. A shop without a settings row prices
// with no fallback rate and the default GST split; a shop without an active
// loyalty programme neither redeems nor earns.
func (s *Service) loadShop(ctx context.Context) (shopContext, error) {
	out := shopContext{sgst: s.defaultSGST, cgst: s.defaultCGST, loyalty: loyalty.None()}

	shop, err := s.settings.Shop(ctx)
	switch {
	case err == nil:
		out.goldRate = pricing.NonNegative(db.NumericToDecimal(shop.GoldRate))
		out.sgst = numericOr(shop.SgstPercent, out.sgst)
		out.cgst = numericOr(shop.CgstPercent, out.cgst)
	case db.IsNotFound(err):
	default:
		return shopContext{}, repo.Classify(err)
	}

	ls, err := s.settings.Loyalty(ctx)
	switch {
	case err == nil:
		out.loyalty = LoyaltyFromRow(ls)
	case db.IsNotFound(err):
	default:
		return shopContext{}, repo.Classify(err)
	}
	return out, nil
}

func percentOr(raw any, fallback decimal.Decimal) decimal.Decimal {
	if raw == nil {
		return fallback
	}
	if s, ok := raw.(string); ok && s == "" {
		return fallback
	}
	return pricing.SafeNumber(raw)
}

func numericOr(n pgtype.Numeric, fallback decimal.Decimal) decimal.Decimal {
	if !n.Valid || n.NaN {
		return fallback
	}
	return pricing.NonNegative(db.NumericToDecimal(n))
}
