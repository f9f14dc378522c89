package repo

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/noah-isme/backend-jewelry/internal/db"
)

// SettingsTenantQuerier defines the queries used by SettingsTenantRepo.
type SettingsTenantQuerier interface {
	GetShopSettings(ctx context.Context, tenantID pgtype.UUID) (db.ShopSetting, error)
	GetLoyaltySettings(ctx context.Context, tenantID pgtype.UUID) (db.LoyaltySetting, error)
}

// SettingsTenantRepo reads per-shop configuration for the tenant in context.
type SettingsTenantRepo struct {
	Q SettingsTenantQuerier
}

// Shop returns the tenant's gold rate and GST configuration.
func (r SettingsTenantRepo) Shop(ctx context.Context) (db.ShopSetting, error) {
	tid, err := tenantUUIDFromContext(ctx)
	if err != nil {
		return db.ShopSetting{}, err
	}
	return r.Q.GetShopSettings(ctx, tid)
}

// Loyalty returns the tenant's active loyalty programme.
func (r SettingsTenantRepo) Loyalty(ctx context.Context) (db.LoyaltySetting, error) {
	tid, err := tenantUUIDFromContext(ctx)
	if err != nil {
		return db.LoyaltySetting{}, err
	}
	return r.Q.GetLoyaltySettings(ctx, tid)
}
