package repo

import (
	"context"
	"time"

	"github.com/noah-isme/backend-jewelry/internal/db"
)

// SchemesTenantQuerier defines the queries used by SchemesTenantRepo.
type SchemesTenantQuerier interface {
	ListMaturingEnrollments(ctx context.Context, arg db.ListMaturingEnrollmentsParams) ([]db.ListMaturingEnrollmentsRow, error)
}

// SchemesTenantRepo scopes scheme enrollment reads to the tenant in context.
type SchemesTenantRepo struct {
	Q SchemesTenantQuerier
}

// Maturing returns active enrollments maturing between from and to inclusive.
func (r SchemesTenantRepo) Maturing(ctx context.Context, from, to time.Time) ([]db.ListMaturingEnrollmentsRow, error) {
	tid, err := tenantUUIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return r.Q.ListMaturingEnrollments(ctx, db.ListMaturingEnrollmentsParams{
		TenantID: tid,
		FromDate: db.Date(from),
		ToDate:   db.Date(to),
	})
}
