package repo

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/noah-isme/backend-jewelry/internal/common"
	"github.com/noah-isme/backend-jewelry/internal/db"
	"github.com/noah-isme/backend-jewelry/internal/tenant"
)

var (
	// ErrTenantMissing indicates the tenant identifier was not found in context.
	ErrTenantMissing = errors.New("tenant missing")
	// ErrTenantInvalid indicates the tenant identifier could not be parsed.
	ErrTenantInvalid = errors.New("tenant invalid")
	// ErrInvalidID indicates a resource identifier could not be parsed.
	ErrInvalidID = errors.New("invalid id")
)

func tenantUUIDFromContext(ctx context.Context) (pgtype.UUID, error) {
	tenantID, ok := tenant.From(ctx)
	if !ok {
		return pgtype.UUID{}, ErrTenantMissing
	}
	tid, err := db.ParseUUID(tenantID)
	if err != nil {
		return pgtype.UUID{}, fmt.Errorf("%w: %v", ErrTenantInvalid, err)
	}
	return tid, nil
}

func idValue(id string) (pgtype.UUID, error) {
	parsed, err := db.ParseUUID(id)
	if err != nil {
		return pgtype.UUID{}, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return parsed, nil
}

// Classify maps repository and database errors to application errors.
func Classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrTenantMissing):
		return common.NewAppError("TENANT_REQUIRED", "tenant is required", http.StatusBadRequest, err)
	case errors.Is(err, ErrTenantInvalid):
		return common.NewAppError("TENANT_INVALID", "tenant is invalid", http.StatusBadRequest, err)
	case errors.Is(err, ErrInvalidID):
		return common.NewAppError("INVALID_ID", "identifier is invalid", http.StatusBadRequest, err)
	default:
		return db.Classify(err)
	}
}
