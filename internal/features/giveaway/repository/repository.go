package repository

import (
	"context"
	"errors"

	"giveaway-bot-backend/internal/features/giveaway/models"
)

var ErrTenantNotFound = errors.New("tenant not found")

// TenantRepository persists full tenant snapshots. SaveTenant must be atomic:
// a crash mid-write never leaves a partially written, unreadable record.
type TenantRepository interface {
	// MigrateIfNeeded upgrades an older on-disk representation losslessly.
	// Called once before LoadAll at startup.
	MigrateIfNeeded(ctx context.Context) error

	// LoadAll returns every persisted tenant keyed by ID.
	LoadAll(ctx context.Context) (map[int64]*models.Tenant, error)

	// SaveTenant atomically replaces the tenant's persisted snapshot.
	SaveTenant(ctx context.Context, tenant *models.Tenant) error

	// DeleteTenant removes a tenant's snapshot entirely.
	DeleteTenant(ctx context.Context, tenantID int64) error
}
