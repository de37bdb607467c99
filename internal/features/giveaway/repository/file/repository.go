// Package file implements the tenant snapshot store on the local filesystem.
// Each tenant is one JSON document written with a temp-file-then-rename
// discipline so a crash mid-write leaves the previous snapshot intact.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"giveaway-bot-backend/internal/features/giveaway/models"
	"giveaway-bot-backend/internal/features/giveaway/repository"
)

const (
	snapshotVersion  = 2
	tenantFilePrefix = "tenant_"
	tenantFileSuffix = ".json"
	legacyStateFile  = "state.json"
)

// envelope wraps a tenant snapshot with a schema version for future upgrades.
type envelope struct {
	Version int            `json:"version"`
	Tenant  *models.Tenant `json:"tenant"`
}

// legacyState is the pre-split layout: every tenant in a single document.
type legacyState struct {
	Tenants map[string]*models.Tenant `json:"tenants"`
}

type fileRepository struct {
	dir string
}

func NewFileTenantRepository(dir string) (repository.TenantRepository, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", dir, err)
	}
	return &fileRepository{dir: dir}, nil
}

func (r *fileRepository) tenantPath(tenantID int64) string {
	return filepath.Join(r.dir, fmt.Sprintf("%s%d%s", tenantFilePrefix, tenantID, tenantFileSuffix))
}

// MigrateIfNeeded splits a legacy single-file state document into per-tenant
// snapshots. The legacy file is kept under a .migrated suffix until the
// operator removes it.
func (r *fileRepository) MigrateIfNeeded(ctx context.Context) error {
	legacyPath := filepath.Join(r.dir, legacyStateFile)
	data, err := os.ReadFile(legacyPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read legacy state file: %w", err)
	}

	var legacy legacyState
	if err := json.Unmarshal(data, &legacy); err != nil {
		return fmt.Errorf("failed to parse legacy state file: %w", err)
	}

	log.Info().Int("tenants", len(legacy.Tenants)).Msg("Migrating legacy state file to per-tenant snapshots")

	for idStr, tenant := range legacy.Tenants {
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			return fmt.Errorf("legacy state contains invalid tenant id %q: %w", idStr, err)
		}
		tenant.ID = id
		if tenant.ScheduleRuns == nil {
			tenant.ScheduleRuns = make(map[string]string)
		}
		if tenant.NextGiveawayID == 0 {
			tenant.NextGiveawayID = int64(len(tenant.Giveaways)) + 1
		}
		if err := r.SaveTenant(ctx, tenant); err != nil {
			return fmt.Errorf("failed to migrate tenant %d: %w", id, err)
		}
	}

	if err := os.Rename(legacyPath, legacyPath+".migrated"); err != nil {
		return fmt.Errorf("failed to retire legacy state file: %w", err)
	}
	return nil
}

func (r *fileRepository) LoadAll(ctx context.Context) (map[int64]*models.Tenant, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read data directory: %w", err)
	}

	tenants := make(map[int64]*models.Tenant)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, tenantFilePrefix) || !strings.HasSuffix(name, tenantFileSuffix) {
			continue
		}

		data, err := os.ReadFile(filepath.Join(r.dir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}

		var env envelope
		if err := json.Unmarshal(data, &env); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
		if env.Tenant == nil {
			return nil, fmt.Errorf("snapshot %s has no tenant payload", name)
		}
		if env.Tenant.ScheduleRuns == nil {
			env.Tenant.ScheduleRuns = make(map[string]string)
		}
		tenants[env.Tenant.ID] = env.Tenant
	}
	return tenants, nil
}

func (r *fileRepository) SaveTenant(ctx context.Context, tenant *models.Tenant) error {
	data, err := json.MarshalIndent(envelope{Version: snapshotVersion, Tenant: tenant}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal tenant %d: %w", tenant.ID, err)
	}

	tmp, err := os.CreateTemp(r.dir, fmt.Sprintf(".%s%d-*", tenantFilePrefix, tenant.ID))
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close snapshot: %w", err)
	}

	if err := os.Rename(tmpName, r.tenantPath(tenant.ID)); err != nil {
		return fmt.Errorf("failed to replace snapshot for tenant %d: %w", tenant.ID, err)
	}
	return nil
}

func (r *fileRepository) DeleteTenant(ctx context.Context, tenantID int64) error {
	if err := os.Remove(r.tenantPath(tenantID)); err != nil {
		if os.IsNotExist(err) {
			return repository.ErrTenantNotFound
		}
		return fmt.Errorf("failed to delete snapshot for tenant %d: %w", tenantID, err)
	}
	return nil
}
