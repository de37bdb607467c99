package service

import (
	"context"

	apperrors "giveaway-bot-backend/internal/common/errors"
	"giveaway-bot-backend/internal/features/giveaway/models"
)

// AdminCommandKind enumerates the mutating commands the chat-platform
// adapter may issue on behalf of an administrator.
type AdminCommandKind string

const (
	AdminCommandCreate          AdminCommandKind = "create"
	AdminCommandClose           AdminCommandKind = "close"
	AdminCommandEdit            AdminCommandKind = "edit"
	AdminCommandReroll          AdminCommandKind = "reroll"
	AdminCommandToggleAuto      AdminCommandKind = "toggle_auto"
	AdminCommandSetCooldown     AdminCommandKind = "set_cooldown"
	AdminCommandSetTimezone     AdminCommandKind = "set_timezone"
	AdminCommandAddAdminRole    AdminCommandKind = "add_admin_role"
	AdminCommandRemoveAdminRole AdminCommandKind = "remove_admin_role"
)

// AdminCommandParams is the union of parameters across admin commands; each
// command reads only the fields it needs.
type AdminCommandParams struct {
	CallerRoles []int64
	Create      *models.GiveawayCreate
	Update      *models.GiveawayUpdate
	Cooldown    *models.CooldownPolicy
	Timezone    string
	RoleID      int64
	Enabled     bool
}

// AdminCommandResult carries the affected giveaway, when the command has one.
type AdminCommandResult struct {
	Giveaway *models.Giveaway
}

// OnInteractionJoin handles a join button press from the platform adapter.
func (s *Service) OnInteractionJoin(ctx context.Context, tenantID int64, giveawayID string, userID int64) (bool, error) {
	return s.Join(ctx, tenantID, giveawayID, userID)
}

// OnInteractionLeave handles a leave button press from the platform adapter.
func (s *Service) OnInteractionLeave(ctx context.Context, tenantID int64, giveawayID string, userID int64) (bool, error) {
	return s.Leave(ctx, tenantID, giveawayID, userID)
}

// OnAdminCommand authorizes and dispatches a mutating admin command. The
// capability check runs before any state is touched.
func (s *Service) OnAdminCommand(ctx context.Context, kind AdminCommandKind, tenantID int64, giveawayID string, params AdminCommandParams) (*AdminCommandResult, error) {
	if !s.IsAuthorized(tenantID, params.CallerRoles) {
		return nil, apperrors.NewUnauthorizedError("caller lacks a giveaway admin role")
	}

	switch kind {
	case AdminCommandCreate:
		if params.Create == nil {
			return nil, apperrors.NewValidationError("create", "missing giveaway parameters")
		}
		giveaway, err := s.Create(ctx, tenantID, *params.Create)
		if err != nil {
			return nil, err
		}
		return &AdminCommandResult{Giveaway: giveaway}, nil

	case AdminCommandClose:
		giveaway, err := s.Close(ctx, tenantID, giveawayID)
		if err != nil {
			return nil, err
		}
		return &AdminCommandResult{Giveaway: giveaway}, nil

	case AdminCommandEdit:
		if params.Update == nil {
			return nil, apperrors.NewValidationError("edit", "missing update parameters")
		}
		giveaway, err := s.Edit(ctx, tenantID, giveawayID, *params.Update)
		if err != nil {
			return nil, err
		}
		return &AdminCommandResult{Giveaway: giveaway}, nil

	case AdminCommandReroll:
		giveaway, err := s.Reroll(ctx, tenantID, giveawayID)
		if err != nil {
			return nil, err
		}
		return &AdminCommandResult{Giveaway: giveaway}, nil

	case AdminCommandToggleAuto:
		return &AdminCommandResult{}, s.ToggleAutomation(ctx, tenantID, params.Enabled)

	case AdminCommandSetCooldown:
		if params.Cooldown == nil {
			return nil, apperrors.NewValidationError("set_cooldown", "missing cooldown policy")
		}
		return &AdminCommandResult{}, s.SetCooldownPolicy(ctx, tenantID, *params.Cooldown)

	case AdminCommandSetTimezone:
		return &AdminCommandResult{}, s.SetTimezone(ctx, tenantID, params.Timezone)

	case AdminCommandAddAdminRole:
		_, err := s.AddAdminRole(ctx, tenantID, params.RoleID)
		return &AdminCommandResult{}, err

	case AdminCommandRemoveAdminRole:
		_, err := s.RemoveAdminRole(ctx, tenantID, params.RoleID)
		return &AdminCommandResult{}, err

	default:
		return nil, apperrors.NewValidationError("kind", "unknown admin command")
	}
}
