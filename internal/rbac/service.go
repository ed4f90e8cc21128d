package rbac

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/atlas-hrms/atlas-hrms/internal/shared"
)

// AuditPort abstracts audit logging functionality.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// RoleInUseError reports a delete attempt on a role still assigned to users.
type RoleInUseError struct {
	RoleID    int64
	UserCount int64
}

func (e *RoleInUseError) Error() string {
	return fmt.Sprintf("role %d is assigned to %d user(s) and cannot be deleted", e.RoleID, e.UserCount)
}

// Is lets callers match the error against shared.ErrConflict.
func (e *RoleInUseError) Is(target error) bool {
	return target == shared.ErrConflict
}

// ServiceConfig groups optional settings.
type ServiceConfig struct {
	// StrictNames rejects requests naming unknown permissions instead of
	// silently dropping them from the resolved set.
	StrictNames bool
}

// Service coordinates role and permission operations.
type Service struct {
	repo        RepositoryPort
	audit       AuditPort
	logger      *slog.Logger
	strictNames bool
}

// NewService builds Service.
func NewService(repo RepositoryPort, audit AuditPort, logger *slog.Logger, cfg ServiceConfig) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, audit: audit, logger: logger, strictNames: cfg.StrictNames}
}

// CreatePermissionInput carries fields for a new permission.
type CreatePermissionInput struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Resource    string `json:"resource" validate:"required"`
	Action      string `json:"action" validate:"required"`
	ActorID     int64  `json:"-"`
}

// CreatePermission registers a permission in the catalog.
func (s *Service) CreatePermission(ctx context.Context, input CreatePermissionInput) (Permission, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Resource = strings.TrimSpace(input.Resource)
	input.Action = strings.TrimSpace(input.Action)
	if input.Name == "" || input.Resource == "" || input.Action == "" {
		return Permission{}, fmt.Errorf("%w: name, resource and action are required", shared.ErrValidation)
	}
	if !shared.ValidAction(input.Action) {
		return Permission{}, fmt.Errorf("%w: unknown action %q", shared.ErrValidation, input.Action)
	}
	perm, err := s.repo.CreatePermission(ctx, Permission{
		Name:        input.Name,
		Description: input.Description,
		Resource:    input.Resource,
		Action:      input.Action,
	})
	if err != nil {
		return Permission{}, err
	}
	s.recordAudit(ctx, input.ActorID, "permission.create", "permission", perm.ID, map[string]any{"name": perm.Name})
	return perm, nil
}

// PermissionGroup is the catalog sliced by resource.
type PermissionGroup struct {
	Resource    string       `json:"resource"`
	Permissions []Permission `json:"permissions"`
}

// ListPermissionsGrouped returns the catalog grouped by resource, with
// resources and permissions both in (resource, action) order.
func (s *Service) ListPermissionsGrouped(ctx context.Context) ([]PermissionGroup, error) {
	perms, err := s.repo.ListPermissions(ctx)
	if err != nil {
		return nil, err
	}
	groups := make([]PermissionGroup, 0)
	for _, p := range perms {
		if n := len(groups); n == 0 || groups[n-1].Resource != p.Resource {
			groups = append(groups, PermissionGroup{Resource: p.Resource})
		}
		last := &groups[len(groups)-1]
		last.Permissions = append(last.Permissions, p)
	}
	return groups, nil
}

// ListPermissions returns the flat catalog.
func (s *Service) ListPermissions(ctx context.Context) ([]Permission, error) {
	return s.repo.ListPermissions(ctx)
}

// CreateRoleInput carries fields for a new role.
type CreateRoleInput struct {
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
	ActorID     int64    `json:"-"`
}

// CreateRole inserts a role and attaches the named permissions atomically.
func (s *Service) CreateRole(ctx context.Context, input CreateRoleInput) (RoleDetail, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return RoleDetail{}, fmt.Errorf("%w: role name required", shared.ErrValidation)
	}
	resolved, err := s.resolveNames(ctx, input.Permissions)
	if err != nil {
		return RoleDetail{}, err
	}
	var created Role
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		role, err := tx.InsertRole(ctx, input.Name, strings.TrimSpace(input.Description))
		if err != nil {
			return err
		}
		if len(resolved) > 0 {
			if err := tx.InsertRolePermissions(ctx, role.ID, permissionIDs(resolved)); err != nil {
				return err
			}
		}
		created = role
		return nil
	})
	if err != nil {
		return RoleDetail{}, err
	}
	s.recordAudit(ctx, input.ActorID, "role.create", "role", created.ID, map[string]any{"name": created.Name, "permissions": len(resolved)})
	return RoleDetail{Role: created, Permissions: resolved}, nil
}

// UpdateRoleInput carries partial role updates. Nil fields are left as is; a
// nil Permissions pointer leaves the permission set untouched while a pointer
// to an empty slice clears it.
type UpdateRoleInput struct {
	Name        *string   `json:"name"`
	Description *string   `json:"description"`
	Permissions *[]string `json:"permissions"`
	ActorID     int64     `json:"-"`
}

// UpdateRole applies a partial update and, when requested, fully replaces the
// role's permission set in the same transaction.
func (s *Service) UpdateRole(ctx context.Context, id int64, input UpdateRoleInput) (RoleDetail, error) {
	current, err := s.repo.GetRole(ctx, id)
	if err != nil {
		return RoleDetail{}, err
	}
	name := current.Name
	if input.Name != nil {
		name = strings.TrimSpace(*input.Name)
		if name == "" {
			return RoleDetail{}, fmt.Errorf("%w: role name cannot be empty", shared.ErrValidation)
		}
	}
	description := current.Description
	if input.Description != nil {
		description = strings.TrimSpace(*input.Description)
	}
	var resolved []Permission
	if input.Permissions != nil {
		resolved, err = s.resolveNames(ctx, *input.Permissions)
		if err != nil {
			return RoleDetail{}, err
		}
	}
	var updated Role
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		role, err := tx.UpdateRole(ctx, id, name, description)
		if err != nil {
			return err
		}
		if input.Permissions != nil {
			if err := tx.DeleteRolePermissions(ctx, id); err != nil {
				return err
			}
			if len(resolved) > 0 {
				if err := tx.InsertRolePermissions(ctx, id, permissionIDs(resolved)); err != nil {
					return err
				}
			}
		}
		updated = role
		return nil
	})
	if err != nil {
		return RoleDetail{}, err
	}
	if input.Permissions == nil {
		resolved, err = s.repo.ListRolePermissions(ctx, id)
		if err != nil {
			return RoleDetail{}, err
		}
	}
	s.recordAudit(ctx, input.ActorID, "role.update", "role", id, map[string]any{"name": updated.Name, "replacedPermissions": input.Permissions != nil})
	return RoleDetail{Role: updated, Permissions: resolved}, nil
}

// DeleteRole removes a role. Roles still assigned to users are protected; the
// returned RoleInUseError carries the assignment count.
func (s *Service) DeleteRole(ctx context.Context, id int64, actorID int64) error {
	if _, err := s.repo.GetRole(ctx, id); err != nil {
		return err
	}
	count, err := s.repo.CountRoleAssignments(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return &RoleInUseError{RoleID: id, UserCount: count}
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.DeleteRolePermissions(ctx, id); err != nil {
			return err
		}
		return tx.DeleteRole(ctx, id)
	})
	if err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "role.delete", "role", id, nil)
	return nil
}

// ListRoles returns all roles enriched with permissions and user counts.
func (s *Service) ListRoles(ctx context.Context) ([]RoleDetail, error) {
	roles, err := s.repo.ListRoles(ctx)
	if err != nil {
		return nil, err
	}
	details := make([]RoleDetail, 0, len(roles))
	for _, role := range roles {
		perms, err := s.repo.ListRolePermissions(ctx, role.ID)
		if err != nil {
			return nil, err
		}
		count, err := s.repo.CountRoleAssignments(ctx, role.ID)
		if err != nil {
			return nil, err
		}
		details = append(details, RoleDetail{Role: role, Permissions: perms, UserCount: count})
	}
	return details, nil
}

// GetRole returns a role with its permissions and assigned users.
func (s *Service) GetRole(ctx context.Context, id int64) (RoleDetail, error) {
	role, err := s.repo.GetRole(ctx, id)
	if err != nil {
		return RoleDetail{}, err
	}
	perms, err := s.repo.ListRolePermissions(ctx, id)
	if err != nil {
		return RoleDetail{}, err
	}
	users, err := s.repo.ListRoleUsers(ctx, id)
	if err != nil {
		return RoleDetail{}, err
	}
	return RoleDetail{Role: role, Permissions: perms, UserCount: int64(len(users)), Users: users}, nil
}

// AssignRole links a user to a role. Assigning an already held role is a
// conflict.
func (s *Service) AssignRole(ctx context.Context, userID, roleID, actorID int64) error {
	exists, err := s.repo.UserExists(ctx, userID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: user %d", shared.ErrNotFound, userID)
	}
	if _, err := s.repo.GetRole(ctx, roleID); err != nil {
		return err
	}
	if err := s.repo.AssignRole(ctx, userID, roleID); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "role.assign", "role", roleID, map[string]any{"userId": userID})
	return nil
}

// RemoveRole unlinks a user from a role. Removing an assignment that does not
// exist is a no-op.
func (s *Service) RemoveRole(ctx context.Context, userID, roleID, actorID int64) error {
	removed, err := s.repo.RemoveRole(ctx, userID, roleID)
	if err != nil {
		return err
	}
	if removed > 0 {
		s.recordAudit(ctx, actorID, "role.remove", "role", roleID, map[string]any{"userId": userID})
	}
	return nil
}

// EffectivePermissions returns the deduplicated union of the user's
// permissions across all assigned roles.
func (s *Service) EffectivePermissions(ctx context.Context, userID int64) ([]Permission, error) {
	exists, err := s.repo.UserExists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: user %d", shared.ErrNotFound, userID)
	}
	return s.repo.UserPermissions(ctx, userID)
}

// HasPermission reports whether the user holds a permission matching the
// exact resource and action pair. No action implies another.
func (s *Service) HasPermission(ctx context.Context, userID int64, resource, action string) (bool, error) {
	perms, err := s.EffectivePermissions(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, p := range perms {
		if p.Resource == resource && p.Action == action {
			return true, nil
		}
	}
	return false, nil
}

// UserRoleNames returns the names of roles assigned to the user.
func (s *Service) UserRoleNames(ctx context.Context, userID int64) ([]string, error) {
	return s.repo.UserRoleNames(ctx, userID)
}

func (s *Service) resolveNames(ctx context.Context, names []string) ([]Permission, error) {
	cleaned := make([]string, 0, len(names))
	for _, name := range names {
		if name = strings.TrimSpace(name); name != "" {
			cleaned = append(cleaned, name)
		}
	}
	resolved, err := s.repo.ResolvePermissionNames(ctx, cleaned)
	if err != nil {
		return nil, err
	}
	if len(resolved) < len(cleaned) {
		missing := missingNames(cleaned, resolved)
		if s.strictNames {
			return nil, fmt.Errorf("%w: unknown permissions: %s", shared.ErrValidation, strings.Join(missing, ", "))
		}
		s.logger.Warn("ignoring unknown permission names", "missing", missing)
	}
	return resolved, nil
}

func missingNames(requested []string, resolved []Permission) []string {
	found := make(map[string]struct{}, len(resolved))
	for _, p := range resolved {
		found[p.Name] = struct{}{}
	}
	var missing []string
	seen := make(map[string]struct{}, len(requested))
	for _, name := range requested {
		if _, ok := found[name]; ok {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		missing = append(missing, name)
	}
	return missing
}

func permissionIDs(perms []Permission) []int64 {
	ids := make([]int64, 0, len(perms))
	for _, p := range perms {
		ids = append(ids, p.ID)
	}
	return ids
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action, entity string, entityID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	log := shared.AuditLog{ActorID: actorID, Action: action, Entity: entity, EntityID: strconv.FormatInt(entityID, 10), Meta: meta}
	if err := s.audit.Record(ctx, log); err != nil {
		s.logger.Error("audit record failed", "action", action, "err", err)
	}
}
