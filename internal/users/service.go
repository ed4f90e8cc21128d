package users

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/atlas-hrms/atlas-hrms/internal/shared"
)

// AuditPort abstracts audit logging functionality.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// NotifierPort enqueues transactional notifications after a write commits.
type NotifierPort interface {
	NotifyUserCreated(ctx context.Context, email, fullName string) error
}

// InvalidatorPort bumps cached dashboard data after a profile write.
type InvalidatorPort interface {
	Invalidate(ctx context.Context) error
}

// Service handles user account business logic.
type Service struct {
	repo        RepositoryPort
	audit       AuditPort
	logger      *slog.Logger
	notifier    NotifierPort
	invalidator InvalidatorPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, audit AuditPort, logger *slog.Logger, notifier NotifierPort, invalidator InvalidatorPort) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, audit: audit, logger: logger, notifier: notifier, invalidator: invalidator}
}

// invalidate is best effort; a failed bump leaves stale data until the cache
// TTL expires.
func (s *Service) invalidate(ctx context.Context) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.Invalidate(ctx); err != nil {
		s.logger.Warn("invalidate dashboard cache", slog.Any("error", err))
	}
}

// ListUsers returns all accounts enriched with roles and derived type.
func (s *Service) ListUsers(ctx context.Context) ([]Detail, error) {
	rows, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	details := make([]Detail, 0, len(rows))
	for _, row := range rows {
		details = append(details, toDetail(row))
	}
	return details, nil
}

// GetUser returns one account enriched with roles and derived type.
func (s *Service) GetUser(ctx context.Context, id int64) (Detail, error) {
	row, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return Detail{}, err
	}
	return toDetail(row), nil
}

// CreateUserInput carries fields for a new account.
type CreateUserInput struct {
	Email    string   `json:"email" validate:"required,email"`
	Password string   `json:"password" validate:"required,min=8"`
	FullName string   `json:"fullName" validate:"required"`
	Phone    string   `json:"phone"`
	IsActive *bool    `json:"isActive"`
	Roles    []string `json:"roles"`

	Employee *EmployeeProfileInput `json:"employee"`
	Agent    *AgentProfileInput    `json:"agent"`

	ActorID int64 `json:"-"`
}

// CreateUser registers an account, hashes the password, assigns the named
// roles and optionally creates an employee or agent profile, all in one
// transaction. Unknown role names are dropped.
func (s *Service) CreateUser(ctx context.Context, input CreateUserInput) (Detail, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.FullName = strings.TrimSpace(input.FullName)
	if input.Email == "" || input.Password == "" || input.FullName == "" {
		return Detail{}, fmt.Errorf("%w: email, password and fullName are required", shared.ErrValidation)
	}
	taken, err := s.repo.EmailTaken(ctx, input.Email, 0)
	if err != nil {
		return Detail{}, err
	}
	if taken {
		return Detail{}, fmt.Errorf("%w: email %q already registered", shared.ErrConflict, input.Email)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return Detail{}, err
	}
	roleIDs, err := s.resolveRoles(ctx, input.Roles)
	if err != nil {
		return Detail{}, err
	}
	active := true
	if input.IsActive != nil {
		active = *input.IsActive
	}
	var created User
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		user, err := tx.InsertUser(ctx, User{
			Email:        input.Email,
			PasswordHash: string(hash),
			FullName:     input.FullName,
			Phone:        strings.TrimSpace(input.Phone),
			IsActive:     active,
		})
		if err != nil {
			return err
		}
		if len(roleIDs) > 0 {
			if err := tx.ReplaceUserRoles(ctx, user.ID, roleIDs); err != nil {
				return err
			}
		}
		if input.Employee != nil {
			if err := tx.InsertEmployeeProfile(ctx, user.ID, EmployeeCode(user.ID), *input.Employee); err != nil {
				return err
			}
		}
		if input.Agent != nil {
			if err := tx.InsertAgentProfile(ctx, user.ID, AgentCode(user.ID), *input.Agent); err != nil {
				return err
			}
		}
		created = user
		return nil
	})
	if err != nil {
		return Detail{}, err
	}
	s.recordAudit(ctx, input.ActorID, "user.create", created.ID, map[string]any{"email": created.Email})
	if input.Employee != nil {
		s.invalidate(ctx)
	}
	if s.notifier != nil {
		if err := s.notifier.NotifyUserCreated(ctx, created.Email, created.FullName); err != nil {
			s.logger.Warn("queue welcome mail", slog.String("email", created.Email), slog.Any("error", err))
		}
	}
	return s.GetUser(ctx, created.ID)
}

// UpdateUserInput carries partial account updates. Nil fields are left as is;
// a nil Roles pointer leaves assignments untouched while a pointer to an
// empty slice clears them.
type UpdateUserInput struct {
	Email    *string   `json:"email" validate:"omitempty,email"`
	Password *string   `json:"password" validate:"omitempty,min=8"`
	FullName *string   `json:"fullName"`
	Phone    *string   `json:"phone"`
	IsActive *bool     `json:"isActive"`
	Roles    *[]string `json:"roles"`

	ActorID int64 `json:"-"`
}

// UpdateUser applies a partial update and, when requested, fully replaces the
// account's role assignments.
func (s *Service) UpdateUser(ctx context.Context, id int64, input UpdateUserInput) (Detail, error) {
	row, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return Detail{}, err
	}
	user := row.User
	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		if email == "" {
			return Detail{}, fmt.Errorf("%w: email cannot be empty", shared.ErrValidation)
		}
		taken, err := s.repo.EmailTaken(ctx, email, id)
		if err != nil {
			return Detail{}, err
		}
		if taken {
			return Detail{}, fmt.Errorf("%w: email %q already registered", shared.ErrConflict, email)
		}
		user.Email = email
	}
	if input.Password != nil {
		if *input.Password == "" {
			return Detail{}, fmt.Errorf("%w: password cannot be empty", shared.ErrValidation)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			return Detail{}, err
		}
		user.PasswordHash = string(hash)
	}
	if input.FullName != nil {
		user.FullName = strings.TrimSpace(*input.FullName)
	}
	if input.Phone != nil {
		user.Phone = strings.TrimSpace(*input.Phone)
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}
	var roleIDs []int64
	if input.Roles != nil {
		roleIDs, err = s.resolveRoles(ctx, *input.Roles)
		if err != nil {
			return Detail{}, err
		}
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if _, err := tx.UpdateUser(ctx, user); err != nil {
			return err
		}
		if input.Roles != nil {
			return tx.ReplaceUserRoles(ctx, id, roleIDs)
		}
		return nil
	})
	if err != nil {
		return Detail{}, err
	}
	s.recordAudit(ctx, input.ActorID, "user.update", id, map[string]any{"replacedRoles": input.Roles != nil})
	return s.GetUser(ctx, id)
}

// DeleteUser removes an account and everything hanging off it. Deletion order
// matters: role links first, then profiles, then the account row.
func (s *Service) DeleteUser(ctx context.Context, id int64, actorID int64) error {
	if _, err := s.repo.GetUser(ctx, id); err != nil {
		return err
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.DeleteUserRoles(ctx, id); err != nil {
			return err
		}
		if err := tx.DeleteEmployeeProfile(ctx, id); err != nil {
			return err
		}
		if err := tx.DeleteAgentProfile(ctx, id); err != nil {
			return err
		}
		return tx.DeleteUser(ctx, id)
	})
	if err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "user.delete", id, nil)
	s.invalidate(ctx)
	return nil
}

func (s *Service) resolveRoles(ctx context.Context, names []string) ([]int64, error) {
	cleaned := make([]string, 0, len(names))
	for _, name := range names {
		if name = strings.TrimSpace(name); name != "" {
			cleaned = append(cleaned, name)
		}
	}
	resolved, err := s.repo.ResolveRoleIDs(ctx, cleaned)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(resolved))
	for _, name := range cleaned {
		if id, ok := resolved[name]; ok {
			ids = append(ids, id)
		} else {
			s.logger.Warn("ignoring unknown role name", "role", name)
		}
	}
	return ids, nil
}

func toDetail(row Row) Detail {
	roles := row.Roles
	if roles == nil {
		roles = []string{}
	}
	return Detail{
		User:     row.User,
		Roles:    roles,
		UserType: DeriveUserType(row.HasEmployee, row.HasAgent),
	}
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action string, userID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	log := shared.AuditLog{ActorID: actorID, Action: action, Entity: "user", EntityID: strconv.FormatInt(userID, 10), Meta: meta}
	if err := s.audit.Record(ctx, log); err != nil {
		s.logger.Error("audit record failed", "action", action, "err", err)
	}
}
