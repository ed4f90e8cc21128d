package users

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/atlas-hrms/atlas-hrms/internal/shared"
)

type memoryRepo struct {
	users     map[int64]User
	roles     map[string]int64
	userRoles map[int64][]int64
	employees map[int64]string
	agents    map[int64]string
	nextID    int64
}

type memoryTx struct {
	repo *memoryRepo
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		users:     make(map[int64]User),
		roles:     map[string]int64{"Admin": 1, "HR": 2, "Viewer": 3},
		userRoles: make(map[int64][]int64),
		employees: make(map[int64]string),
		agents:    make(map[int64]string),
	}
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return fn(ctx, &memoryTx{repo: r})
}

func (r *memoryRepo) row(user User) Row {
	_, hasEmployee := r.employees[user.ID]
	_, hasAgent := r.agents[user.ID]
	var names []string
	for name, id := range r.roles {
		for _, assigned := range r.userRoles[user.ID] {
			if assigned == id {
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return Row{User: user, Roles: names, HasEmployee: hasEmployee, HasAgent: hasAgent}
}

func (r *memoryRepo) ListUsers(ctx context.Context) ([]Row, error) {
	ids := make([]int64, 0, len(r.users))
	for id := range r.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	rows := make([]Row, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, r.row(r.users[id]))
	}
	return rows, nil
}

func (r *memoryRepo) GetUser(ctx context.Context, id int64) (Row, error) {
	user, ok := r.users[id]
	if !ok {
		return Row{}, fmt.Errorf("%w: user %d", shared.ErrNotFound, id)
	}
	return r.row(user), nil
}

func (r *memoryRepo) EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error) {
	for id, user := range r.users {
		if user.Email == email && id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryRepo) ResolveRoleIDs(ctx context.Context, names []string) (map[string]int64, error) {
	resolved := make(map[string]int64)
	for _, name := range names {
		if id, ok := r.roles[name]; ok {
			resolved[name] = id
		}
	}
	return resolved, nil
}

func (tx *memoryTx) InsertUser(ctx context.Context, user User) (User, error) {
	for _, existing := range tx.repo.users {
		if existing.Email == user.Email {
			return User{}, fmt.Errorf("%w: email %q already registered", shared.ErrConflict, user.Email)
		}
	}
	tx.repo.nextID++
	user.ID = tx.repo.nextID
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	tx.repo.users[user.ID] = user
	return user, nil
}

func (tx *memoryTx) UpdateUser(ctx context.Context, user User) (User, error) {
	if _, ok := tx.repo.users[user.ID]; !ok {
		return User{}, fmt.Errorf("%w: user %d", shared.ErrNotFound, user.ID)
	}
	user.UpdatedAt = time.Now()
	tx.repo.users[user.ID] = user
	return user, nil
}

func (tx *memoryTx) ReplaceUserRoles(ctx context.Context, userID int64, roleIDs []int64) error {
	tx.repo.userRoles[userID] = append([]int64(nil), roleIDs...)
	return nil
}

func (tx *memoryTx) InsertEmployeeProfile(ctx context.Context, userID int64, code string, input EmployeeProfileInput) error {
	tx.repo.employees[userID] = code
	return nil
}

func (tx *memoryTx) InsertAgentProfile(ctx context.Context, userID int64, code string, input AgentProfileInput) error {
	tx.repo.agents[userID] = code
	return nil
}

func (tx *memoryTx) DeleteUserRoles(ctx context.Context, userID int64) error {
	delete(tx.repo.userRoles, userID)
	return nil
}

func (tx *memoryTx) DeleteEmployeeProfile(ctx context.Context, userID int64) error {
	delete(tx.repo.employees, userID)
	return nil
}

func (tx *memoryTx) DeleteAgentProfile(ctx context.Context, userID int64) error {
	delete(tx.repo.agents, userID)
	return nil
}

func (tx *memoryTx) DeleteUser(ctx context.Context, userID int64) error {
	if _, ok := tx.repo.users[userID]; !ok {
		return fmt.Errorf("%w: user %d", shared.ErrNotFound, userID)
	}
	delete(tx.repo.users, userID)
	return nil
}

func TestCreateUserHashesPasswordAndAssignsRoles(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil, nil, nil)
	ctx := context.Background()

	detail, err := svc.CreateUser(ctx, CreateUserInput{
		Email:    "Ana@Example.com",
		Password: "supersecret",
		FullName: "Ana Silva",
		Roles:    []string{"HR", "NoSuchRole"},
	})
	require.NoError(t, err)
	require.Equal(t, "ana@example.com", detail.Email)
	require.True(t, detail.IsActive)
	require.Equal(t, []string{"HR"}, detail.Roles)
	require.Equal(t, TypeUser, detail.UserType)

	stored := repo.users[detail.ID]
	require.NotEqual(t, "supersecret", stored.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("supersecret")))
}

type recordingNotifier struct {
	emails []string
}

func (n *recordingNotifier) NotifyUserCreated(ctx context.Context, email, fullName string) error {
	n.emails = append(n.emails, email)
	return nil
}

func TestCreateUserQueuesWelcomeMail(t *testing.T) {
	repo := newMemoryRepo()
	notifier := &recordingNotifier{}
	svc := NewService(repo, nil, nil, notifier, nil)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, CreateUserInput{Email: "ana@example.com", Password: "supersecret", FullName: "Ana"})
	require.NoError(t, err)
	require.Equal(t, []string{"ana@example.com"}, notifier.emails)

	_, err = svc.CreateUser(ctx, CreateUserInput{Email: "ana@example.com", Password: "othersecret", FullName: "Other"})
	require.Error(t, err)
	require.Len(t, notifier.emails, 1)
}

type countingInvalidator struct {
	bumps int
}

func (c *countingInvalidator) Invalidate(ctx context.Context) error {
	c.bumps++
	return nil
}

func TestEmployeeProfileWritesBumpDashboardCache(t *testing.T) {
	repo := newMemoryRepo()
	inv := &countingInvalidator{}
	svc := NewService(repo, nil, nil, nil, inv)
	ctx := context.Background()

	// Plain accounts never feed the dashboards.
	plain, err := svc.CreateUser(ctx, CreateUserInput{Email: "user@example.com", Password: "supersecret", FullName: "User"})
	require.NoError(t, err)
	require.Equal(t, 0, inv.bumps)

	emp, err := svc.CreateUser(ctx, CreateUserInput{
		Email:    "emp@example.com",
		Password: "supersecret",
		FullName: "Employee",
		Employee: &EmployeeProfileInput{DepartmentID: 1},
	})
	require.NoError(t, err)
	require.Equal(t, 1, inv.bumps)

	require.NoError(t, svc.DeleteUser(ctx, emp.ID, 0))
	require.Equal(t, 2, inv.bumps)
	require.NoError(t, svc.DeleteUser(ctx, plain.ID, 0))
	require.Equal(t, 3, inv.bumps)
}

func TestCreateUserRejectsDuplicateEmail(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil, nil, nil)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, CreateUserInput{Email: "ana@example.com", Password: "supersecret", FullName: "Ana"})
	require.NoError(t, err)

	_, err = svc.CreateUser(ctx, CreateUserInput{Email: "ana@example.com", Password: "othersecret", FullName: "Other"})
	require.ErrorIs(t, err, shared.ErrConflict)
}

func TestCreateUserWithEmployeeProfile(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil, nil, nil)
	ctx := context.Background()

	detail, err := svc.CreateUser(ctx, CreateUserInput{
		Email:    "emp@example.com",
		Password: "supersecret",
		FullName: "Employee One",
		Employee: &EmployeeProfileInput{DepartmentID: 1},
	})
	require.NoError(t, err)
	require.Equal(t, TypeEmployee, detail.UserType)
	require.Equal(t, "EMP001", repo.employees[detail.ID])

	second, err := svc.CreateUser(ctx, CreateUserInput{
		Email:    "emp2@example.com",
		Password: "supersecret",
		FullName: "Employee Two",
		Employee: &EmployeeProfileInput{DepartmentID: 1},
	})
	require.NoError(t, err)
	require.Equal(t, "EMP002", repo.employees[second.ID])
}

func TestEmployeeCodeNotReusedAfterDelete(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil, nil, nil)
	ctx := context.Background()

	first, err := svc.CreateUser(ctx, CreateUserInput{
		Email:    "emp@example.com",
		Password: "supersecret",
		FullName: "Employee One",
		Employee: &EmployeeProfileInput{DepartmentID: 1},
	})
	require.NoError(t, err)
	require.Equal(t, "EMP001", repo.employees[first.ID])
	require.NoError(t, svc.DeleteUser(ctx, first.ID, 0))

	second, err := svc.CreateUser(ctx, CreateUserInput{
		Email:    "emp2@example.com",
		Password: "supersecret",
		FullName: "Employee Two",
		Employee: &EmployeeProfileInput{DepartmentID: 1},
	})
	require.NoError(t, err)
	require.Equal(t, "EMP002", repo.employees[second.ID])
}

func TestUserTypePrefersEmployeeOverAgent(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil, nil, nil)
	ctx := context.Background()

	detail, err := svc.CreateUser(ctx, CreateUserInput{
		Email:    "both@example.com",
		Password: "supersecret",
		FullName: "Both Profiles",
		Employee: &EmployeeProfileInput{DepartmentID: 1},
		Agent:    &AgentProfileInput{CompanyName: "Acme"},
	})
	require.NoError(t, err)
	require.Equal(t, TypeEmployee, detail.UserType)
	require.Equal(t, "AGT001", repo.agents[detail.ID])
}

func TestUpdateUserPartialFields(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil, nil, nil)
	ctx := context.Background()

	created, err := svc.CreateUser(ctx, CreateUserInput{Email: "ana@example.com", Password: "supersecret", FullName: "Ana", Roles: []string{"HR"}})
	require.NoError(t, err)

	name := "Ana Maria"
	updated, err := svc.UpdateUser(ctx, created.ID, UpdateUserInput{FullName: &name})
	require.NoError(t, err)
	require.Equal(t, "Ana Maria", updated.FullName)
	require.Equal(t, "ana@example.com", updated.Email)
	// Roles untouched when the field is omitted.
	require.Equal(t, []string{"HR"}, updated.Roles)
}

func TestUpdateUserReplacesRoles(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil, nil, nil)
	ctx := context.Background()

	created, err := svc.CreateUser(ctx, CreateUserInput{Email: "ana@example.com", Password: "supersecret", FullName: "Ana", Roles: []string{"HR", "Viewer"}})
	require.NoError(t, err)

	roles := []string{"Admin"}
	updated, err := svc.UpdateUser(ctx, created.ID, UpdateUserInput{Roles: &roles})
	require.NoError(t, err)
	require.Equal(t, []string{"Admin"}, updated.Roles)

	empty := []string{}
	updated, err = svc.UpdateUser(ctx, created.ID, UpdateUserInput{Roles: &empty})
	require.NoError(t, err)
	require.Empty(t, updated.Roles)
}

func TestUpdateUserEmailConflict(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil, nil, nil)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, CreateUserInput{Email: "first@example.com", Password: "supersecret", FullName: "First"})
	require.NoError(t, err)
	second, err := svc.CreateUser(ctx, CreateUserInput{Email: "second@example.com", Password: "supersecret", FullName: "Second"})
	require.NoError(t, err)

	email := "first@example.com"
	_, err = svc.UpdateUser(ctx, second.ID, UpdateUserInput{Email: &email})
	require.ErrorIs(t, err, shared.ErrConflict)

	// Updating to its own email is not a conflict.
	own := "second@example.com"
	_, err = svc.UpdateUser(ctx, second.ID, UpdateUserInput{Email: &own})
	require.NoError(t, err)
}

func TestDeleteUserRemovesProfilesAndRoles(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil, nil, nil)
	ctx := context.Background()

	created, err := svc.CreateUser(ctx, CreateUserInput{
		Email:    "emp@example.com",
		Password: "supersecret",
		FullName: "Employee",
		Roles:    []string{"HR"},
		Employee: &EmployeeProfileInput{DepartmentID: 1},
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteUser(ctx, created.ID, 0))
	require.NotContains(t, repo.users, created.ID)
	require.NotContains(t, repo.employees, created.ID)
	require.NotContains(t, repo.userRoles, created.ID)

	require.ErrorIs(t, svc.DeleteUser(ctx, created.ID, 0), shared.ErrNotFound)
}
