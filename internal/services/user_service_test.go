package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/DPU-COL/learner-assist-service/internal/events"
	"github.com/DPU-COL/learner-assist-service/internal/models"
	"github.com/DPU-COL/learner-assist-service/internal/repositories"
	"github.com/DPU-COL/learner-assist-service/internal/validator"
)

type userFixture struct {
	repo      *mockRepository
	publisher *events.MockEventPublisher
	service   UserService
}

func newUserFixture(t *testing.T) *userFixture {
	t.Helper()
	repo := newMockRepository()
	publisher := events.NewMockEventPublisher(testSlog())
	service := NewUserService(repo, validator.New(), publisher, newTestLogger())
	return &userFixture{repo: repo, publisher: publisher, service: service}
}

func TestUserService_SyncCreatesStudent(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	user, err := f.service.Sync(ctx, &UserSyncRequest{
		ID:    "ext-123",
		Name:  "New Learner",
		Email: "learner@example.com",
	})
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if user.Role != models.RoleStudent {
		t.Errorf("new user role = %s, want student", user.Role)
	}
	if !user.IsActive {
		t.Error("new users should start active")
	}
}

func TestUserService_SyncRefreshesExisting(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	existing := &models.User{
		ID:       "ext-123",
		Name:     "Old Name",
		Email:    "old@example.com",
		Role:     models.RoleFaculty,
		IsActive: false,
	}
	_ = f.repo.User().Create(ctx, existing)

	user, err := f.service.Sync(ctx, &UserSyncRequest{
		ID:    "ext-123",
		Name:  "New Name",
		Email: "new@example.com",
	})
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if user.Name != "New Name" || user.Email != "new@example.com" {
		t.Errorf("profile not refreshed: %+v", user)
	}
	// Sync must never touch role or activation; those are admin decisions.
	if user.Role != models.RoleFaculty {
		t.Errorf("sync changed role to %s", user.Role)
	}
	if user.IsActive {
		t.Error("sync reactivated a deactivated account")
	}
}

func TestUserService_SyncValidation(t *testing.T) {
	f := newUserFixture(t)
	_, err := f.service.Sync(context.Background(), &UserSyncRequest{ID: "x", Name: "n", Email: "not-an-email"})
	if !IsValidation(err) {
		t.Errorf("want validation error, got %v", err)
	}
}

func TestUserService_GetSelfRead(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()
	student := seedUser(f.repo, models.RoleStudent)
	other := seedUser(f.repo, models.RoleStudent)

	if _, err := f.service.Get(ctx, student, student.ID); err != nil {
		t.Errorf("self-read should pass: %v", err)
	}
	if _, err := f.service.Get(ctx, student, other.ID); !IsAuthorization(err) {
		t.Errorf("reading another user without permission: want authorization error, got %v", err)
	}
}

func TestUserService_UpdateSelfProtection(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()
	admin := seedUser(f.repo, models.RoleAdmin)

	studentRole := "student"
	if _, err := f.service.Update(ctx, admin, admin.ID, &UserUpdateRequest{Role: &studentRole}); !IsValidation(err) {
		t.Errorf("own role change: want validation error, got %v", err)
	}

	inactive := false
	if _, err := f.service.Update(ctx, admin, admin.ID, &UserUpdateRequest{IsActive: &inactive}); !IsValidation(err) {
		t.Errorf("self-deactivation: want validation error, got %v", err)
	}

	// Updating one's own name is fine.
	name := "Renamed Admin"
	updated, err := f.service.Update(ctx, admin, admin.ID, &UserUpdateRequest{Name: &name})
	if err != nil {
		t.Fatalf("self name update: %v", err)
	}
	if updated.Name != name {
		t.Errorf("name = %q, want %q", updated.Name, name)
	}
}

func TestUserService_UpdateEmailUniqueness(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()
	admin := seedUser(f.repo, models.RoleAdmin)
	target := seedUser(f.repo, models.RoleStudent)
	other := seedUser(f.repo, models.RoleStudent)

	taken := other.Email
	if _, err := f.service.Update(ctx, admin, target.ID, &UserUpdateRequest{Email: &taken}); !IsValidation(err) {
		t.Errorf("duplicate email: want validation error, got %v", err)
	}

	fresh := "fresh@example.com"
	updated, err := f.service.Update(ctx, admin, target.ID, &UserUpdateRequest{Email: &fresh})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Email != fresh {
		t.Errorf("email = %q, want %q", updated.Email, fresh)
	}
}

func TestUserService_UpdateRoleAndPassword(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()
	admin := seedUser(f.repo, models.RoleAdmin)
	target := seedUser(f.repo, models.RoleStudent)

	role := "faculty"
	password := "correct horse battery"
	updated, err := f.service.Update(ctx, admin, target.ID, &UserUpdateRequest{Role: &role, Password: &password})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Role != models.RoleFaculty {
		t.Errorf("role = %s, want faculty", updated.Role)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte(password)); err != nil {
		t.Errorf("stored hash does not match the password: %v", err)
	}

	var sawRoleChange bool
	for _, ev := range f.publisher.GetPublishedEvents() {
		if ev.Type == events.EventRoleChanged {
			sawRoleChange = true
		}
	}
	if !sawRoleChange {
		t.Error("role change should publish a role_changed event")
	}
}

func TestUserService_DeleteSelfBlocked(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()
	admin := seedUser(f.repo, models.RoleAdmin)
	target := seedUser(f.repo, models.RoleStudent)

	if err := f.service.Delete(ctx, admin, admin.ID); !IsValidation(err) {
		t.Errorf("self-delete: want validation error, got %v", err)
	}
	if err := f.service.Delete(ctx, admin, target.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := f.service.Delete(ctx, admin, target.ID); !IsNotFound(err) {
		t.Errorf("double delete: want not-found, got %v", err)
	}
}

func TestUserService_BulkActionPartialFailure(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()
	admin := seedUser(f.repo, models.RoleAdmin)
	a := seedUser(f.repo, models.RoleStudent)
	b := seedUser(f.repo, models.RoleStudent)
	missing := uuid.New().String()

	result, err := f.service.BulkAction(ctx, admin, &BulkUserActionRequest{
		UserIDs: []string{a.ID, missing, b.ID, admin.ID},
		Action:  "deactivate",
	})
	if err != nil {
		t.Fatalf("BulkAction: %v", err)
	}
	if len(result.Succeeded) != 2 {
		t.Errorf("succeeded = %v, want the two real non-self targets", result.Succeeded)
	}
	if len(result.Failed) != 2 {
		t.Fatalf("failed = %v, want missing id and self-target", result.Failed)
	}
	if _, ok := result.Failed[missing]; !ok {
		t.Error("missing id should appear in the failed map")
	}
	if _, ok := result.Failed[admin.ID]; !ok {
		t.Error("self deactivation should fail for that id only")
	}

	got, _ := f.repo.User().GetByID(ctx, a.ID)
	if got.IsActive {
		t.Error("target a should be deactivated")
	}
}

func TestUserService_BulkActionChangeRole(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()
	admin := seedUser(f.repo, models.RoleAdmin)
	target := seedUser(f.repo, models.RoleStudent)

	if _, err := f.service.BulkAction(ctx, admin, &BulkUserActionRequest{
		UserIDs: []string{target.ID},
		Action:  "changeRole",
	}); !IsValidation(err) {
		t.Errorf("changeRole without a role: want validation error, got %v", err)
	}

	role := "mentor"
	result, err := f.service.BulkAction(ctx, admin, &BulkUserActionRequest{
		UserIDs: []string{target.ID},
		Action:  "changeRole",
		Role:    &role,
	})
	if err != nil {
		t.Fatalf("BulkAction: %v", err)
	}
	if len(result.Succeeded) != 1 || result.Failed != nil {
		t.Fatalf("unexpected result %+v", result)
	}

	got, _ := f.repo.User().GetByID(ctx, target.ID)
	if got.Role != models.RoleMentor {
		t.Errorf("role = %s, want mentor", got.Role)
	}
}

func TestUserService_BulkActionSelfActivateAllowed(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()
	admin := seedUser(f.repo, models.RoleAdmin)

	result, err := f.service.BulkAction(ctx, admin, &BulkUserActionRequest{
		UserIDs: []string{admin.ID},
		Action:  "activate",
	})
	if err != nil {
		t.Fatalf("BulkAction: %v", err)
	}
	if len(result.Succeeded) != 1 || result.Failed != nil {
		t.Errorf("self-activation should succeed, got %+v", result)
	}
}

func TestUserService_ListRequiresPermission(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()
	student := seedUser(f.repo, models.RoleStudent)

	if _, err := f.service.List(ctx, student, repositories.UserFilters{}); !IsAuthorization(err) {
		t.Errorf("want authorization error, got %v", err)
	}

	manager := seedUser(f.repo, models.RoleMentor)
	manager.Permissions = models.MustJSON(map[string]bool{"manageUsers": true})
	resp, err := f.service.List(ctx, manager, repositories.UserFilters{})
	if err != nil {
		t.Fatalf("List with override: %v", err)
	}
	if resp.Total != 2 {
		t.Errorf("total = %d, want 2", resp.Total)
	}
}
