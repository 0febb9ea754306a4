package directory

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ledgerly/ledgerly-backend/internal/auditlog"
	"github.com/ledgerly/ledgerly-backend/internal/auth"
	"github.com/ledgerly/ledgerly-backend/internal/organization"
)

type fixture struct {
	svc   Service
	roles *auth.RoleSet
	db    *gorm.DB
	acme  organization.Organization
	globe organization.Organization
}

func setup(t *testing.T) *fixture {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&organization.Organization{}, &auth.Role{}, &auth.User{}, &auditlog.AuditLog{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	roles, err := auth.SeedRoles(db)
	if err != nil {
		t.Fatalf("seed roles: %v", err)
	}

	f := &fixture{
		roles: roles,
		db:    db,
		acme:  organization.Organization{Name: "Acme", ContactEmail: "ops@acme.test", Plan: organization.PlanStarter, Status: organization.StatusActive},
		globe: organization.Organization{Name: "Globe", ContactEmail: "ops@globe.test", Plan: organization.PlanGrowth, Status: organization.StatusActive},
	}
	if err := db.Create(&f.acme).Error; err != nil {
		t.Fatalf("create acme: %v", err)
	}
	if err := db.Create(&f.globe).Error; err != nil {
		t.Fatalf("create globe: %v", err)
	}

	auditSvc := auditlog.NewService(auditlog.NewRepository(db), nil)
	f.svc = NewService(NewRepository(db), roles, auditSvc)
	return f
}

func (f *fixture) addUser(t *testing.T, name, email string, role auth.Role, orgID *uint) auth.User {
	t.Helper()
	hash, _ := bcrypt.GenerateFromPassword([]byte("longenough1"), bcrypt.MinCost)
	user := auth.User{
		FullName:     name,
		Email:        email,
		PasswordHash: string(hash),
		Status:       auth.StatusActive,
		RoleID:       role.ID,
		OrgID:        orgID,
	}
	if err := f.db.Create(&user).Error; err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return user
}

func TestListUsersScoping(t *testing.T) {
	f := setup(t)
	f.addUser(t, "Acme Alice", "alice@acme.test", f.roles.User, &f.acme.ID)
	f.addUser(t, "Acme Andy", "andy@acme.test", f.roles.Admin, &f.acme.ID)
	f.addUser(t, "Globe Gina", "gina@globe.test", f.roles.User, &f.globe.ID)

	t.Run("superadmin sees all", func(t *testing.T) {
		users, err := f.svc.ListUsers(context.Background(), auth.RoleSuperAdmin, nil)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(users) != 3 {
			t.Errorf("got %d users, want 3", len(users))
		}
	})

	t.Run("admin sees own org only", func(t *testing.T) {
		users, err := f.svc.ListUsers(context.Background(), auth.RoleAdmin, &f.acme.ID)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(users) != 2 {
			t.Fatalf("got %d users, want 2", len(users))
		}
		for _, u := range users {
			if u.Org == nil || u.Org.Name != "Acme" {
				t.Errorf("user %s outside caller org: %+v", u.Email, u.Org)
			}
		}
	})

	t.Run("admin without org sees none", func(t *testing.T) {
		users, err := f.svc.ListUsers(context.Background(), auth.RoleAdmin, nil)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(users) != 0 {
			t.Errorf("got %d users, want 0", len(users))
		}
	})

	t.Run("regular user forbidden", func(t *testing.T) {
		if _, err := f.svc.ListUsers(context.Background(), auth.RoleUser, &f.acme.ID); !errors.Is(err, ErrForbidden) {
			t.Errorf("got %v, want ErrForbidden", err)
		}
	})
}

func TestListUsersStripsPasswordHash(t *testing.T) {
	f := setup(t)
	f.addUser(t, "Acme Alice", "alice@acme.test", f.roles.User, &f.acme.ID)

	users, err := f.svc.ListUsers(context.Background(), auth.RoleSuperAdmin, nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if users[0].Role != auth.RoleUser {
		t.Errorf("role name = %q, want %q", users[0].Role, auth.RoleUser)
	}
	// projections carry no credential material at all
	if users[0].Email != "alice@acme.test" {
		t.Errorf("email = %q", users[0].Email)
	}
}

func TestUpdateUser(t *testing.T) {
	f := setup(t)
	admin := f.addUser(t, "Acme Andy", "andy@acme.test", f.roles.Admin, &f.acme.ID)
	target := f.addUser(t, "Acme Alice", "alice@acme.test", f.roles.User, &f.acme.ID)

	newName := "Alice Senior"
	newRole := "Admin"
	newStatus := auth.StatusDisabled
	updated, err := f.svc.UpdateUser(context.Background(), target.ID, UpdateUserInput{
		FullName: &newName,
		Role:     &newRole,
		Status:   &newStatus,
	}, admin.ID, "127.0.0.1")
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if updated.FullName != newName {
		t.Errorf("fullName = %q, want %q", updated.FullName, newName)
	}
	if updated.Role != auth.RoleAdmin {
		t.Errorf("role = %q, want Admin", updated.Role)
	}
	if updated.Status != auth.StatusDisabled {
		t.Errorf("status = %q, want Disabled", updated.Status)
	}
}

func TestUpdateUserValidation(t *testing.T) {
	f := setup(t)
	admin := f.addUser(t, "Acme Andy", "andy@acme.test", f.roles.Admin, &f.acme.ID)
	target := f.addUser(t, "Acme Alice", "alice@acme.test", f.roles.User, &f.acme.ID)

	badRole := "Owner"
	if _, err := f.svc.UpdateUser(context.Background(), target.ID, UpdateUserInput{Role: &badRole}, admin.ID, ""); !errors.Is(err, ErrUnknownRole) {
		t.Errorf("unknown role: got %v", err)
	}

	badStatus := "Paused"
	if _, err := f.svc.UpdateUser(context.Background(), target.ID, UpdateUserInput{Status: &badStatus}, admin.ID, ""); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("invalid status: got %v", err)
	}

	if _, err := f.svc.UpdateUser(context.Background(), 9999, UpdateUserInput{}, admin.ID, ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown id: got %v", err)
	}
}

func TestDeleteUser(t *testing.T) {
	f := setup(t)
	admin := f.addUser(t, "Acme Andy", "andy@acme.test", f.roles.Admin, &f.acme.ID)
	target := f.addUser(t, "Acme Alice", "alice@acme.test", f.roles.User, &f.acme.ID)

	if err := f.svc.DeleteUser(context.Background(), target.ID, admin.ID, ""); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := f.svc.DeleteUser(context.Background(), target.ID, admin.ID, ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: got %v, want ErrNotFound", err)
	}

	var count int64
	f.db.Model(&auth.User{}).Count(&count)
	if count != 1 {
		t.Errorf("remaining users = %d, want 1", count)
	}
}
