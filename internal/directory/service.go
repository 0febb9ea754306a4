package directory

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/ledgerly/ledgerly-backend/internal/auditlog"
	"github.com/ledgerly/ledgerly-backend/internal/auth"
)

var (
	ErrNotFound      = errors.New("user not found")
	ErrUnknownRole   = errors.New("unknown role")
	ErrInvalidStatus = errors.New("invalid status")
	ErrForbidden     = errors.New("insufficient role")
)

type UpdateUserInput struct {
	FullName *string
	Status   *string
	Role     *string
	OrgID    *uint
}

type Service interface {
	// ListUsers applies the caller's visibility: SuperAdmin sees every user,
	// Admin only their own organization. The scoping comes from the verified
	// token identity, never from request parameters.
	ListUsers(ctx context.Context, callerRole string, callerOrgID *uint) ([]auth.Projection, error)
	UpdateUser(ctx context.Context, id uint, in UpdateUserInput, actorID uint, ip string) (*auth.Projection, error)
	DeleteUser(ctx context.Context, id uint, actorID uint, ip string) error
}

type service struct {
	repo     Repository
	roles    *auth.RoleSet
	auditSvc auditlog.Service
}

func NewService(repo Repository, roles *auth.RoleSet, auditSvc auditlog.Service) Service {
	return &service{repo: repo, roles: roles, auditSvc: auditSvc}
}

func (s *service) ListUsers(ctx context.Context, callerRole string, callerOrgID *uint) ([]auth.Projection, error) {
	var (
		users []auth.User
		err   error
	)

	switch callerRole {
	case auth.RoleSuperAdmin:
		users, err = s.repo.FindAll(ctx)
	case auth.RoleAdmin:
		if callerOrgID == nil {
			return []auth.Projection{}, nil
		}
		users, err = s.repo.FindByOrg(ctx, *callerOrgID)
	default:
		return nil, ErrForbidden
	}
	if err != nil {
		return nil, err
	}

	projections := make([]auth.Projection, 0, len(users))
	for i := range users {
		projections = append(projections, auth.Project(&users[i]))
	}
	return projections, nil
}

func (s *service) UpdateUser(ctx context.Context, id uint, in UpdateUserInput, actorID uint, ip string) (*auth.Projection, error) {
	user, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if in.FullName != nil && *in.FullName != "" {
		user.FullName = *in.FullName
	}
	if in.Status != nil {
		if *in.Status != auth.StatusActive && *in.Status != auth.StatusDisabled {
			return nil, ErrInvalidStatus
		}
		user.Status = *in.Status
	}
	if in.Role != nil {
		role, ok := s.roles.ByName(*in.Role)
		if !ok {
			return nil, ErrUnknownRole
		}
		user.RoleID = role.ID
		user.Role = role
	}
	if in.OrgID != nil {
		user.OrgID = in.OrgID
		user.Org = nil
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	// Reload so the projection reflects the stored associations.
	updated, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, auditlog.Entry{
		UserID:    &actorID,
		OrgID:     updated.OrgID,
		Action:    "directory.user_update",
		Details:   map[string]interface{}{"target_user_id": id, "target_email": updated.Email},
		IPAddress: ip,
		Status:    auditlog.StatusSuccess,
	})

	p := auth.Project(updated)
	return &p, nil
}

func (s *service) DeleteUser(ctx context.Context, id uint, actorID uint, ip string) error {
	user, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	// Import records referencing the user stay behind on purpose: the
	// ledger is a historical log and keeps its denormalized user name.
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.auditSvc.Log(ctx, auditlog.Entry{
		UserID:    &actorID,
		OrgID:     user.OrgID,
		Action:    "directory.user_delete",
		Details:   map[string]interface{}{"target_user_id": id, "target_email": user.Email},
		IPAddress: ip,
		Status:    auditlog.StatusSuccess,
	})
	return nil
}
