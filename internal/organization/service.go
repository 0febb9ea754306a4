package organization

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/ledgerly/ledgerly-backend/internal/auditlog"
)

var (
	ErrNotFound     = errors.New("organization not found")
	ErrInvalidInput = errors.New("invalid organization input")
)

type CreateInput struct {
	Name         string
	ContactEmail string
	Phone        string
	Plan         string
	Status       string
}

type UpdateInput struct {
	Name         *string
	ContactEmail *string
	Phone        *string
	Plan         *string
	Status       *string
}

type Service interface {
	Create(ctx context.Context, in CreateInput, actorID uint, ip string) (*Organization, error)
	List(ctx context.Context) ([]Organization, error)
	GetByID(ctx context.Context, id uint) (*Organization, error)
	Update(ctx context.Context, id uint, in UpdateInput, actorID uint, ip string) (*Organization, error)
	Delete(ctx context.Context, id uint, actorID uint, ip string) error
}

type service struct {
	repo     Repository
	auditSvc auditlog.Service
}

func NewService(repo Repository, auditSvc auditlog.Service) Service {
	return &service{repo: repo, auditSvc: auditSvc}
}

func (s *service) Create(ctx context.Context, in CreateInput, actorID uint, ip string) (*Organization, error) {
	if in.Name == "" || in.ContactEmail == "" || in.Phone == "" {
		return nil, ErrInvalidInput
	}
	if in.Plan == "" {
		in.Plan = PlanStarter
	}
	if !ValidPlan(in.Plan) {
		return nil, ErrInvalidInput
	}
	if in.Status == "" {
		in.Status = StatusActive
	}
	if !ValidStatus(in.Status) {
		return nil, ErrInvalidInput
	}

	org := &Organization{
		Name:         in.Name,
		ContactEmail: in.ContactEmail,
		Phone:        in.Phone,
		Plan:         in.Plan,
		Status:       in.Status,
	}
	if err := s.repo.Create(ctx, org); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, auditlog.Entry{
		UserID:    &actorID,
		OrgID:     &org.ID,
		Action:    "organization.create",
		Details:   map[string]interface{}{"name": org.Name, "plan": org.Plan},
		IPAddress: ip,
		Status:    auditlog.StatusSuccess,
	})
	return org, nil
}

func (s *service) List(ctx context.Context) ([]Organization, error) {
	return s.repo.FindAll(ctx)
}

func (s *service) GetByID(ctx context.Context, id uint) (*Organization, error) {
	org, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return org, err
}

func (s *service) Update(ctx context.Context, id uint, in UpdateInput, actorID uint, ip string) (*Organization, error) {
	org, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		if *in.Name == "" {
			return nil, ErrInvalidInput
		}
		org.Name = *in.Name
	}
	if in.ContactEmail != nil {
		org.ContactEmail = *in.ContactEmail
	}
	if in.Phone != nil {
		org.Phone = *in.Phone
	}
	if in.Plan != nil {
		if !ValidPlan(*in.Plan) {
			return nil, ErrInvalidInput
		}
		org.Plan = *in.Plan
	}
	if in.Status != nil {
		if !ValidStatus(*in.Status) {
			return nil, ErrInvalidInput
		}
		org.Status = *in.Status
	}

	if err := s.repo.Update(ctx, org); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, auditlog.Entry{
		UserID:    &actorID,
		OrgID:     &org.ID,
		Action:    "organization.update",
		Details:   map[string]interface{}{"name": org.Name},
		IPAddress: ip,
		Status:    auditlog.StatusSuccess,
	})
	return org, nil
}

func (s *service) Delete(ctx context.Context, id uint, actorID uint, ip string) error {
	org, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.auditSvc.Log(ctx, auditlog.Entry{
		UserID:    &actorID,
		OrgID:     &id,
		Action:    "organization.delete",
		Details:   map[string]interface{}{"name": org.Name},
		IPAddress: ip,
		Status:    auditlog.StatusSuccess,
	})
	return nil
}
