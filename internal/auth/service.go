package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log"
	"regexp"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/ledgerly/ledgerly-backend/config"
	"github.com/ledgerly/ledgerly-backend/internal/auditlog"
	"github.com/ledgerly/ledgerly-backend/internal/organization"
)

var (
	ErrInvalidInput        = errors.New("name, email and password are required")
	ErrInvalidEmail        = errors.New("invalid email address")
	ErrWeakPassword        = errors.New("password must be at least 8 characters")
	ErrEmailTaken          = errors.New("user already exists")
	ErrUnknownOrganization = errors.New("unknown organization")
	ErrUnknownRole         = errors.New("unknown role")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrAccountDisabled     = errors.New("account is disabled")
	ErrOrgDisabled         = errors.New("organization is disabled")
	ErrInvalidResetToken   = errors.New("invalid or expired reset token")
	ErrUserNotFound        = errors.New("user not found")
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const resetTokenTTL = 15 * time.Minute

// Mailer delivers password reset links. The SMTP implementation lives in
// utils; tests substitute a recording fake.
type Mailer interface {
	SendResetLink(to, token string) error
}

type Service interface {
	Register(ctx context.Context, in RegisterInput, ip string) (*User, error)
	Login(ctx context.Context, email, password, ip string) (string, *User, error)
	RequestPasswordReset(ctx context.Context, email, ip string) error
	ConfirmNewPassword(ctx context.Context, token, newPassword, ip string) error
	GetProfile(ctx context.Context, userID uint) (*User, error)
	GetUserByID(userID uint) (*User, error)
}

type service struct {
	repo      Repository
	orgs      organization.Repository
	roles     *RoleSet
	mailer    Mailer
	auditSvc  auditlog.Service
	jwtSecret string
	tokenTTL  time.Duration
}

func NewService(repo Repository, orgs organization.Repository, roles *RoleSet, mailer Mailer, auditSvc auditlog.Service, cfg *config.Config) Service {
	return &service{
		repo:      repo,
		orgs:      orgs,
		roles:     roles,
		mailer:    mailer,
		auditSvc:  auditSvc,
		jwtSecret: cfg.JWTSecret,
		tokenTTL:  time.Duration(cfg.JWTExpiresHours) * time.Hour,
	}
}

// =============================
// Register
// =============================

type RegisterInput struct {
	FullName     string
	Organization string
	Email        string
	Password     string
	Role         string
}

func (s *service) Register(ctx context.Context, in RegisterInput, ip string) (*User, error) {
	if in.FullName == "" || in.Organization == "" || in.Email == "" || in.Password == "" || in.Role == "" {
		return nil, ErrInvalidInput
	}
	if !emailPattern.MatchString(in.Email) {
		return nil, ErrInvalidEmail
	}
	if len(in.Password) < 8 {
		return nil, ErrWeakPassword
	}

	// Both lookups happen before any write: an unknown role or organization
	// must not leave a half-created account behind.
	role, ok := s.roles.ByName(in.Role)
	if !ok {
		return nil, ErrUnknownRole
	}
	org, err := s.orgs.FindByName(ctx, in.Organization)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUnknownOrganization
	}
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.FindByEmail(in.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &User{
		FullName:     in.FullName,
		Email:        in.Email,
		PasswordHash: string(hash),
		Status:       StatusActive,
		RoleID:       role.ID,
		OrgID:        &org.ID,
	}
	if err := s.repo.Create(user); err != nil {
		// Two concurrent registrations race at the unique index; the loser
		// gets the same conflict answer as a pre-checked duplicate.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	user.Role = role
	user.Org = org

	s.auditSvc.Log(ctx, auditlog.Entry{
		UserID:    &user.ID,
		OrgID:     user.OrgID,
		Action:    "auth.register",
		Details:   map[string]interface{}{"email": user.Email, "role": role.Name},
		IPAddress: ip,
		Status:    auditlog.StatusSuccess,
	})
	return user, nil
}

// =============================
// Login
// =============================

func (s *service) Login(ctx context.Context, email, password, ip string) (string, *User, error) {
	user, err := s.repo.FindByEmail(email)
	if err != nil {
		// Unknown email and wrong password produce the same answer so the
		// response does not reveal which accounts exist.
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logAuthFailure(ctx, email, ip, "unknown email")
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logAuthFailure(ctx, email, ip, "password mismatch")
		return "", nil, ErrInvalidCredentials
	}

	// Best-effort; a failed timestamp write must not block the login.
	if err := s.repo.UpdateLastLogin(user.ID, time.Now()); err != nil {
		log.Printf("auth: last login update failed for user %d: %v", user.ID, err)
	}

	if user.Status != StatusActive {
		s.logAuthFailure(ctx, email, ip, "account disabled")
		return "", nil, ErrAccountDisabled
	}
	if user.Org != nil && user.Org.Status != organization.StatusActive {
		s.logAuthFailure(ctx, email, ip, "organization disabled")
		return "", nil, ErrOrgDisabled
	}

	token, err := s.generateToken(user)
	if err != nil {
		return "", nil, err
	}

	s.auditSvc.Log(ctx, auditlog.Entry{
		UserID:    &user.ID,
		OrgID:     user.OrgID,
		Action:    "auth.login",
		Details:   map[string]interface{}{"email": user.Email},
		IPAddress: ip,
		Status:    auditlog.StatusSuccess,
	})
	return token, user, nil
}

func (s *service) generateToken(user *User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"exp":     time.Now().Add(s.tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// =============================
// Password reset
// =============================

func (s *service) RequestPasswordReset(ctx context.Context, email, ip string) error {
	user, err := s.repo.FindByEmail(email)
	if err != nil {
		// The caller always receives the same generic answer; an unknown
		// email is not an error.
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	token := generateResetToken()
	if err := s.repo.SetResetToken(user.ID, token, time.Now().Add(resetTokenTTL)); err != nil {
		return err
	}

	if err := s.mailer.SendResetLink(user.Email, token); err != nil {
		log.Printf("auth: reset link delivery failed for %s: %v", user.Email, err)
	}

	s.auditSvc.Log(ctx, auditlog.Entry{
		UserID:    &user.ID,
		OrgID:     user.OrgID,
		Action:    "auth.reset_requested",
		Details:   map[string]interface{}{"email": user.Email},
		IPAddress: ip,
		Status:    auditlog.StatusSuccess,
	})
	return nil
}

func (s *service) ConfirmNewPassword(ctx context.Context, token, newPassword, ip string) error {
	if len(newPassword) < 8 {
		return ErrWeakPassword
	}

	// A single lookup covers unknown and expired tokens; both answer with
	// the same error so the response reveals nothing about token state.
	user, err := s.repo.FindByResetToken(token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidResetToken
		}
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePassword(user.ID, string(hash)); err != nil {
		return err
	}
	if err := s.repo.ClearResetToken(user.ID); err != nil {
		return err
	}

	s.auditSvc.Log(ctx, auditlog.Entry{
		UserID:    &user.ID,
		OrgID:     user.OrgID,
		Action:    "auth.password_reset",
		IPAddress: ip,
		Status:    auditlog.StatusSuccess,
	})
	return nil
}

// =============================
// Profile
// =============================

func (s *service) GetProfile(ctx context.Context, userID uint) (*User, error) {
	user, err := s.repo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if user.Status != StatusActive {
		return nil, ErrAccountDisabled
	}
	if user.Org != nil && user.Org.Status != organization.StatusActive {
		return nil, ErrOrgDisabled
	}

	return user, nil
}

func (s *service) GetUserByID(userID uint) (*User, error) {
	return s.repo.FindByID(userID)
}

// =============================
// Helpers
// =============================

func (s *service) logAuthFailure(ctx context.Context, email, ip, reason string) {
	s.auditSvc.Log(ctx, auditlog.Entry{
		Action:    "auth.login",
		Details:   map[string]interface{}{"email": email, "reason": reason},
		IPAddress: ip,
		Status:    auditlog.StatusFailure,
	})
}

func generateResetToken() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
