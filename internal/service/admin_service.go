package service

import (
	"context"
	"errors"

	"github.com/nbwschool/admission-backend/internal/model"
	"github.com/nbwschool/admission-backend/internal/repository"
)

var (
	ErrAdminNotFound    = errors.New("admin not found")
	ErrEmailTaken       = errors.New("email already registered")
	ErrCannotDeleteSelf = errors.New("cannot delete your own account")
	ErrLastSuperAdmin   = errors.New("at least one super admin must remain")
	ErrWrongPassword    = errors.New("current password is incorrect")
)

// AdminService handles staff accounts and login.
type AdminService struct {
	adminRepo AdminStore
	auth      *AuthService
}

// NewAdminService creates a new AdminService.
func NewAdminService(adminRepo AdminStore, auth *AuthService) *AdminService {
	return &AdminService{adminRepo: adminRepo, auth: auth}
}

// Login checks credentials and opens a session. Unknown emails and wrong
// passwords are indistinguishable to the caller.
func (s *AdminService) Login(ctx context.Context, req model.AdminLoginRequest) (*model.AdminLoginResponse, error) {
	admin, err := s.adminRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := s.auth.CheckPassword(admin.PasswordHash, req.Password); err != nil {
		return nil, err
	}

	token, expiresAt, err := s.auth.GenerateAdminToken(ctx, admin)
	if err != nil {
		return nil, err
	}
	return &model.AdminLoginResponse{
		Token:       token,
		ExpiresAt:   expiresAt.Unix(),
		Admin:       *admin,
		Permissions: admin.Role.Permissions(),
	}, nil
}

// GetByID retrieves an admin by ID.
func (s *AdminService) GetByID(ctx context.Context, id int) (*model.Admin, error) {
	a, err := s.adminRepo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrAdminNotFound
	}
	return a, err
}

func (s *AdminService) List(ctx context.Context) ([]model.Admin, error) {
	return s.adminRepo.List(ctx)
}

// Create creates a new admin.
func (s *AdminService) Create(ctx context.Context, req model.CreateAdminRequest) (*model.Admin, error) {
	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	a := &model.Admin{Email: req.Email, Name: req.Name, PasswordHash: hash, Role: req.Role}
	if err := s.adminRepo.Create(ctx, a); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return a, nil
}

// Update changes an account. A new password or role revokes its sessions so
// the new permissions take effect on the next login.
func (s *AdminService) Update(ctx context.Context, id int, req model.UpdateAdminRequest) (*model.Admin, error) {
	a, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Role == model.RoleSuperAdmin && req.Role != model.RoleSuperAdmin {
		if err := s.ensureAnotherSuperAdmin(ctx); err != nil {
			return nil, err
		}
	}

	revoke := req.Password != "" || req.Role != a.Role
	a.Email, a.Name, a.Role, a.PasswordHash = req.Email, req.Name, req.Role, ""
	if req.Password != "" {
		if a.PasswordHash, err = s.auth.HashPassword(req.Password); err != nil {
			return nil, err
		}
	}

	if err := s.adminRepo.Update(ctx, a); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateEmail):
			return nil, ErrEmailTaken
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrAdminNotFound
		}
		return nil, err
	}
	if revoke {
		if err := s.auth.RevokeAdminSessions(ctx, id); err != nil {
			return nil, err
		}
	}
	a.PasswordHash = ""
	return a, nil
}

// Delete removes an account other than the caller's own.
func (s *AdminService) Delete(ctx context.Context, callerID, id int) error {
	if callerID == id {
		return ErrCannotDeleteSelf
	}
	a, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if a.Role == model.RoleSuperAdmin {
		if err := s.ensureAnotherSuperAdmin(ctx); err != nil {
			return err
		}
	}
	if err := s.adminRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAdminNotFound
		}
		return err
	}
	return s.auth.RevokeAdminSessions(ctx, id)
}

// ChangePassword updates the caller's own password after checking the
// current one.
func (s *AdminService) ChangePassword(ctx context.Context, id int, req model.ChangePasswordRequest) error {
	a, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.auth.CheckPassword(a.PasswordHash, req.CurrentPassword); err != nil {
		return ErrWrongPassword
	}
	hash, err := s.auth.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	return s.adminRepo.UpdatePassword(ctx, id, hash)
}

func (s *AdminService) ensureAnotherSuperAdmin(ctx context.Context) error {
	n, err := s.adminRepo.CountByRole(ctx, model.RoleSuperAdmin)
	if err != nil {
		return err
	}
	if n <= 1 {
		return ErrLastSuperAdmin
	}
	return nil
}
