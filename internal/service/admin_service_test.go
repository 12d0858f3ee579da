package service

import (
	"testing"
	"time"

	"github.com/nbwschool/admission-backend/internal/config"
	"github.com/nbwschool/admission-backend/internal/model"
	"github.com/nbwschool/admission-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAdminService(t *testing.T) (*AdminService, *AuthService, *testutil.FakeRedis) {
	t.Helper()
	rdb := testutil.NewFakeRedis()
	auth := NewAuthService(&config.Config{
		JWTSecret:  "test-secret",
		JWTExpiry:  time.Hour,
		BcryptCost: bcrypt.MinCost,
	}, rdb)
	return NewAdminService(testutil.NewAdminStore(), auth), auth, rdb
}

func createAdmin(t *testing.T, svc *AdminService, email string, role model.Role) *model.Admin {
	t.Helper()
	a, err := svc.Create(t.Context(), model.CreateAdminRequest{Email: email, Name: "Staff", Password: "password123", Role: role})
	require.NoError(t, err)
	return a
}

func TestAdminService_LoginOpensSession(t *testing.T) {
	svc, auth, _ := newAdminService(t)
	createAdmin(t, svc, "head@school.ac.th", model.RoleSuperAdmin)

	res, err := svc.Login(t.Context(), model.AdminLoginRequest{Email: "head@school.ac.th", Password: "password123"})
	require.NoError(t, err)
	assert.ElementsMatch(t, model.RoleSuperAdmin.Permissions(), res.Permissions)

	claims, err := auth.ValidateToken(res.Token)
	require.NoError(t, err)
	require.NoError(t, auth.ValidateAdminSession(t.Context(), claims))

	require.NoError(t, auth.Logout(t.Context(), claims))
	assert.ErrorIs(t, auth.ValidateAdminSession(t.Context(), claims), ErrSessionNotFound)
}

func TestAdminService_LoginFailuresLookAlike(t *testing.T) {
	svc, _, _ := newAdminService(t)
	createAdmin(t, svc, "head@school.ac.th", model.RoleSuperAdmin)

	_, err := svc.Login(t.Context(), model.AdminLoginRequest{Email: "head@school.ac.th", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(t.Context(), model.AdminLoginRequest{Email: "nobody@school.ac.th", Password: "password123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAdminService_EmailIsUnique(t *testing.T) {
	svc, _, _ := newAdminService(t)
	createAdmin(t, svc, "a@school.ac.th", model.RoleStaff)

	_, err := svc.Create(t.Context(), model.CreateAdminRequest{Email: "a@school.ac.th", Name: "Other", Password: "password123", Role: model.RoleStaff})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestAdminService_KeepsLastSuperAdmin(t *testing.T) {
	svc, _, _ := newAdminService(t)
	head := createAdmin(t, svc, "head@school.ac.th", model.RoleSuperAdmin)
	staff := createAdmin(t, svc, "staff@school.ac.th", model.RoleStaff)

	assert.ErrorIs(t, svc.Delete(t.Context(), head.ID, head.ID), ErrCannotDeleteSelf)
	assert.ErrorIs(t, svc.Delete(t.Context(), staff.ID, head.ID), ErrLastSuperAdmin)

	_, err := svc.Update(t.Context(), head.ID, model.UpdateAdminRequest{Email: head.Email, Name: head.Name, Role: model.RoleStaff})
	assert.ErrorIs(t, err, ErrLastSuperAdmin)

	require.NoError(t, svc.Delete(t.Context(), head.ID, staff.ID))
	_, err = svc.GetByID(t.Context(), staff.ID)
	assert.ErrorIs(t, err, ErrAdminNotFound)
}

func TestAdminService_PasswordChangeRevokesSessions(t *testing.T) {
	svc, auth, _ := newAdminService(t)
	staff := createAdmin(t, svc, "staff@school.ac.th", model.RoleStaff)
	res, err := svc.Login(t.Context(), model.AdminLoginRequest{Email: staff.Email, Password: "password123"})
	require.NoError(t, err)
	claims, err := auth.ValidateToken(res.Token)
	require.NoError(t, err)

	_, err = svc.Update(t.Context(), staff.ID, model.UpdateAdminRequest{Email: staff.Email, Name: "Renamed", Password: "newpassword1", Role: model.RoleStaff})
	require.NoError(t, err)
	assert.ErrorIs(t, auth.ValidateAdminSession(t.Context(), claims), ErrSessionNotFound)

	err = svc.ChangePassword(t.Context(), staff.ID, model.ChangePasswordRequest{CurrentPassword: "password123", NewPassword: "another-pass"})
	assert.ErrorIs(t, err, ErrWrongPassword)
	require.NoError(t, svc.ChangePassword(t.Context(), staff.ID, model.ChangePasswordRequest{CurrentPassword: "newpassword1", NewPassword: "another-pass"}))

	_, err = svc.Login(t.Context(), model.AdminLoginRequest{Email: staff.Email, Password: "another-pass"})
	assert.NoError(t, err)
}
