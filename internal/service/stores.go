package service

import (
	"context"

	"github.com/nbwschool/admission-backend/internal/model"
	"github.com/nbwschool/admission-backend/internal/registration"
)

// Persistence contracts consumed by the services. The pgx repositories
// satisfy them; tests use in-memory fakes.

type RegistrationStore interface {
	Create(ctx context.Context, reg *model.Registration) error
	GetByID(ctx context.Context, id string) (*model.Registration, error)
	GetByNationalID(ctx context.Context, nationalID string) (*model.Registration, error)
	List(ctx context.Context, f model.RegistrationFilter) ([]model.Registration, int, error)
	Each(ctx context.Context, f model.RegistrationFilter, fn func(*model.Registration) error) error
	ListAdmitted(ctx context.Context, level registration.GradeLevel) ([]model.Registration, error)
	UpdateFields(ctx context.Context, id string, cols map[string]any) (*model.Registration, error)
	UpdateStatus(ctx context.Context, id string, status model.RegistrationStatus) (*model.Registration, error)
	SetDocument(ctx context.Context, id string, slot registration.DocumentSlot, url *string) (*model.Registration, *string, error)
	AppendDocument(ctx context.Context, id, url string) (*model.Registration, error)
	RemoveDocument(ctx context.Context, id, url string) (*model.Registration, error)
	Delete(ctx context.Context, id string) (*model.Registration, error)
}

type AdmissionStore interface {
	GetByGrade(ctx context.Context, level registration.GradeLevel) (*model.AdmissionSettings, error)
	Upsert(ctx context.Context, s *model.AdmissionSettings) error
}

type AdminStore interface {
	GetByID(ctx context.Context, id int) (*model.Admin, error)
	GetByEmail(ctx context.Context, email string) (*model.Admin, error)
	List(ctx context.Context) ([]model.Admin, error)
	Create(ctx context.Context, a *model.Admin) error
	Update(ctx context.Context, a *model.Admin) error
	UpdatePassword(ctx context.Context, id int, hash string) error
	CountByRole(ctx context.Context, role model.Role) (int, error)
	Delete(ctx context.Context, id int) error
}

type NewsStore interface {
	List(ctx context.Context, publishedOnly bool, page, perPage int) ([]model.News, int, error)
	GetByID(ctx context.Context, id int) (*model.News, error)
	Create(ctx context.Context, n *model.News) error
	Update(ctx context.Context, n *model.News) error
	Delete(ctx context.Context, id int) (*model.News, error)
}

type HeroImageStore interface {
	List(ctx context.Context, activeOnly bool) ([]model.HeroImage, error)
	GetByID(ctx context.Context, id int) (*model.HeroImage, error)
	Create(ctx context.Context, h *model.HeroImage) error
	Update(ctx context.Context, h *model.HeroImage) error
	Delete(ctx context.Context, id int) (*model.HeroImage, error)
}

type DashboardStore interface {
	CountBy(ctx context.Context, dim string) (map[string]int, error)
	GetRecent(ctx context.Context, limit int) ([]model.RegistrationSummary, error)
}
