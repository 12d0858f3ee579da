package service

import (
	"context"

	"github.com/nbwschool/admission-backend/internal/model"
)

const dashboardRecentLimit = 10

// DashboardService handles admin dashboard business logic.
type DashboardService struct {
	repo      DashboardStore
	admission *AdmissionService
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(repo DashboardStore, admission *AdmissionService) *DashboardService {
	return &DashboardService{repo: repo, admission: admission}
}

// GetDashboardData collects counts, the latest applications and the current
// admission state of every grade level.
func (s *DashboardService) GetDashboardData(ctx context.Context) (*model.DashboardStats, error) {
	byStatus, err := s.repo.CountBy(ctx, "status")
	if err != nil {
		return nil, err
	}
	byGrade, err := s.repo.CountBy(ctx, "grade_level")
	if err != nil {
		return nil, err
	}
	byProgram, err := s.repo.CountBy(ctx, "program")
	if err != nil {
		return nil, err
	}
	recent, err := s.repo.GetRecent(ctx, dashboardRecentLimit)
	if err != nil {
		return nil, err
	}
	admission, err := s.admission.Views(ctx)
	if err != nil {
		return nil, err
	}

	stats := &model.DashboardStats{
		ByStatus:     make(map[model.RegistrationStatus]int, len(model.RegistrationStatuses)),
		ByGradeLevel: byGrade,
		ByProgram:    byProgram,
		Recent:       recent,
		Admission:    admission,
	}
	for _, st := range model.RegistrationStatuses {
		stats.ByStatus[st] = byStatus[string(st)]
		stats.Total += byStatus[string(st)]
	}
	return stats, nil
}
