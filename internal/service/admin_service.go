package service

import (
	"context"
	"fmt"

	"memberportal/internal/model"
	"memberportal/internal/repository"
)

// AdminService aggregates submission data for the admin dashboard.
type AdminService struct {
	submissionRepo repository.SubmissionRepo
}

// NewAdminService creates a new admin service
func NewAdminService(submissionRepo repository.SubmissionRepo) *AdminService {
	return &AdminService{submissionRepo: submissionRepo}
}

// DashboardSnapshot is the aggregate view served to admins.
type DashboardSnapshot struct {
	TotalSubmissions int64               `json:"totalSubmissions"`
	PerSurvey        []model.SurveyCount `json:"perSurvey"`
}

// Dashboard returns submission counts per survey plus a grand total.
func (s *AdminService) Dashboard(ctx context.Context) (*DashboardSnapshot, error) {
	counts, err := s.submissionRepo.CountBySurvey(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate submissions: %w", err)
	}
	snap := &DashboardSnapshot{PerSurvey: counts}
	for _, c := range counts {
		snap.TotalSubmissions += c.Count
	}
	return snap, nil
}

// RecentSubmissions lists the latest submissions for one survey.
func (s *AdminService) RecentSubmissions(ctx context.Context, surveyID string, limit int64) ([]*model.Submission, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.submissionRepo.ListBySurvey(ctx, surveyID, limit)
}
