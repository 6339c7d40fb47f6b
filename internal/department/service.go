package department

import (
	"context"
	"log/slog"

	"github.com/Danhnam1/Audit-System-sub000/internal"
	deptDatamodel "github.com/Danhnam1/Audit-System-sub000/internal/core/datamodel/department"
)

type RepositoryAPI interface {
	GetAll() ([]*deptDatamodel.Department, error)
	GetByID(id string) (*deptDatamodel.Department, error)
	CountSensitiveAreas(deptID string) (int64, error)
}

// Service implements the department sensitivity policy: a department is
// sensitive iff it has one or more declared sensitive areas. The check is a
// pure read and safe to call repeatedly and concurrently.
type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) IsSensitive(ctx context.Context, deptID string) (bool, error) {
	dept, err := s.repo.GetByID(deptID)
	if err != nil {
		s.logger.Error("failed to look up department", "error", err, "dept_id", deptID)
		return false, err
	}
	if dept == nil || !dept.IsActive {
		return false, internal.ErrDeptNotFound
	}

	count, err := s.repo.CountSensitiveAreas(deptID)
	if err != nil {
		s.logger.Error("failed to count sensitive areas", "error", err, "dept_id", deptID)
		return false, err
	}
	return count > 0, nil
}

func (s *Service) GetSensitivity(ctx context.Context, deptID string) (*SensitivityResponse, error) {
	dept, err := s.repo.GetByID(deptID)
	if err != nil {
		return nil, err
	}
	if dept == nil || !dept.IsActive {
		return nil, internal.ErrDeptNotFound
	}

	count, err := s.repo.CountSensitiveAreas(deptID)
	if err != nil {
		return nil, err
	}

	return &SensitivityResponse{
		DeptID:      deptID,
		IsSensitive: count > 0,
		AreaCount:   int(count),
	}, nil
}

func (s *Service) GetByID(ctx context.Context, deptID string) (*Department, error) {
	dept, err := s.repo.GetByID(deptID)
	if err != nil {
		return nil, err
	}
	if dept == nil {
		return nil, internal.ErrDeptNotFound
	}
	return FromDataModel(dept), nil
}

func (s *Service) GetAllDepartments(ctx context.Context) ([]DepartmentResponse, error) {
	depts, err := s.repo.GetAll()
	if err != nil {
		s.logger.Error("failed to get departments from repository", "error", err)
		return nil, err
	}

	var responses []DepartmentResponse
	for _, m := range depts {
		d := FromDataModel(m)
		if d.IsActive {
			responses = append(responses, d.ToResponse())
		}
	}

	s.logger.Info("retrieved departments", "count", len(responses))
	return responses, nil
}
