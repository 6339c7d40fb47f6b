package department

import (
	"time"

	deptDatamodel "github.com/Danhnam1/Audit-System-sub000/internal/core/datamodel/department"
)

type Department struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	IsActive       bool      `json:"is_active"`
	SensitiveAreas []string  `json:"sensitive_areas"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// IsSensitive reports whether the department has declared sensitive areas.
func (d *Department) IsSensitive() bool {
	return len(d.SensitiveAreas) > 0
}

func (d *Department) ToResponse() DepartmentResponse {
	return DepartmentResponse{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		IsSensitive: d.IsSensitive(),
	}
}

func FromDataModel(m *deptDatamodel.Department) *Department {
	areas := make([]string, 0, len(m.SensitiveAreas))
	for _, a := range m.SensitiveAreas {
		areas = append(areas, a.Name)
	}
	return &Department{
		ID:             m.ID,
		Name:           m.Name,
		Description:    m.Description,
		IsActive:       m.IsActive,
		SensitiveAreas: areas,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}
