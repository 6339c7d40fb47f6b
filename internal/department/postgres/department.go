package postgres

import (
	"errors"

	deptDatamodel "github.com/Danhnam1/Audit-System-sub000/internal/core/datamodel/department"
	"github.com/Danhnam1/Audit-System-sub000/internal/department"
	"gorm.io/gorm"
)

type DepartmentRepository struct {
	db *gorm.DB
}

func NewDepartmentRepository(db *gorm.DB) department.RepositoryAPI {
	return &DepartmentRepository{db: db}
}

func (r *DepartmentRepository) GetAll() ([]*deptDatamodel.Department, error) {
	var departments []*deptDatamodel.Department
	err := r.db.Preload("SensitiveAreas").Order("name ASC").Find(&departments).Error
	return departments, err
}

func (r *DepartmentRepository) GetByID(id string) (*deptDatamodel.Department, error) {
	var dept deptDatamodel.Department
	err := r.db.Preload("SensitiveAreas").Where("id = ?", id).First(&dept).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &dept, nil
}

func (r *DepartmentRepository) CountSensitiveAreas(deptID string) (int64, error) {
	var count int64
	err := r.db.Model(&deptDatamodel.SensitiveArea{}).
		Where("dept_id = ?", deptID).
		Count(&count).Error
	return count, err
}
