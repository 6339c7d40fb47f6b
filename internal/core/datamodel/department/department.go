package department

import "time"

type Department struct {
	ID          string    `gorm:"primaryKey;column:id"`
	Name        string    `gorm:"column:name;uniqueIndex;not null"`
	Description string    `gorm:"column:description"`
	IsActive    bool      `gorm:"column:is_active;default:true"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`

	SensitiveAreas []SensitiveArea `gorm:"foreignKey:DeptID"`
}

func (Department) TableName() string {
	return "departments"
}

// SensitiveArea is a declared restricted zone within a department. A
// department with one or more areas requires the second factor at scan time.
type SensitiveArea struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	DeptID    string    `gorm:"column:dept_id;index;not null"`
	Name      string    `gorm:"column:name;not null"`
	Location  string    `gorm:"column:location"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (SensitiveArea) TableName() string {
	return "department_sensitive_areas"
}
