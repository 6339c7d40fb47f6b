package department

type DepartmentResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IsSensitive bool   `json:"is_sensitive"`
}

type SensitivityResponse struct {
	DeptID      string `json:"dept_id"`
	IsSensitive bool   `json:"is_sensitive"`
	AreaCount   int    `json:"area_count"`
}

type DepartmentsResponse struct {
	Departments []DepartmentResponse `json:"departments"`
}
