package department

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/Danhnam1/Audit-System-sub000/internal/transport"
	"github.com/Danhnam1/Audit-System-sub000/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	GetAllDepartments(ctx context.Context) ([]DepartmentResponse, error)
	GetByID(ctx context.Context, deptID string) (*Department, error)
	GetSensitivity(ctx context.Context, deptID string) (*SensitivityResponse, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

func (h *Handler) GetDepartments(w http.ResponseWriter, r *http.Request) {
	departments, err := h.Service.GetAllDepartments(r.Context())
	if err != nil {
		h.Logger.Error("GetDepartments: service error", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "failed to get departments")
		return
	}

	h.WriteJSON(w, http.StatusOK, DepartmentsResponse{Departments: departments})
}

func (h *Handler) GetDepartment(w http.ResponseWriter, r *http.Request) {
	deptID := chi.URLParam(r, "id")

	dept, err := h.Service.GetByID(r.Context(), deptID)
	if err != nil {
		h.Logger.Error("GetDepartment: service error", "error", err, "dept_id", deptID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, dept.ToResponse())
}

func (h *Handler) GetSensitivity(w http.ResponseWriter, r *http.Request) {
	deptID := chi.URLParam(r, "id")

	resp, err := h.Service.GetSensitivity(r.Context(), deptID)
	if err != nil {
		h.Logger.Error("GetSensitivity: service error", "error", err, "dept_id", deptID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, resp)
}
