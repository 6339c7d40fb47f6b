package grant

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Danhnam1/Audit-System-sub000/internal/auth"
	"github.com/Danhnam1/Audit-System-sub000/internal/transport"
	"github.com/Danhnam1/Audit-System-sub000/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	Issue(ctx context.Context, dto IssueGrantDTO) (*GrantResponse, error)
	Scan(ctx context.Context, token, scannerUserID string) (*ScanResult, error)
	VerifyCode(ctx context.Context, token, scannerUserID, code string) (*VerifyResult, error)
	List(ctx context.Context, filter ListFilter) ([]GrantResponse, error)
	GetByID(ctx context.Context, id string) (*GrantResponse, error)
	Revoke(ctx context.Context, grantID, adminID string) error
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

func (h *Handler) IssueGrant(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.Logger.Error("IssueGrant: user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto IssueGrantDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("IssueGrant: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.Service.Issue(r.Context(), dto)
	if err != nil {
		h.Logger.Error("IssueGrant: service error", "error", err, "audit_id", dto.AuditID, "issuer_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("IssueGrant: grant issued",
		"grant_id", resp.ID,
		"issuer_id", user.ID,
		"dept_id", resp.DeptID)

	h.WriteJSON(w, http.StatusCreated, resp)
}

func (h *Handler) ListGrants(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.UserFromContext(r.Context()); !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	limit := 20
	offset := 0

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}

	filter := ListFilter{
		AuditID:   r.URL.Query().Get("audit_id"),
		AuditorID: r.URL.Query().Get("auditor_id"),
		DeptID:    r.URL.Query().Get("dept_id"),
		Limit:     limit,
		Offset:    offset,
	}

	grants, err := h.Service.List(r.Context(), filter)
	if err != nil {
		h.Logger.Error("ListGrants: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"grants": grants,
		"limit":  filter.Limit,
		"offset": filter.Offset,
	})
}

func (h *Handler) GetGrant(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.UserFromContext(r.Context()); !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	grantID := chi.URLParam(r, "id")
	resp, err := h.Service.GetByID(r.Context(), grantID)
	if err != nil {
		h.Logger.Error("GetGrant: service error", "error", err, "grant_id", grantID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) RevokeGrant(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	grantID := chi.URLParam(r, "id")
	if err := h.Service.Revoke(r.Context(), grantID, user.ID); err != nil {
		h.Logger.Error("RevokeGrant: service error", "error", err, "grant_id", grantID, "admin_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("RevokeGrant: grant revoked", "grant_id", grantID, "admin_id", user.ID)
	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "revoked"})
}

func (h *Handler) ScanGrant(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto ScanDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("ScanGrant: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := dto.Validate(); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	result, err := h.Service.Scan(r.Context(), dto.Token, user.ID)
	if err != nil {
		h.Logger.Error("ScanGrant: service error", "error", err, "scanner_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	// An invalid scan is a normal outcome, not an HTTP error.
	h.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) VerifyGrantCode(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto VerifyCodeDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("VerifyGrantCode: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := dto.Validate(); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	result, err := h.Service.VerifyCode(r.Context(), dto.Token, user.ID, dto.Code)
	if err != nil {
		h.Logger.Error("VerifyGrantCode: service error", "error", err, "scanner_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, result)
}
