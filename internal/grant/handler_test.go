package grant_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Danhnam1/Audit-System-sub000/internal"
	"github.com/Danhnam1/Audit-System-sub000/internal/auth"
	"github.com/Danhnam1/Audit-System-sub000/internal/grant"
)

// Mock service for handler tests
type mockGrantService struct {
	issueResp    *grant.GrantResponse
	issueErr     error
	scanResult   *grant.ScanResult
	scanErr      error
	verifyResult *grant.VerifyResult
	verifyErr    error
	listResp     []grant.GrantResponse
	listErr      error
	getResp      *grant.GrantResponse
	getErr       error
	revokeErr    error
	revokedID    string
	lastFilter   grant.ListFilter
}

func (m *mockGrantService) Issue(ctx context.Context, dto grant.IssueGrantDTO) (*grant.GrantResponse, error) {
	return m.issueResp, m.issueErr
}

func (m *mockGrantService) Scan(ctx context.Context, token, scannerUserID string) (*grant.ScanResult, error) {
	return m.scanResult, m.scanErr
}

func (m *mockGrantService) VerifyCode(ctx context.Context, token, scannerUserID, code string) (*grant.VerifyResult, error) {
	return m.verifyResult, m.verifyErr
}

func (m *mockGrantService) List(ctx context.Context, filter grant.ListFilter) ([]grant.GrantResponse, error) {
	m.lastFilter = filter
	return m.listResp, m.listErr
}

func (m *mockGrantService) GetByID(ctx context.Context, id string) (*grant.GrantResponse, error) {
	return m.getResp, m.getErr
}

func (m *mockGrantService) Revoke(ctx context.Context, grantID, adminID string) error {
	m.revokedID = grantID
	return m.revokeErr
}

var _ = Describe("Grant Handler", func() {
	var (
		service *mockGrantService
		handler *grant.Handler
		router  *chi.Mux
		user    *auth.User
	)

	authedRequest := func(method, target string, body interface{}) *http.Request {
		var buf bytes.Buffer
		if body != nil {
			Expect(json.NewEncoder(&buf).Encode(body)).To(Succeed())
		}
		req := httptest.NewRequest(method, target, &buf)
		return req.WithContext(auth.ContextWithUser(req.Context(), user))
	}

	BeforeEach(func() {
		service = &mockGrantService{}
		handler = grant.NewHandler(service)
		user = &auth.User{ID: "user-1", Email: "scanner@example.com"}

		router = chi.NewRouter()
		router.Post("/grants", handler.IssueGrant)
		router.Get("/grants", handler.ListGrants)
		router.Get("/grants/{id}", handler.GetGrant)
		router.Post("/grants/{id}/revoke", handler.RevokeGrant)
		router.Post("/grants/scan", handler.ScanGrant)
		router.Post("/grants/verify-code", handler.VerifyGrantCode)
	})

	Describe("IssueGrant", func() {
		It("should return 201 with the issued grant", func() {
			service.issueResp = &grant.GrantResponse{
				ID:        "grant-1",
				AuditID:   "audit-1",
				Token:     "tok",
				Status:    grant.StatusActive,
				ValidFrom: time.Now(),
				ValidTo:   time.Now().Add(time.Hour),
			}

			req := authedRequest(http.MethodPost, "/grants", grant.IssueGrantDTO{
				AuditID:   "audit-1",
				AuditorID: "auditor-1",
				DeptID:    "dept-1",
				ValidFrom: time.Now(),
				ValidTo:   time.Now().Add(time.Hour),
			})
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusCreated))

			var resp grant.GrantResponse
			Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
			Expect(resp.ID).To(Equal("grant-1"))
		})

		It("should return 401 without an authenticated user", func() {
			req := httptest.NewRequest(http.MethodPost, "/grants", bytes.NewBufferString("{}"))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusUnauthorized))
		})

		It("should return 400 for a malformed body", func() {
			req := httptest.NewRequest(http.MethodPost, "/grants", bytes.NewBufferString("{not json"))
			req = req.WithContext(auth.ContextWithUser(req.Context(), user))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("should map service validation errors to 400", func() {
			service.issueErr = internal.NewValidationError("valid_from must be before valid_to", internal.ErrCodeInvalidTimeWindow)

			req := authedRequest(http.MethodPost, "/grants", grant.IssueGrantDTO{})
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("should map unknown references to 404", func() {
			service.issueErr = internal.ErrAuditNotFound

			req := authedRequest(http.MethodPost, "/grants", grant.IssueGrantDTO{})
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusNotFound))
		})
	})

	Describe("ScanGrant", func() {
		It("should return 200 for a valid scan", func() {
			service.scanResult = &grant.ScanResult{
				IsValid:   true,
				AuditID:   "audit-1",
				AuditorID: "auditor-1",
				DeptID:    "dept-1",
			}

			req := authedRequest(http.MethodPost, "/grants/scan", grant.ScanDTO{Token: "tok"})
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))

			var result grant.ScanResult
			Expect(json.NewDecoder(w.Body).Decode(&result)).To(Succeed())
			Expect(result.IsValid).To(BeTrue())
		})

		It("should return 200 even when the scan is invalid", func() {
			service.scanResult = &grant.ScanResult{IsValid: false, Reason: grant.ReasonExpired}

			req := authedRequest(http.MethodPost, "/grants/scan", grant.ScanDTO{Token: "tok"})
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))

			var result grant.ScanResult
			Expect(json.NewDecoder(w.Body).Decode(&result)).To(Succeed())
			Expect(result.IsValid).To(BeFalse())
			Expect(result.Reason).To(Equal(grant.ReasonExpired))
		})

		It("should return 400 when the token is missing", func() {
			req := authedRequest(http.MethodPost, "/grants/scan", grant.ScanDTO{})
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("should return 401 without an authenticated user", func() {
			req := httptest.NewRequest(http.MethodPost, "/grants/scan", bytes.NewBufferString("{}"))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusUnauthorized))
		})
	})

	Describe("VerifyGrantCode", func() {
		It("should return the verification outcome", func() {
			service.verifyResult = &grant.VerifyResult{IsValid: false, Reason: grant.ReasonCodeMismatch}

			req := authedRequest(http.MethodPost, "/grants/verify-code", grant.VerifyCodeDTO{Token: "tok", Code: "000000"})
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))

			var result grant.VerifyResult
			Expect(json.NewDecoder(w.Body).Decode(&result)).To(Succeed())
			Expect(result.IsValid).To(BeFalse())
			Expect(result.Reason).To(Equal(grant.ReasonCodeMismatch))
		})

		It("should return 400 when the code is missing", func() {
			req := authedRequest(http.MethodPost, "/grants/verify-code", grant.VerifyCodeDTO{Token: "tok"})
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("RevokeGrant", func() {
		It("should revoke by path id", func() {
			req := authedRequest(http.MethodPost, "/grants/grant-42/revoke", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(service.revokedID).To(Equal("grant-42"))
		})

		It("should return 404 for an unknown grant", func() {
			service.revokeErr = internal.ErrGrantNotFound

			req := authedRequest(http.MethodPost, "/grants/missing/revoke", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusNotFound))
		})
	})

	Describe("ListGrants", func() {
		It("should pass query filters through to the service", func() {
			service.listResp = []grant.GrantResponse{}

			req := authedRequest(http.MethodGet, "/grants?audit_id=audit-1&dept_id=dept-1&limit=5&offset=10", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(service.lastFilter.AuditID).To(Equal("audit-1"))
			Expect(service.lastFilter.DeptID).To(Equal("dept-1"))
			Expect(service.lastFilter.Limit).To(Equal(5))
			Expect(service.lastFilter.Offset).To(Equal(10))
		})

		It("should map service errors onto their status codes", func() {
			service.listErr = internal.NewExternalError("directory lookup failed", nil)

			req := authedRequest(http.MethodGet, "/grants", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusBadGateway))
		})

		It("should ignore out-of-range paging values", func() {
			service.listResp = []grant.GrantResponse{}

			req := authedRequest(http.MethodGet, "/grants?limit=9999&offset=-3", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(service.lastFilter.Limit).To(Equal(20))
			Expect(service.lastFilter.Offset).To(Equal(0))
		})
	})
})
