package middleware_test

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Danhnam1/Audit-System-sub000/internal/auth"
	"github.com/Danhnam1/Audit-System-sub000/internal/transport/middleware"
)

func TestMiddleware(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Middleware Suite")
}

const testSecret = "middleware-suite-shared-test-secret"

var _ = Describe("Authenticator", func() {
	var (
		verifier *auth.TokenVerifier
		handler  http.Handler
		seenUser *auth.User
	)

	BeforeEach(func() {
		seenUser = nil
		verifier = auth.NewTokenVerifier(testSecret)
		lg := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

		inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seenUser, _ = auth.UserFromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		})
		handler = middleware.Authenticator(verifier, lg)(inner)
	})

	It("should put the caller's identity in the context", func() {
		token, err := auth.NewTestToken(testSecret, &auth.User{ID: "user-1", Email: "a@example.com"}, time.Hour)
		Expect(err).NotTo(HaveOccurred())

		req := httptest.NewRequest(http.MethodGet, "/grants", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(seenUser).NotTo(BeNil())
		Expect(seenUser.ID).To(Equal("user-1"))
	})

	It("should reject a request without a token", func() {
		req := httptest.NewRequest(http.MethodGet, "/grants", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusUnauthorized))
		Expect(seenUser).To(BeNil())
	})

	It("should reject a malformed authorization header", func() {
		req := httptest.NewRequest(http.MethodGet, "/grants", nil)
		req.Header.Set("Authorization", "Basic abc123")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusUnauthorized))
	})

	It("should reject an expired token", func() {
		token, err := auth.NewTestToken(testSecret, &auth.User{ID: "user-1"}, -time.Minute)
		Expect(err).NotTo(HaveOccurred())

		req := httptest.NewRequest(http.MethodGet, "/grants", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusUnauthorized))
	})
})

var _ = Describe("LoggingMiddleware", func() {
	var (
		logBuf  *bytes.Buffer
		handler http.Handler
	)

	BeforeEach(func() {
		logBuf = &bytes.Buffer{}
		lg := slog.New(slog.NewTextHandler(logBuf, &slog.HandlerOptions{Level: slog.LevelDebug}))

		inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"id":"grant-1","verify_code":"482913","status":"active"}`))
		})
		handler = middleware.LoggingMiddleware(lg)(inner)
	})

	It("should never log a submitted verify code", func() {
		body := strings.NewReader(`{"token":"tok-abc","code":"482913"}`)
		req := httptest.NewRequest(http.MethodPost, "/grants/verify-code", body)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		Expect(logBuf.String()).NotTo(ContainSubstring("482913"))
		Expect(logBuf.String()).To(ContainSubstring("[FILTERED]"))
	})

	It("should never log a verify code carried in a response body", func() {
		req := httptest.NewRequest(http.MethodPost, "/grants/scan", strings.NewReader(`{}`))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		// the client still receives the code untouched
		Expect(w.Body.String()).To(ContainSubstring("482913"))
		Expect(logBuf.String()).NotTo(ContainSubstring("482913"))
	})

	It("should filter bearer tokens from logged headers", func() {
		req := httptest.NewRequest(http.MethodGet, "/grants", nil)
		req.Header.Set("Authorization", "Bearer super-secret-jwt")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		Expect(logBuf.String()).NotTo(ContainSubstring("super-secret-jwt"))
	})
})

var _ = Describe("RequirePermissions", func() {
	var handler http.Handler

	BeforeEach(func() {
		inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		handler = middleware.RequirePermissions(auth.PermissionIssueGrants, "admin")(inner)
	})

	request := func(user *auth.User) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/grants", nil)
		if user != nil {
			req = req.WithContext(auth.ContextWithUser(req.Context(), user))
		}
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w
	}

	It("should pass a user holding one of the permissions", func() {
		w := request(&auth.User{ID: "user-1", Permissions: []string{auth.PermissionIssueGrants}})
		Expect(w.Code).To(Equal(http.StatusOK))
	})

	It("should pass an admin", func() {
		w := request(&auth.User{ID: "user-1", Permissions: []string{"admin"}})
		Expect(w.Code).To(Equal(http.StatusOK))
	})

	It("should forbid a user without the permissions", func() {
		w := request(&auth.User{ID: "user-1", Permissions: []string{auth.PermissionRevokeGrants}})
		Expect(w.Code).To(Equal(http.StatusForbidden))
	})

	It("should reject an unauthenticated request", func() {
		w := request(nil)
		Expect(w.Code).To(Equal(http.StatusUnauthorized))
	})
})
