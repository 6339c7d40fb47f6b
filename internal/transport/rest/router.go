package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/Danhnam1/Audit-System-sub000/internal/auth"
	"github.com/Danhnam1/Audit-System-sub000/internal/department"
	"github.com/Danhnam1/Audit-System-sub000/internal/grant"
	"github.com/Danhnam1/Audit-System-sub000/internal/transport/middleware"
	"github.com/Danhnam1/Audit-System-sub000/internal/transport/swagger"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

func RegisterAllRoutes(
	router *chi.Mux,
	db *sql.DB,
	verifier *auth.TokenVerifier,
	grantHandler *grant.Handler,
	deptHandler *department.Handler,
	logger *slog.Logger,
) {
	healthHandler := NewHealthHandler(db)

	// Apply global middleware
	router.Use(middleware.CORS)
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	// Swagger UI route at root
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		// Health check routes
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// Everything below requires a bearer token from the admin app
		r.Group(func(pr chi.Router) {
			pr.Use(middleware.Authenticator(verifier, logger))

			if grantHandler != nil {
				pr.Route("/grants", func(gr chi.Router) {
					// Scan-side routes, open to any authenticated scanner
					gr.Post("/scan", grantHandler.ScanGrant)
					gr.Post("/verify-code", grantHandler.VerifyGrantCode)

					gr.Get("/", grantHandler.ListGrants)
					gr.Get("/{id}", grantHandler.GetGrant)

					// Issuance and revocation are administrative
					gr.Group(func(ar chi.Router) {
						ar.Use(middleware.RequirePermissions(auth.PermissionIssueGrants, "admin"))
						ar.Post("/", grantHandler.IssueGrant)
					})

					gr.Group(func(ar chi.Router) {
						ar.Use(middleware.RequirePermissions(auth.PermissionRevokeGrants, "admin"))
						ar.Post("/{id}/revoke", grantHandler.RevokeGrant)
					})
				})
			}

			if deptHandler != nil {
				pr.Route("/departments", func(dr chi.Router) {
					dr.Get("/", deptHandler.GetDepartments)
					dr.Get("/{id}", deptHandler.GetDepartment)
					dr.Get("/{id}/sensitivity", deptHandler.GetSensitivity)
				})
			}
		})
	})
}
