package directory_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Danhnam1/Audit-System-sub000/internal/directory"
)

func TestDirectoryClient(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Directory Client Suite")
}

var _ = Describe("Directory Client", func() {
	var (
		server     *httptest.Server
		client     *directory.Client
		ctx        context.Context
		lastAuth   string
		statusCode int
	)

	BeforeEach(func() {
		ctx = context.Background()
		statusCode = 0

		mux := http.NewServeMux()
		mux.HandleFunc("/api/v1/auditors/", func(w http.ResponseWriter, r *http.Request) {
			lastAuth = r.Header.Get("Authorization")
			if statusCode != 0 {
				w.WriteHeader(statusCode)
				return
			}
			if r.URL.Path == "/api/v1/auditors/auditor-1" {
				json.NewEncoder(w).Encode(directory.AuditorProfile{
					ID:          "auditor-1",
					DisplayName: "Dana Reyes",
				})
				return
			}
			w.WriteHeader(http.StatusNotFound)
		})
		mux.HandleFunc("/api/v1/audits/", func(w http.ResponseWriter, r *http.Request) {
			if statusCode != 0 {
				w.WriteHeader(statusCode)
				return
			}
			if r.URL.Path == "/api/v1/audits/audit-1" {
				json.NewEncoder(w).Encode(directory.AuditSummary{
					ID:    "audit-1",
					Title: "Q1 Inventory Audit",
				})
				return
			}
			w.WriteHeader(http.StatusNotFound)
		})

		server = httptest.NewServer(mux)
		lg := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		client = directory.NewClient(directory.Config{
			BaseURL: server.URL,
			APIKey:  "test-key",
		}, lg)
	})

	AfterEach(func() {
		server.Close()
	})

	Describe("GetAuditor", func() {
		It("should return the profile for a known auditor", func() {
			profile, err := client.GetAuditor(ctx, "auditor-1")

			Expect(err).NotTo(HaveOccurred())
			Expect(profile).NotTo(BeNil())
			Expect(profile.DisplayName).To(Equal("Dana Reyes"))
		})

		It("should return nil without error for an unknown auditor", func() {
			profile, err := client.GetAuditor(ctx, "auditor-nope")

			Expect(err).NotTo(HaveOccurred())
			Expect(profile).To(BeNil())
		})

		It("should send the api key as a bearer token", func() {
			_, err := client.GetAuditor(ctx, "auditor-1")

			Expect(err).NotTo(HaveOccurred())
			Expect(lastAuth).To(Equal("Bearer test-key"))
		})

		It("should surface server errors", func() {
			statusCode = http.StatusInternalServerError

			_, err := client.GetAuditor(ctx, "auditor-1")

			Expect(err).To(HaveOccurred())
		})
	})

	Describe("GetAudit", func() {
		It("should return the summary for a known audit", func() {
			summary, err := client.GetAudit(ctx, "audit-1")

			Expect(err).NotTo(HaveOccurred())
			Expect(summary).NotTo(BeNil())
			Expect(summary.Title).To(Equal("Q1 Inventory Audit"))
		})
	})

	Describe("existence checks", func() {
		It("should report a known audit as existing", func() {
			exists, err := client.AuditExists(ctx, "audit-1")

			Expect(err).NotTo(HaveOccurred())
			Expect(exists).To(BeTrue())
		})

		It("should report an unknown audit as missing without error", func() {
			exists, err := client.AuditExists(ctx, "audit-nope")

			Expect(err).NotTo(HaveOccurred())
			Expect(exists).To(BeFalse())
		})

		It("should report an unknown auditor as missing without error", func() {
			exists, err := client.AuditorExists(ctx, "auditor-nope")

			Expect(err).NotTo(HaveOccurred())
			Expect(exists).To(BeFalse())
		})

		It("should not treat a transport fault as a missing reference", func() {
			server.Close()

			_, err := client.AuditExists(ctx, "audit-1")

			Expect(err).To(HaveOccurred())
		})
	})
})
