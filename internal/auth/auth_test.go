package auth_test

import (
	"context"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Danhnam1/Audit-System-sub000/internal/auth"
)

func TestAuth(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Auth Suite")
}

const testSecret = "test-secret-key-for-auth-suite-only"

var _ = Describe("TokenVerifier", func() {
	var verifier *auth.TokenVerifier

	BeforeEach(func() {
		verifier = auth.NewTokenVerifier(testSecret)
	})

	It("should validate a well-formed token and recover the claims", func() {
		user := &auth.User{
			ID:          "user-1",
			Email:       "scanner@example.com",
			Permissions: []string{auth.PermissionIssueGrants},
		}
		token, err := auth.NewTestToken(testSecret, user, time.Hour)
		Expect(err).NotTo(HaveOccurred())

		claims, err := verifier.ValidateToken(token)

		Expect(err).NotTo(HaveOccurred())
		Expect(claims.UserID).To(Equal("user-1"))
		Expect(claims.Email).To(Equal("scanner@example.com"))
		Expect(claims.Permissions).To(ContainElement(auth.PermissionIssueGrants))
	})

	It("should reject a token signed with a different secret", func() {
		token, err := auth.NewTestToken("some-other-secret-entirely", &auth.User{ID: "user-1"}, time.Hour)
		Expect(err).NotTo(HaveOccurred())

		_, err = verifier.ValidateToken(token)

		Expect(err).To(Equal(auth.ErrInvalidToken))
	})

	It("should reject an expired token", func() {
		token, err := auth.NewTestToken(testSecret, &auth.User{ID: "user-1"}, -time.Minute)
		Expect(err).NotTo(HaveOccurred())

		_, err = verifier.ValidateToken(token)

		Expect(err).To(Equal(auth.ErrTokenExpired))
	})

	It("should reject garbage", func() {
		_, err := verifier.ValidateToken("not-a-jwt")

		Expect(err).To(Equal(auth.ErrInvalidToken))
	})
})

var _ = Describe("User permissions", func() {
	It("should match a held permission", func() {
		user := &auth.User{Permissions: []string{auth.PermissionRevokeGrants}}

		Expect(user.HasPermission(auth.PermissionRevokeGrants)).To(BeTrue())
		Expect(user.HasPermission(auth.PermissionIssueGrants)).To(BeFalse())
	})

	It("should match any of the required permissions", func() {
		user := &auth.User{Permissions: []string{"admin"}}

		Expect(user.HasAnyPermission([]string{auth.PermissionIssueGrants, "admin"})).To(BeTrue())
		Expect(user.HasAnyPermission([]string{auth.PermissionIssueGrants})).To(BeFalse())
	})
})

var _ = Describe("User context", func() {
	It("should round-trip the user through the context", func() {
		user := &auth.User{ID: "user-1"}
		ctx := auth.ContextWithUser(context.Background(), user)

		got, ok := auth.UserFromContext(ctx)
		Expect(ok).To(BeTrue())
		Expect(got.ID).To(Equal("user-1"))
	})

	It("should report a missing user", func() {
		_, ok := auth.UserFromContext(context.Background())
		Expect(ok).To(BeFalse())
	})
})
