package grant_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Danhnam1/Audit-System-sub000/internal/grant"
)

var _ = Describe("Token generation", func() {
	Describe("NewToken", func() {
		It("should generate url-safe tokens", func() {
			token, err := grant.NewToken(24)

			Expect(err).NotTo(HaveOccurred())
			Expect(token).To(MatchRegexp(`^[A-Za-z0-9_-]+$`))
		})

		It("should generate distinct tokens", func() {
			seen := make(map[string]bool)
			for i := 0; i < 100; i++ {
				token, err := grant.NewToken(24)
				Expect(err).NotTo(HaveOccurred())
				Expect(seen[token]).To(BeFalse())
				seen[token] = true
			}
		})

		It("should fall back to the default size for a non-positive byte count", func() {
			token, err := grant.NewToken(0)

			Expect(err).NotTo(HaveOccurred())
			// 24 bytes base64url without padding is 32 characters
			Expect(token).To(HaveLen(32))
		})
	})

	Describe("NewVerifyCode", func() {
		It("should generate a fixed-length numeric code", func() {
			code, err := grant.NewVerifyCode(6)

			Expect(err).NotTo(HaveOccurred())
			Expect(code).To(MatchRegexp(`^\d{6}$`))
		})

		It("should honor a custom length", func() {
			code, err := grant.NewVerifyCode(8)

			Expect(err).NotTo(HaveOccurred())
			Expect(code).To(HaveLen(8))
		})

		It("should preserve leading zeros", func() {
			// statistically at least one of these has a leading zero
			leading := false
			for i := 0; i < 200 && !leading; i++ {
				code, err := grant.NewVerifyCode(6)
				Expect(err).NotTo(HaveOccurred())
				Expect(code).To(HaveLen(6))
				if code[0] == '0' {
					leading = true
				}
			}
			Expect(leading).To(BeTrue())
		})
	})

	Describe("ScanURL", func() {
		It("should embed the token as a query parameter", func() {
			url := grant.ScanURL("https://scan.example.com", "abc123")

			Expect(url).To(Equal("https://scan.example.com/scan?token=abc123"))
		})

		It("should strip a trailing slash from the base url", func() {
			url := grant.ScanURL("https://scan.example.com/", "abc123")

			Expect(url).To(Equal("https://scan.example.com/scan?token=abc123"))
		})
	})
})
