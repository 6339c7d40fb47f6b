package validation_test

import (
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Danhnam1/Audit-System-sub000/internal"
	"github.com/Danhnam1/Audit-System-sub000/internal/core/common/validation"
)

func TestValidation(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Validation Suite")
}

var _ = Describe("ValidationBuilder", func() {
	It("should pass when all checks succeed", func() {
		err := validation.NewValidator().
			Require("audit_id", "audit-1").
			RequireTime("valid_from", time.Now()).
			MaxLength("audit_id", "audit-1", 64).
			Validate()

		Expect(err).NotTo(HaveOccurred())
	})

	It("should collect every failing field into one error", func() {
		err := validation.NewValidator().
			Require("audit_id", "").
			Require("auditor_id", "").
			RequireTime("valid_from", time.Time{}).
			Validate()

		Expect(err).To(HaveOccurred())
		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))

		details, ok := appErr.Details.(internal.ValidationErrors)
		Expect(ok).To(BeTrue())
		Expect(details.Errors).To(HaveLen(3))
		Expect(details.Errors[0].Field).To(Equal("audit_id"))
	})

	It("should report a custom check with its code", func() {
		err := validation.NewValidator().
			Check("ttl_minutes", false, "ttl_minutes cannot be negative", internal.ErrCodeInvalidTimeWindow).
			Validate()

		Expect(err).To(HaveOccurred())
		appErr, _ := internal.IsAppError(err)
		details := appErr.Details.(internal.ValidationErrors)
		Expect(details.Errors[0].Code).To(Equal(string(internal.ErrCodeInvalidTimeWindow)))
	})

	It("should enforce maximum lengths", func() {
		long := make([]byte, 65)
		for i := range long {
			long[i] = 'a'
		}

		err := validation.NewValidator().
			MaxLength("audit_id", string(long), 64).
			Validate()

		Expect(err).To(HaveOccurred())
	})
})
