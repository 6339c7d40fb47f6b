package scanflow_test

import (
	"fmt"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Danhnam1/Audit-System-sub000/internal/scanflow"
)

var _ = Describe("DedupCache", func() {
	var now time.Time

	BeforeEach(func() {
		now = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	})

	It("should not flag an unrecorded token", func() {
		cache := scanflow.NewDedupCache(8, 3*time.Second)
		Expect(cache.Seen("tok-1", now)).To(BeFalse())
	})

	It("should not flag a token that was checked but never recorded", func() {
		cache := scanflow.NewDedupCache(8, 3*time.Second)
		cache.Seen("tok-1", now)

		Expect(cache.Seen("tok-1", now.Add(time.Second))).To(BeFalse())
	})

	It("should flag a recorded token inside the window", func() {
		cache := scanflow.NewDedupCache(8, 3*time.Second)
		cache.Record("tok-1", now)

		Expect(cache.Seen("tok-1", now.Add(time.Second))).To(BeTrue())
	})

	It("should admit the same token again after the window", func() {
		cache := scanflow.NewDedupCache(8, 3*time.Second)
		cache.Record("tok-1", now)

		Expect(cache.Seen("tok-1", now.Add(5*time.Second))).To(BeFalse())
	})

	It("should keep distinct tokens independent", func() {
		cache := scanflow.NewDedupCache(8, 3*time.Second)
		cache.Record("tok-1", now)

		Expect(cache.Seen("tok-2", now)).To(BeFalse())
	})

	It("should evict the oldest entry when full", func() {
		cache := scanflow.NewDedupCache(2, time.Minute)
		cache.Record("tok-1", now)
		cache.Record("tok-2", now)
		cache.Record("tok-3", now)

		// tok-1 was overwritten by tok-3
		Expect(cache.Seen("tok-1", now.Add(time.Second))).To(BeFalse())
		Expect(cache.Seen("tok-3", now.Add(time.Second))).To(BeTrue())
	})

	It("should stay bounded under sustained captures", func() {
		cache := scanflow.NewDedupCache(4, time.Minute)
		for i := 0; i < 1000; i++ {
			cache.Record(fmt.Sprintf("tok-%d", i), now.Add(time.Duration(i)*time.Millisecond))
		}
		// the most recent capture is still remembered
		Expect(cache.Seen("tok-999", now.Add(time.Second))).To(BeTrue())
	})
})
