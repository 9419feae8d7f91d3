package nodeid

import (
	"context"
	"errors"
	"time"

	"github.com/dogmatiq/dodeca/logging"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("type clockCheck", func() {
	type contextKey struct{}

	var (
		ctx    context.Context
		logger *logging.BufferedLogger
		check  *clockCheck
		offset time.Duration
		err    error
		query  func(context.Context, string) (time.Duration, error)
	)

	BeforeEach(func() {
		ctx = context.WithValue(context.Background(), contextKey{}, "<value>")
		logger = &logging.BufferedLogger{CaptureDebug: true}
		check = &clockCheck{
			Host:      "<host>",
			Threshold: 500 * time.Millisecond,
		}

		offset, err = 0, nil

		query = queryClockOffset
		queryClockOffset = func(qctx context.Context, host string) (time.Duration, error) {
			Expect(qctx.Value(contextKey{})).To(Equal("<value>"))
			Expect(host).To(Equal("<host>"))
			return offset, err
		}
		DeferCleanup(func() {
			queryClockOffset = query
		})
	})

	Describe("func Run()", func() {
		It("returns true if the offset is within the threshold", func() {
			offset = -499 * time.Millisecond

			Expect(check.Run(ctx, logger)).To(BeTrue())
			Expect(logger.Messages()).To(ContainElement(
				logging.BufferedLogMessage{
					Message: "the local clock is offset from <host> by -499ms",
					IsDebug: true,
				},
			))
		})

		It("warns if the offset exceeds the threshold", func() {
			offset = -2 * time.Second

			Expect(check.Run(ctx, logger)).To(BeFalse())
			Expect(logger.Messages()).To(ContainElement(
				logging.BufferedLogMessage{
					Message: "the local clock is offset from <host> by -2s, which exceeds the 500ms threshold, live FIDs may be reclaimed early",
				},
			))
		})

		It("warns if the server can not be queried", func() {
			err = errors.New("<error>")

			Expect(check.Run(ctx, logger)).To(BeFalse())
			Expect(logger.Messages()).To(ContainElement(
				logging.BufferedLogMessage{
					Message: "unable to check the local clock against <host>: <error>",
				},
			))
		})
	})

	Describe("func queryClockOffset()", func() {
		It("returns immediately if the context is canceled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			_, err := query(ctx, "<host>")
			Expect(err).To(Equal(context.Canceled))
		})

		It("returns immediately if the context deadline has passed", func() {
			ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
			defer cancel()

			_, err := query(ctx, "<host>")
			Expect(err).To(Equal(context.DeadlineExceeded))
		})
	})
})
