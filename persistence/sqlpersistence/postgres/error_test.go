package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/lib/pq"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("func isUniqueViolation()", func() {
	DescribeTable(
		"it recognizes unique violations from each driver",
		func(err error, expect bool) {
			Expect(isUniqueViolation(err)).To(Equal(expect))
		},
		Entry("pgx unique violation", &pgconn.PgError{Code: "23505"}, true),
		Entry("pq unique violation", &pq.Error{Code: "23505"}, true),
		Entry("wrapped", fmt.Errorf("<context>: %w", &pgconn.PgError{Code: "23505"}), true),
		Entry("pgx foreign key violation", &pgconn.PgError{Code: "23503"}, false),
		Entry("pq foreign key violation", &pq.Error{Code: "23503"}, false),
		Entry("other error", errors.New("<error>"), false),
		Entry("nil", nil, false),
	)
})

var _ = Describe("func convertContextErrors()", func() {
	cancelErr := errors.New("pq: canceling statement due to user request")

	It("returns the context error if the statement was canceled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		Expect(convertContextErrors(ctx, cancelErr)).To(Equal(context.Canceled))
	})

	It("returns the original error if the context is not done", func() {
		Expect(convertContextErrors(context.Background(), cancelErr)).To(Equal(cancelErr))
	})

	It("returns other errors unchanged", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := errors.New("<error>")
		Expect(convertContextErrors(ctx, err)).To(Equal(err))
	})
})
