package sqlpersistence_test

import (
	"context"
	"database/sql"
	"time"

	"github.com/dogmatiq/sqltest/sqlstub"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	. "github.com/tethysim/nodeid/persistence/sqlpersistence"
	"go.uber.org/multierr"
)

var _ = Describe("func SelectDriver()", func() {
	It("returns an error if a compatible driver can not be found", func() {
		db := sql.OpenDB(&sqlstub.Connector{})
		defer db.Close()

		_, err := SelectDriver(context.Background(), db)

		expect := "could not find a driver that is compatible with *sqlstub.Driver"
		for _, e := range multierr.Errors(err) {
			if e.Error() == expect {
				return
			}
		}

		Expect(err).To(MatchError(expect))
	})

	It("reports the error from each of the built-in drivers", func() {
		db := sql.OpenDB(&sqlstub.Connector{})
		defer db.Close()

		_, err := SelectDriver(context.Background(), db)
		Expect(multierr.Errors(err)).To(HaveLen(4))
	})
})

var _ = Describe("type Store (driver selection)", func() {
	It("returns an error from each operation if a compatible driver can not be found", func() {
		ctx := context.Background()

		db := sql.OpenDB(&sqlstub.Connector{})
		defer db.Close()

		store := &Store{DB: db}

		_, _, err := store.Load(ctx, 150)
		Expect(err).To(HaveOccurred())

		_, err = store.TouchCheckTime(ctx, 150, time.Now())
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("func OpenDB()", func() {
	It("returns an error if the driver is not registered", func() {
		_, err := OpenDB("<nonsense-driver>", "<nonsense-dsn>")
		Expect(err).Should(HaveOccurred())
	})

	Context("var DefaultMaxIdleConns", func() {
		It("is not zero", func() {
			Expect(DefaultMaxIdleConns).To(BeNumerically(">", 0))
		})
	})

	Context("var DefaultMaxOpenConns", func() {
		It("is larger than DefaultMaxIdleConns", func() {
			Expect(DefaultMaxOpenConns).To(BeNumerically(">", DefaultMaxIdleConns))
		})
	})

	Context("var DefaultMaxConnLifetime", func() {
		It("is not zero", func() {
			Expect(DefaultMaxConnLifetime).To(BeNumerically(">", 0))
		})
	})
})
