//go:build integration
// +build integration

package mysql_test

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dogmatiq/sqltest"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/tethysim/nodeid/internal/testing/storetest"
	"github.com/tethysim/nodeid/persistence/sqlpersistence"
	. "github.com/tethysim/nodeid/persistence/sqlpersistence/mysql"
)

var _ = Describe("type driver", func() {
	var (
		database *sqltest.Database
		db       *sql.DB
	)

	for i, pair := range sqltest.CompatiblePairs(sqltest.MySQL) {
		Context(fmt.Sprintf("compatible pair #%d", i), func() {
			storetest.Declare(
				func(ctx context.Context) storetest.Out {
					var err error
					database, err = sqltest.NewDatabase(ctx, pair.Driver, pair.Product)
					Expect(err).ShouldNot(HaveOccurred())

					db, err = database.Open()
					Expect(err).ShouldNot(HaveOccurred())

					err = Driver.CreateSchema(ctx, db)
					Expect(err).ShouldNot(HaveOccurred())

					return storetest.Out{
						Store: &sqlpersistence.Store{
							DB:     db,
							Driver: Driver,
						},
					}
				},
				func() {
					ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
					defer cancel()

					err := Driver.DropSchema(ctx, db)
					Expect(err).ShouldNot(HaveOccurred())

					err = database.Close()
					Expect(err).ShouldNot(HaveOccurred())
				},
			)

			It("is selected automatically", func() {
				ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
				defer cancel()

				d, err := sqlpersistence.SelectDriver(ctx, db)
				Expect(err).ShouldNot(HaveOccurred())
				Expect(d).To(Equal(Driver))
			})
		})
	}
})
