package sqlite_test

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/tethysim/nodeid/internal/testing/storetest"
	"github.com/tethysim/nodeid/persistence/sqlpersistence"
	. "github.com/tethysim/nodeid/persistence/sqlpersistence/sqlite"
	_ "modernc.org/sqlite"
)

var _ = Describe("type driver (modernc.org/sqlite)", func() {
	var (
		dir string
		db  *sql.DB
	)

	openDB := func() {
		var err error
		dir, err = os.MkdirTemp("", "nodeid-sqlite-")
		Expect(err).ShouldNot(HaveOccurred())

		db, err = sqlpersistence.OpenDB(
			"sqlite",
			"file:"+filepath.Join(dir, "nodeid.sqlite")+"?mode=rwc",
		)
		Expect(err).ShouldNot(HaveOccurred())
		db.SetMaxOpenConns(1)
	}

	closeDB := func() {
		err := db.Close()
		Expect(err).ShouldNot(HaveOccurred())

		err = os.RemoveAll(dir)
		Expect(err).ShouldNot(HaveOccurred())
	}

	Context("when the driver is selected automatically", func() {
		storetest.Declare(
			func(ctx context.Context) storetest.Out {
				openDB()

				err := Driver.CreateSchema(ctx, db)
				Expect(err).ShouldNot(HaveOccurred())

				return storetest.Out{
					Store: &sqlpersistence.Store{
						DB: db,
					},
					TimePrecision: time.Nanosecond,
				}
			},
			func() {
				ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
				defer cancel()

				err := Driver.DropSchema(ctx, db)
				Expect(err).ShouldNot(HaveOccurred())

				closeDB()
			},
		)

		It("selects the SQLite driver", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()

			d, err := sqlpersistence.SelectDriver(ctx, db)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(d).To(Equal(Driver))
		})
	})

	Context("when the schema is created more than once", func() {
		BeforeEach(openDB)
		AfterEach(closeDB)

		It("does not return an error", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()

			err := Driver.CreateSchema(ctx, db)
			Expect(err).ShouldNot(HaveOccurred())

			err = Driver.CreateSchema(ctx, db)
			Expect(err).ShouldNot(HaveOccurred())
		})
	})
})
