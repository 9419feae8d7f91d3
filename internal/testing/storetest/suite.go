package storetest

import (
	"context"
	"sync"
	"time"

	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"github.com/tethysim/nodeid/instance"
	"github.com/tethysim/nodeid/internal/x/gomegax"
)

// Out is a container for values that are provided by the store-specific
// "before" function to the test-suite.
type Out struct {
	// Store is the store to be tested.
	Store instance.Store

	// TestTimeout is the maximum duration allowed for each test.
	TestTimeout time.Duration

	// TimePrecision is the precision with which the store persists check
	// times.
	TimePrecision time.Duration
}

const (
	// DefaultTestTimeout is the default test timeout.
	DefaultTestTimeout = 3 * time.Second

	// DefaultTimePrecision is the default precision of persisted check times.
	DefaultTimePrecision = time.Microsecond

	// racers is the number of goroutines used by the concurrency tests.
	racers = 10
)

// Declare declares generic behavioral tests for a specific store
// implementation.
func Declare(
	before func(context.Context) Out,
	after func(),
) {
	var (
		ctx    context.Context
		cancel func()
		out    Out
		store  instance.Store
		now    time.Time
		md     instance.Metadata
	)

	ginkgo.BeforeEach(func() {
		setupCtx, cancelSetup := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancelSetup()

		out = before(setupCtx)
		store = out.Store

		if out.TestTimeout <= 0 {
			out.TestTimeout = DefaultTestTimeout
		}

		if out.TimePrecision <= 0 {
			out.TimePrecision = DefaultTimePrecision
		}

		now = time.Now().Truncate(time.Second)
		md = NewMetadata("<host-a>", 101)

		ctx, cancel = context.WithTimeout(context.Background(), out.TestTimeout)
	})

	ginkgo.AfterEach(func() {
		if after != nil {
			after()
		}

		cancel()
	})

	expectRecord := func(id int, expect instance.Record) {
		ginkgo.GinkgoHelper()

		r, ok, err := store.Load(ctx, id)
		gomega.Expect(err).ShouldNot(gomega.HaveOccurred())
		gomega.Expect(ok).To(gomega.BeTrue(), "record %d does not exist", id)
		gomega.Expect(r).To(gomegax.EqualCmp(
			expect,
			cmpopts.EquateApproxTime(out.TimePrecision),
		))
	}

	ginkgo.Describe("type Store (interface)", func() {
		ginkgo.Describe("func Load()", func() {
			ginkgo.It("returns false if the record does not exist", func() {
				_, ok, err := store.Load(ctx, 150)
				gomega.Expect(err).ShouldNot(gomega.HaveOccurred())
				gomega.Expect(ok).To(gomega.BeFalse())
			})

			ginkgo.It("returns the record if it exists", func() {
				r := instance.NewRecord(150, now, md)

				ok, err := store.Insert(ctx, r)
				gomega.Expect(err).ShouldNot(gomega.HaveOccurred())
				gomega.Expect(ok).To(gomega.BeTrue())

				expectRecord(150, r)
			})

			ginkgo.It("does not return records with other FIDs", func() {
				ok, err := store.Insert(ctx, instance.NewRecord(150, now, md))
				gomega.Expect(err).ShouldNot(gomega.HaveOccurred())
				gomega.Expect(ok).To(gomega.BeTrue())

				_, ok, err = store.Load(ctx, 151)
				gomega.Expect(err).ShouldNot(gomega.HaveOccurred())
				gomega.Expect(ok).To(gomega.BeFalse())
			})
		})

		ginkgo.Describe("func Insert()", func() {
			ginkgo.It("returns false if a record with the same FID exists", func() {
				r := instance.NewRecord(150, now, md)

				ok, err := store.Insert(ctx, r)
				gomega.Expect(err).ShouldNot(gomega.HaveOccurred())
				gomega.Expect(ok).To(gomega.BeTrue())

				other := instance.NewRecord(
					150,
					now.Add(1*time.Minute),
					NewMetadata("<host-b>", 202),
				)

				ok, err = store.Insert(ctx, other)
				gomega.Expect(err).ShouldNot(gomega.HaveOccurred())
				gomega.Expect(ok).To(gomega.BeFalse())

				expectRecord(150, r)
			})

			ginkgo.It("allows exactly one of many concurrent inserts to succeed", func() {
				var (
					wg   sync.WaitGroup
					m    sync.Mutex
					wins []int
					errs []error
				)

				for i := 0; i < racers; i++ {
					wg.Add(1)

					go func() {
						defer wg.Done()
						defer ginkgo.GinkgoRecover()

						r := instance.NewRecord(
							150,
							now,
							NewMetadata("<racer>", 1000+i),
						)

						ok, err := store.Insert(ctx, r)

						m.Lock()
						defer m.Unlock()

						if err != nil {
							errs = append(errs, err)
						} else if ok {
							wins = append(wins, i)
						}
					}()
				}

				wg.Wait()

				gomega.Expect(errs).To(gomega.BeEmpty())
				gomega.Expect(wins).To(gomega.HaveLen(1))

				r, ok, err := store.Load(ctx, 150)
				gomega.Expect(err).ShouldNot(gomega.HaveOccurred())
				gomega.Expect(ok).To(gomega.BeTrue())
				gomega.Expect(r.Metadata.PID).To(gomega.Equal(1000 + wins[0]))
			})
		})

		ginkgo.Describe("func Update()", func() {
			ginkgo.BeforeEach(func() {
				ok, err := store.Insert(ctx, instance.NewRecord(200, now, md))
				gomega.Expect(err).ShouldNot(gomega.HaveOccurred())
				gomega.Expect(ok).To(gomega.BeTrue())
			})

			ginkgo.It("replaces the record and increments the version", func() {
				r := instance.Record{
					ID:        200,
					Version:   0,
					CheckTime: now.Add(2 * time.Hour),
					Metadata:  NewMetadata("<host-b>", 202),
				}

				ok, err := store.Update(ctx, r)
				gomega.Expect(err).ShouldNot(gomega.HaveOccurred())
				gomega.Expect(ok).To(gomega.BeTrue())

				r.Version = 1
				expectRecord(200, r)
			})

			ginkgo.It("accepts successive updates at each new version", func() {
				for v := int64(0); v < 3; v++ {
					ok, err := store.Update(ctx, instance.Record{
						ID:        200,
						Version:   v,
						CheckTime: now,
						Metadata:  md,
					})
					gomega.Expect(err).ShouldNot(gomega.HaveOccurred())
					gomega.Expect(ok).To(gomega.BeTrue())
				}

				expectRecord(200, instance.Record{
					ID:        200,
					Version:   3,
					CheckTime: now,
					Metadata:  md,
				})
			})

			ginkgo.It("returns false if the version is not current", func() {
				ok, err := store.Update(ctx, instance.Record{
					ID:        200,
					Version:   1,
					CheckTime: now.Add(2 * time.Hour),
					Metadata:  NewMetadata("<host-b>", 202),
				})
				gomega.Expect(err).ShouldNot(gomega.HaveOccurred())
				gomega.Expect(ok).To(gomega.BeFalse())

				expectRecord(200, instance.NewRecord(200, now, md))
			})

			ginkgo.It("returns false if the record does not exist", func() {
				ok, err := store.Update(ctx, instance.NewRecord(201, now, md))
				gomega.Expect(err).ShouldNot(gomega.HaveOccurred())
				gomega.Expect(ok).To(gomega.BeFalse())

				_, ok, err = store.Load(ctx, 201)
				gomega.Expect(err).ShouldNot(gomega.HaveOccurred())
				gomega.Expect(ok).To(gomega.BeFalse())
			})

			ginkgo.It("allows exactly one of many concurrent updates at the same version to succeed", func() {
				var (
					wg   sync.WaitGroup
					m    sync.Mutex
					wins []int
					errs []error
				)

				for i := 0; i < racers; i++ {
					wg.Add(1)

					go func() {
						defer wg.Done()
						defer ginkgo.GinkgoRecover()

						ok, err := store.Update(ctx, instance.Record{
							ID:        200,
							Version:   0,
							CheckTime: now,
							Metadata:  NewMetadata("<racer>", 1000+i),
						})

						m.Lock()
						defer m.Unlock()

						if err != nil {
							errs = append(errs, err)
						} else if ok {
							wins = append(wins, i)
						}
					}()
				}

				wg.Wait()

				gomega.Expect(errs).To(gomega.BeEmpty())
				gomega.Expect(wins).To(gomega.HaveLen(1))

				r, ok, err := store.Load(ctx, 200)
				gomega.Expect(err).ShouldNot(gomega.HaveOccurred())
				gomega.Expect(ok).To(gomega.BeTrue())
				gomega.Expect(r.Version).To(gomega.BeEquivalentTo(1))
				gomega.Expect(r.Metadata.PID).To(gomega.Equal(1000 + wins[0]))
			})
		})

		ginkgo.Describe("func TouchCheckTime()", func() {
			ginkgo.BeforeEach(func() {
				ok, err := store.Insert(ctx, instance.NewRecord(150, now, md))
				gomega.Expect(err).ShouldNot(gomega.HaveOccurred())
				gomega.Expect(ok).To(gomega.BeTrue())
			})

			ginkgo.It("sets the check time without changing other fields", func() {
				t := now.Add(5 * time.Minute)

				ok, err := store.TouchCheckTime(ctx, 150, t)
				gomega.Expect(err).ShouldNot(gomega.HaveOccurred())
				gomega.Expect(ok).To(gomega.BeTrue())

				expectRecord(150, instance.NewRecord(150, t, md))
			})

			ginkgo.It("does not prevent an update at the loaded version", func() {
				ok, err := store.TouchCheckTime(ctx, 150, now.Add(5*time.Minute))
				gomega.Expect(err).ShouldNot(gomega.HaveOccurred())
				gomega.Expect(ok).To(gomega.BeTrue())

				ok, err = store.Update(ctx, instance.NewRecord(150, now, md))
				gomega.Expect(err).ShouldNot(gomega.HaveOccurred())
				gomega.Expect(ok).To(gomega.BeTrue())
			})

			ginkgo.It("returns false if the record does not exist", func() {
				ok, err := store.TouchCheckTime(ctx, 151, now)
				gomega.Expect(err).ShouldNot(gomega.HaveOccurred())
				gomega.Expect(ok).To(gomega.BeFalse())
			})
		})
	})
}

// NewMetadata returns instance metadata for use in tests.
func NewMetadata(host string, pid int) instance.Metadata {
	return instance.Metadata{
		HostName:       host,
		HostAddress:    "10.0.0.1",
		OSName:         "linux",
		OSVersion:      "6.1.0",
		OSArch:         "amd64",
		OSUser:         "nodeid",
		RuntimeName:    "go",
		RuntimeVersion: "go1.24.0",
		RuntimeVendor:  "<vendor>",
		WorkDir:        "/srv/nodeid",
		PID:            pid,
		BootID:         uuid.NewSHA1(uuid.NameSpaceOID, []byte(host)),
	}
}
