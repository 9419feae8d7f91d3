package nodeid_test

import (
	"context"
	"errors"
	"time"

	"github.com/dogmatiq/dodeca/logging"
	"github.com/jonboulle/clockwork"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	. "github.com/tethysim/nodeid"
	"github.com/tethysim/nodeid/allocate"
	. "github.com/tethysim/nodeid/fixtures"
	"github.com/tethysim/nodeid/instance"
	"go.uber.org/goleak"
)

var _ = Describe("func New()", func() {
	var (
		ctx    context.Context
		cancel context.CancelFunc
		store  *StoreStub
		clock  *clockwork.FakeClock
		logger *logging.BufferedLogger
		start  time.Time
		opts   []Option
	)

	BeforeEach(func() {
		ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)

		store = NewStoreStub()
		start = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
		clock = clockwork.NewFakeClockAt(start)
		logger = &logging.BufferedLogger{}

		opts = []Option{
			WithApplicationName("<app>"),
			WithVersion("1.2.3"),
			WithSampler(SequenceSampler(150, 151, 152)),
			WithHeartbeatPeriod(5 * time.Minute),
			WithClock(clock),
			WithLogger(logger),
		}
	})

	AfterEach(func() {
		cancel()
	})

	load := func(id int) instance.Record {
		r, ok, err := store.Load(ctx, id)
		Expect(err).ShouldNot(HaveOccurred())
		Expect(ok).To(BeTrue())
		return r
	}

	When("a FID is acquired", func() {
		var identity *Identity

		BeforeEach(func() {
			var err error
			identity, err = New(ctx, store, opts...)
			Expect(err).ShouldNot(HaveOccurred())
		})

		AfterEach(func() {
			identity.Close()
		})

		It("returns an identity that holds the FID", func() {
			Expect(identity.ID()).To(Equal(150))
			Expect(identity.ApplicationName()).To(Equal("<app>"))
			Expect(identity.Version()).To(Equal("1.2.3"))
			Expect(identity.AllocatedAt()).To(Equal(start))
		})

		It("writes an instance record for the FID", func() {
			r := load(150)
			Expect(r.Version).To(BeEquivalentTo(0))
			Expect(r.CheckTime).To(Equal(start))
			Expect(r.Metadata).To(Equal(instance.CurrentMetadata()))
			Expect(identity.Record()).To(Equal(r))
		})

		It("logs the FID", func() {
			Expect(logger.Messages()).To(ContainElement(
				logging.BufferedLogMessage{
					Message: "<app> 1.2.3 is running as FID 150",
				},
			))
		})

		It("renews the heartbeat every period", func() {
			err := clock.BlockUntilContext(ctx, 1)
			Expect(err).ShouldNot(HaveOccurred())

			clock.Advance(5 * time.Minute)

			Eventually(func() time.Time {
				return load(150).CheckTime
			}).Should(Equal(start.Add(5 * time.Minute)))
		})

		It("causes other processes to acquire a different FID", func() {
			other, err := New(ctx, store, opts...)
			Expect(err).ShouldNot(HaveOccurred())
			defer other.Close()

			Expect(other.ID()).To(Equal(151))
		})
	})

	It("reclaims a FID whose record has expired", func() {
		ok, err := store.Insert(
			ctx,
			instance.NewRecord(150, start.Add(-2*time.Hour), instance.Metadata{HostName: "<other>"}),
		)
		Expect(err).ShouldNot(HaveOccurred())
		Expect(ok).To(BeTrue())

		identity, err := New(ctx, store, opts...)
		Expect(err).ShouldNot(HaveOccurred())
		defer identity.Close()

		Expect(identity.ID()).To(Equal(150))
		Expect(load(150).Version).To(BeEquivalentTo(1))
	})

	It("returns a storage fault if the store fails", func() {
		store.LoadFunc = func(context.Context, int) (instance.Record, bool, error) {
			return instance.Record{}, false, errors.New("<error>")
		}

		_, err := New(ctx, store, opts...)

		var fault *allocate.StorageFault
		Expect(errors.As(err, &fault)).To(BeTrue())
		Expect(fault.State).To(Equal(allocate.Probing))
		Expect(fault.Candidate).To(Equal(150))
	})

	It("returns an allocation timeout if the store does not respond in time", func() {
		release := make(chan struct{})
		defer close(release)

		store.LoadFunc = func(context.Context, int) (instance.Record, bool, error) {
			<-release // ignore ctx entirely
			return instance.Record{}, false, nil
		}

		result := make(chan error, 1)
		go func() {
			_, err := New(
				ctx,
				store,
				append(opts, WithAllocationTimeout(1*time.Hour))...,
			)
			result <- err
		}()

		err := clock.BlockUntilContext(ctx, 1)
		Expect(err).ShouldNot(HaveOccurred())

		clock.Advance(1 * time.Hour)

		Eventually(result).Should(Receive(&err))
		Expect(err).To(MatchError(allocate.ErrAllocationTimeout))
		Expect(err).To(MatchError(context.DeadlineExceeded))
	})

	It("returns an allocation timeout if every candidate is held", func() {
		for _, id := range []int{150, 151, 152} {
			ok, err := store.Insert(ctx, instance.NewRecord(id, start, instance.Metadata{}))
			Expect(err).ShouldNot(HaveOccurred())
			Expect(ok).To(BeTrue())
		}

		_, err := New(
			ctx,
			store,
			append(opts, WithAllocationTimeout(50*time.Millisecond))...,
		)
		Expect(err).To(MatchError(allocate.ErrAllocationTimeout))
	})

	It("returns the context error if ctx is canceled", func() {
		store.LoadFunc = func(ctx context.Context, _ int) (instance.Record, bool, error) {
			<-ctx.Done()
			return instance.Record{}, false, ctx.Err()
		}

		cancel()

		_, err := New(ctx, store, opts...)
		Expect(err).To(Equal(context.Canceled))
	})
})

var _ = Describe("type Identity", func() {
	Describe("func Close()", func() {
		var (
			ctx      context.Context
			cancel   context.CancelFunc
			store    *StoreStub
			clock    *clockwork.FakeClock
			identity *Identity
		)

		BeforeEach(func() {
			ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
			store = NewStoreStub()
			clock = clockwork.NewFakeClock()
		})

		AfterEach(func() {
			cancel()
		})

		It("stops the heartbeat", func() {
			var err error
			identity, err = New(
				ctx,
				store,
				WithClock(clock),
				WithLogger(logging.DiscardLogger{}),
			)
			Expect(err).ShouldNot(HaveOccurred())

			err = clock.BlockUntilContext(ctx, 1)
			Expect(err).ShouldNot(HaveOccurred())

			err = identity.Close()
			Expect(err).ShouldNot(HaveOccurred())

			before, _, err := store.Load(ctx, identity.ID())
			Expect(err).ShouldNot(HaveOccurred())

			clock.Advance(DefaultHeartbeatPeriod)

			Consistently(func() time.Time {
				r, _, err := store.Load(ctx, identity.ID())
				Expect(err).ShouldNot(HaveOccurred())
				return r.CheckTime
			}, 50*time.Millisecond).Should(Equal(before.CheckTime))
		})

		It("can be called more than once", func() {
			var err error
			identity, err = New(ctx, store, WithClock(clock), WithLogger(logging.DiscardLogger{}))
			Expect(err).ShouldNot(HaveOccurred())

			Expect(identity.Close()).To(Succeed())
			Expect(identity.Close()).To(Succeed())
		})

		It("does not leak goroutines", func() {
			opt := goleak.IgnoreCurrent()

			var err error
			identity, err = New(ctx, store, WithClock(clock), WithLogger(logging.DiscardLogger{}))
			Expect(err).ShouldNot(HaveOccurred())

			identity.Close()

			goleak.VerifyNone(GinkgoT(), opt)
		})
	})
})

var _ = Describe("func NewContext()", func() {
	It("returns a context that carries the identity", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		identity, err := New(
			ctx,
			NewStoreStub(),
			WithClock(clockwork.NewFakeClock()),
			WithLogger(logging.DiscardLogger{}),
		)
		Expect(err).ShouldNot(HaveOccurred())
		defer identity.Close()

		id, ok := FromContext(NewContext(ctx, identity))
		Expect(ok).To(BeTrue())
		Expect(id).To(BeIdenticalTo(identity))
	})
})

var _ = Describe("func FromContext()", func() {
	It("returns false if the context does not carry an identity", func() {
		_, ok := FromContext(context.Background())
		Expect(ok).To(BeFalse())
	})
})
