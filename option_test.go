package nodeid

import (
	"errors"
	"os"
	"time"

	"github.com/dogmatiq/dodeca/logging"
	"github.com/jonboulle/clockwork"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/tethysim/nodeid/allocate"
	noopmetric "go.opentelemetry.io/otel/metric/noop"
	nooptrace "go.opentelemetry.io/otel/trace/noop"
)

var _ = Describe("func resolveOptions()", func() {
	It("uses the defaults when no options are given", func() {
		opts := resolveOptions()

		Expect(opts.ApplicationName).To(Equal(DefaultApplicationName))
		Expect(opts.Version).To(Equal(DefaultVersion))
		Expect(opts.FIDBits).To(Equal(DefaultFIDBits))
		Expect(opts.FIDMin).To(Equal(allocate.MinFID))
		Expect(opts.FIDMax).To(Equal(65535))
		Expect(opts.ExpiryWindow).To(Equal(DefaultExpiryWindow))
		Expect(opts.HeartbeatPeriod).To(Equal(DefaultHeartbeatPeriod))
		Expect(opts.AllocationTimeout).To(Equal(DefaultAllocationTimeout))
		Expect(opts.Sampler).To(Equal(allocate.CandidateGenerator{Min: 99, Max: 65535}))
		Expect(opts.Logger).To(Equal(DefaultLogger))
		Expect(opts.Clock).NotTo(BeNil())
		Expect(opts.ClockCheck).To(BeNil())
	})
})

var _ = Describe("func WithApplicationName()", func() {
	It("sets the application name", func() {
		opts := resolveOptions(WithApplicationName("<app>"))
		Expect(opts.ApplicationName).To(Equal("<app>"))
	})
})

var _ = Describe("func WithVersion()", func() {
	It("sets the version", func() {
		opts := resolveOptions(WithVersion("2.0.0-rc.1"))
		Expect(opts.Version).To(Equal("2.0.0-rc.1"))
	})

	It("panics if the version is not a semantic version", func() {
		Expect(func() {
			WithVersion("<not a version>")
		}).To(Panic())
	})
})

var _ = Describe("func WithFIDRange()", func() {
	It("sets the range sampled by the candidate generator", func() {
		opts := resolveOptions(WithFIDRange(200, 300))
		Expect(opts.Sampler).To(Equal(allocate.CandidateGenerator{Min: 200, Max: 300}))
	})

	It("takes precedence over WithFIDBits()", func() {
		opts := resolveOptions(
			WithFIDRange(200, 300),
			WithFIDBits(10),
		)
		Expect(opts.FIDMax).To(Equal(300))
	})

	It("allows a range containing a single FID", func() {
		opts := resolveOptions(WithFIDRange(0, 0))
		Expect(opts.Sampler).To(Equal(allocate.CandidateGenerator{Min: 0, Max: 0}))
	})

	DescribeTable(
		"it panics if the range is invalid",
		func(min, max int) {
			Expect(func() {
				WithFIDRange(min, max)
			}).To(Panic())
		},
		Entry("negative minimum", -1, 10),
		Entry("maximum less than minimum", 10, 9),
	)
})

var _ = Describe("func WithFIDBits()", func() {
	It("sets the upper bound of the FID range", func() {
		opts := resolveOptions(WithFIDBits(10))
		Expect(opts.FIDMin).To(Equal(allocate.MinFID))
		Expect(opts.FIDMax).To(Equal(1023))
	})

	It("panics if the width is out of range", func() {
		Expect(func() {
			WithFIDBits(32)
		}).To(Panic())
	})

	It("panics at resolution if the range would be empty", func() {
		Expect(func() {
			resolveOptions(WithFIDBits(4))
		}).To(Panic())
	})
})

var _ = Describe("func WithExpiryWindow()", func() {
	It("sets the expiry window", func() {
		opts := resolveOptions(WithExpiryWindow(10 * time.Minute))
		Expect(opts.ExpiryWindow).To(Equal(10 * time.Minute))
	})

	It("uses the default if the duration is zero", func() {
		opts := resolveOptions(WithExpiryWindow(0))
		Expect(opts.ExpiryWindow).To(Equal(DefaultExpiryWindow))
	})

	It("panics if the duration is negative", func() {
		Expect(func() {
			WithExpiryWindow(-1)
		}).To(Panic())
	})
})

var _ = Describe("func WithHeartbeatPeriod()", func() {
	It("sets the heartbeat period", func() {
		opts := resolveOptions(WithHeartbeatPeriod(1 * time.Minute))
		Expect(opts.HeartbeatPeriod).To(Equal(1 * time.Minute))
	})

	It("panics if the duration is negative", func() {
		Expect(func() {
			WithHeartbeatPeriod(-1)
		}).To(Panic())
	})
})

var _ = Describe("func WithAllocationTimeout()", func() {
	It("sets the allocation timeout", func() {
		opts := resolveOptions(WithAllocationTimeout(3 * time.Second))
		Expect(opts.AllocationTimeout).To(Equal(3 * time.Second))
	})

	It("panics if the duration is negative", func() {
		Expect(func() {
			WithAllocationTimeout(-1)
		}).To(Panic())
	})
})

var _ = Describe("func WithSampler()", func() {
	It("sets the sampler", func() {
		called := false
		s := allocate.SamplerFunc(func() (int, error) {
			called = true
			return 0, errors.New("<error>")
		})

		opts := resolveOptions(
			WithFIDRange(200, 300),
			WithSampler(s),
		)

		opts.Sampler.Sample()
		Expect(called).To(BeTrue())
	})
})

var _ = Describe("func WithClock()", func() {
	It("sets the clock", func() {
		c := clockwork.NewFakeClock()
		opts := resolveOptions(WithClock(c))
		Expect(opts.Clock).To(BeIdenticalTo(c))
	})
})

var _ = Describe("func WithLogger()", func() {
	It("sets the logger", func() {
		l := &logging.BufferedLogger{}
		opts := resolveOptions(WithLogger(l))
		Expect(opts.Logger).To(BeIdenticalTo(l))
	})
})

var _ = Describe("func WithMeterProvider()", func() {
	It("sets the meter provider", func() {
		p := noopmetric.NewMeterProvider()
		opts := resolveOptions(WithMeterProvider(p))
		Expect(opts.Telemetry.MeterProvider).To(Equal(p))
	})

	It("panics if the provider is nil", func() {
		Expect(func() {
			WithMeterProvider(nil)
		}).To(Panic())
	})
})

var _ = Describe("func WithTracerProvider()", func() {
	It("sets the tracer provider", func() {
		p := nooptrace.NewTracerProvider()
		opts := resolveOptions(WithTracerProvider(p))
		Expect(opts.Telemetry.TracerProvider).To(Equal(p))
	})

	It("panics if the provider is nil", func() {
		Expect(func() {
			WithTracerProvider(nil)
		}).To(Panic())
	})
})

var _ = Describe("func WithClockCheck()", func() {
	It("enables the clock check", func() {
		opts := resolveOptions(WithClockCheck("<host>", 1*time.Second))
		Expect(opts.ClockCheck).To(Equal(&clockCheck{
			Host:      "<host>",
			Threshold: 1 * time.Second,
		}))
	})

	It("uses the default threshold if it is zero", func() {
		opts := resolveOptions(WithClockCheck("<host>", 0))
		Expect(opts.ClockCheck.Threshold).To(Equal(DefaultClockCheckThreshold))
	})

	It("panics if the host is empty", func() {
		Expect(func() {
			WithClockCheck("", 0)
		}).To(Panic())
	})
})

var _ = Describe("func WithOptionsFromEnvironment()", func() {
	BeforeEach(func() {
		vars := map[string]string{
			"NODEID_APPLICATION_NAME":   "<env-app>",
			"NODEID_FID_MIN":            "1000",
			"NODEID_FID_MAX":            "2000",
			"NODEID_EXPIRY_WINDOW":      "30m",
			"NODEID_HEARTBEAT_PERIOD":   "2m",
			"NODEID_ALLOCATION_TIMEOUT": "20s",
		}

		for k, v := range vars {
			os.Setenv(k, v)
			DeferCleanup(os.Unsetenv, k)
		}
	})

	It("reads options from the environment", func() {
		opts := resolveOptions(WithOptionsFromEnvironment())

		Expect(opts.ApplicationName).To(Equal("<env-app>"))
		Expect(opts.FIDMin).To(Equal(1000))
		Expect(opts.FIDMax).To(Equal(2000))
		Expect(opts.ExpiryWindow).To(Equal(30 * time.Minute))
		Expect(opts.HeartbeatPeriod).To(Equal(2 * time.Minute))
		Expect(opts.AllocationTimeout).To(Equal(20 * time.Second))
	})

	It("prefers explicit options", func() {
		opts := resolveOptions(
			WithOptionsFromEnvironment(),
			WithApplicationName("<app>"),
			WithFIDRange(200, 300),
			WithExpiryWindow(10*time.Minute),
		)

		Expect(opts.ApplicationName).To(Equal("<app>"))
		Expect(opts.FIDMin).To(Equal(200))
		Expect(opts.FIDMax).To(Equal(300))
		Expect(opts.ExpiryWindow).To(Equal(10 * time.Minute))
		Expect(opts.HeartbeatPeriod).To(Equal(2 * time.Minute))
	})

	It("ignores the environment when the option is omitted", func() {
		opts := resolveOptions()
		Expect(opts.ApplicationName).To(Equal(DefaultApplicationName))
		Expect(opts.ExpiryWindow).To(Equal(DefaultExpiryWindow))
	})
})
