package nodeid

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Masterminds/semver"
	"github.com/dogmatiq/dodeca/logging"
	"github.com/jonboulle/clockwork"
	"github.com/tethysim/nodeid/allocate"
	"github.com/tethysim/nodeid/heartbeat"
	"github.com/tethysim/nodeid/internal/telemetry"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	// DefaultApplicationName is the default name of the application that owns
	// the identity.
	//
	// It is overridden by the WithApplicationName() option.
	DefaultApplicationName = filepath.Base(os.Args[0])

	// DefaultVersion is the default version of the application that owns the
	// identity.
	//
	// It is overridden by the WithVersion() option.
	DefaultVersion = "0.0.0"

	// DefaultFIDBits is the default width, in bits, of the FID. It determines
	// the upper bound of the FID range.
	//
	// It is overridden by the WithFIDBits() option.
	DefaultFIDBits = allocate.DefaultFIDBits

	// DefaultExpiryWindow is the default time after which an instance record
	// without a heartbeat may be reclaimed by another process.
	//
	// It is overridden by the WithExpiryWindow() option.
	DefaultExpiryWindow = allocate.DefaultExpiryWindow

	// DefaultHeartbeatPeriod is the default interval between heartbeats.
	//
	// It is overridden by the WithHeartbeatPeriod() option.
	DefaultHeartbeatPeriod = heartbeat.DefaultPeriod

	// DefaultAllocationTimeout is the default time allowed to acquire a FID.
	//
	// It is overridden by the WithAllocationTimeout() option.
	DefaultAllocationTimeout = allocate.DefaultTimeout

	// DefaultLogger is the default target for log messages.
	//
	// It is overridden by the WithLogger() option.
	DefaultLogger = logging.DefaultLogger
)

// Option configures the behavior of New().
type Option func(*options)

// WithApplicationName returns an option that sets the name of the application
// that owns the identity.
//
// If this option is omitted or n is empty, DefaultApplicationName is used.
func WithApplicationName(n string) Option {
	return func(opts *options) {
		opts.ApplicationName = n
	}
}

// WithVersion returns an option that sets the version of the application that
// owns the identity.
//
// v must be a valid semantic version. If this option is omitted or v is empty,
// DefaultVersion is used.
func WithVersion(v string) Option {
	if v != "" {
		if _, err := semver.NewVersion(v); err != nil {
			panic(fmt.Sprintf("invalid version %q: %s", v, err))
		}
	}

	return func(opts *options) {
		opts.Version = v
	}
}

// WithFIDRange returns an option that restricts allocation to FIDs in the
// closed range [min, max].
//
// If this option is omitted the range is [allocate.MinFID, m] where m is the
// largest value that fits in the width given by WithFIDBits().
func WithFIDRange(min, max int) Option {
	if min < 0 || max < min {
		panic(fmt.Sprintf("invalid FID range [%d, %d]", min, max))
	}

	return func(opts *options) {
		opts.FIDMin = min
		opts.FIDMax = max
	}
}

// WithFIDBits returns an option that sets the width, in bits, of the FID.
//
// It is ignored if WithFIDRange() is also used. If this option is omitted or n
// is zero, DefaultFIDBits is used.
func WithFIDBits(n int) Option {
	if n != 0 {
		allocate.MaxFID(n) // panics if n is out of range
	}

	return func(opts *options) {
		opts.FIDBits = n
	}
}

// WithExpiryWindow returns an option that sets the time after which an
// instance record without a heartbeat may be reclaimed by another process.
//
// It should be several times the heartbeat period. If this option is omitted or
// d is zero, DefaultExpiryWindow is used.
func WithExpiryWindow(d time.Duration) Option {
	if d < 0 {
		panic("duration must not be negative")
	}

	return func(opts *options) {
		opts.ExpiryWindow = d
	}
}

// WithHeartbeatPeriod returns an option that sets the interval between
// heartbeats.
//
// If this option is omitted or d is zero, DefaultHeartbeatPeriod is used.
func WithHeartbeatPeriod(d time.Duration) Option {
	if d < 0 {
		panic("duration must not be negative")
	}

	return func(opts *options) {
		opts.HeartbeatPeriod = d
	}
}

// WithAllocationTimeout returns an option that sets the time allowed to acquire
// a FID.
//
// If this option is omitted or d is zero, DefaultAllocationTimeout is used.
func WithAllocationTimeout(d time.Duration) Option {
	if d < 0 {
		panic("duration must not be negative")
	}

	return func(opts *options) {
		opts.AllocationTimeout = d
	}
}

// WithSampler returns an option that sets the source of candidate FIDs.
//
// It takes precedence over WithFIDRange() and WithFIDBits(). If this option is
// omitted or s is nil, candidates are chosen uniformly at random from the FID
// range.
func WithSampler(s allocate.Sampler) Option {
	return func(opts *options) {
		opts.Sampler = s
	}
}

// WithClock returns an option that sets the clock used for check times,
// heartbeats and the allocation timer.
//
// If this option is omitted or c is nil, the real clock is used.
func WithClock(c clockwork.Clock) Option {
	return func(opts *options) {
		opts.Clock = c
	}
}

// WithLogger returns an option that sets the target for log messages.
//
// If this option is omitted or l is nil, DefaultLogger is used.
func WithLogger(l logging.Logger) Option {
	return func(opts *options) {
		opts.Logger = l
	}
}

// WithMeterProvider returns an option that sets the OpenTelemetry meter
// provider used to record allocation and heartbeat metrics.
func WithMeterProvider(p metric.MeterProvider) Option {
	if p == nil {
		panic("meter provider must not be nil")
	}

	return func(opts *options) {
		opts.Telemetry.MeterProvider = p
	}
}

// WithTracerProvider returns an option that sets the OpenTelemetry tracer
// provider used to record allocation spans.
func WithTracerProvider(p trace.TracerProvider) Option {
	if p == nil {
		panic("tracer provider must not be nil")
	}

	return func(opts *options) {
		opts.Telemetry.TracerProvider = p
	}
}

// WithClockCheck returns an option that compares the local clock against the
// NTP server at host before allocating, and logs a warning if the offset
// exceeds threshold.
//
// The check never prevents allocation. It runs before the allocation timeout
// starts, so it can delay New() by up to DefaultClockCheckTimeout in addition
// to the allocation timeout. The caller's context bounds both. If threshold is
// zero, DefaultClockCheckThreshold is used.
func WithClockCheck(host string, threshold time.Duration) Option {
	if host == "" {
		panic("NTP host must not be empty")
	}

	if threshold < 0 {
		panic("duration must not be negative")
	}

	return func(opts *options) {
		opts.ClockCheck = &clockCheck{
			Host:      host,
			Threshold: threshold,
		}
	}
}

// WithOptionsFromEnvironment returns an option that reads any options that
// are not set explicitly from environment variables.
//
// See FerriteRegistry for the variables that are recognized.
func WithOptionsFromEnvironment() Option {
	return func(opts *options) {
		opts.UseEnv = true
	}
}

// options is the result of applying a set of Option functions.
type options struct {
	UseEnv            bool
	ApplicationName   string
	Version           string
	FIDMin, FIDMax    int
	FIDBits           int
	ExpiryWindow      time.Duration
	HeartbeatPeriod   time.Duration
	AllocationTimeout time.Duration
	Sampler           allocate.Sampler
	Clock             clockwork.Clock
	Logger            logging.Logger
	Telemetry         telemetry.Provider
	ClockCheck        *clockCheck
}

// resolveOptions returns a fully-populated options struct.
func resolveOptions(opts ...Option) *options {
	o := &options{
		FIDMin: -1,
	}

	for _, opt := range opts {
		opt(o)
	}

	if o.UseEnv {
		o.applyEnvironment()
	}

	if o.ApplicationName == "" {
		o.ApplicationName = DefaultApplicationName
	}

	if o.Version == "" {
		o.Version = DefaultVersion
	}

	if o.FIDBits == 0 {
		o.FIDBits = DefaultFIDBits
	}

	if o.FIDMin < 0 {
		o.FIDMin = allocate.MinFID
		o.FIDMax = allocate.MaxFID(o.FIDBits)
	}

	if o.FIDMax < o.FIDMin {
		panic(fmt.Sprintf("invalid FID range [%d, %d]", o.FIDMin, o.FIDMax))
	}

	if o.ExpiryWindow == 0 {
		o.ExpiryWindow = DefaultExpiryWindow
	}

	if o.HeartbeatPeriod == 0 {
		o.HeartbeatPeriod = DefaultHeartbeatPeriod
	}

	if o.AllocationTimeout == 0 {
		o.AllocationTimeout = DefaultAllocationTimeout
	}

	if o.Sampler == nil {
		o.Sampler = allocate.CandidateGenerator{
			Min: o.FIDMin,
			Max: o.FIDMax,
		}
	}

	if o.Clock == nil {
		o.Clock = clockwork.NewRealClock()
	}

	if o.Logger == nil {
		o.Logger = DefaultLogger
	}

	if o.ClockCheck != nil && o.ClockCheck.Threshold == 0 {
		o.ClockCheck.Threshold = DefaultClockCheckThreshold
	}

	return o
}
