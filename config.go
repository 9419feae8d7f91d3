package nodeid

import (
	"time"

	"github.com/dogmatiq/ferrite"
	"github.com/tethysim/nodeid/allocate"
)

// FerriteRegistry is a registry of the environment variables that are read
// when the WithOptionsFromEnvironment() option is used.
var FerriteRegistry = ferrite.NewRegistry(
	"tethysim.nodeid",
	"nodeid",
	ferrite.WithDocumentationURL("https://github.com/tethysim/nodeid#readme"),
)

var (
	applicationName = ferrite.
			String("NODEID_APPLICATION_NAME", "the name of the application that owns the FID").
			Optional(ferrite.WithRegistry(FerriteRegistry))

	fidMin = ferrite.
		Signed[int]("NODEID_FID_MIN", "the smallest FID that may be allocated").
		WithMinimum(0).
		Optional(ferrite.WithRegistry(FerriteRegistry))

	fidMax = ferrite.
		Signed[int]("NODEID_FID_MAX", "the largest FID that may be allocated").
		WithMinimum(0).
		Optional(ferrite.WithRegistry(FerriteRegistry))

	expiryWindow = ferrite.
			Duration("NODEID_EXPIRY_WINDOW", "the time after which an instance without a heartbeat may be reclaimed").
			WithMinimum(1 * time.Second).
			Optional(ferrite.WithRegistry(FerriteRegistry))

	heartbeatPeriod = ferrite.
			Duration("NODEID_HEARTBEAT_PERIOD", "the interval between heartbeats").
			WithMinimum(1 * time.Second).
			Optional(ferrite.WithRegistry(FerriteRegistry))

	allocationTimeout = ferrite.
				Duration("NODEID_ALLOCATION_TIMEOUT", "the time allowed to acquire a FID").
				WithMinimum(1 * time.Millisecond).
				Optional(ferrite.WithRegistry(FerriteRegistry))
)

// applyEnvironment populates any options that were not set explicitly from
// environment variables.
func (o *options) applyEnvironment() {
	if o.ApplicationName == "" {
		if v, ok := applicationName.Value(); ok {
			o.ApplicationName = v
		}
	}

	if o.FIDMin < 0 {
		min, hasMin := fidMin.Value()
		max, hasMax := fidMax.Value()

		if hasMin || hasMax {
			if !hasMin {
				min = allocate.MinFID
			}

			if !hasMax {
				bits := o.FIDBits
				if bits == 0 {
					bits = DefaultFIDBits
				}
				max = allocate.MaxFID(bits)
			}

			o.FIDMin, o.FIDMax = min, max
		}
	}

	if o.ExpiryWindow == 0 {
		if d, ok := expiryWindow.Value(); ok {
			o.ExpiryWindow = d
		}
	}

	if o.HeartbeatPeriod == 0 {
		if d, ok := heartbeatPeriod.Value(); ok {
			o.HeartbeatPeriod = d
		}
	}

	if o.AllocationTimeout == 0 {
		if d, ok := allocationTimeout.Value(); ok {
			o.AllocationTimeout = d
		}
	}
}
