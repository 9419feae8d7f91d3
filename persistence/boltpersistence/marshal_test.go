package boltpersistence

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/tethysim/nodeid/instance"
	"github.com/tethysim/nodeid/internal/testing/storetest"
	"github.com/tethysim/nodeid/internal/x/bboltx"
	"github.com/tethysim/nodeid/internal/x/gomegax"
)

var _ = Describe("func unmarshalRecord()", func() {
	It("returns the record that was marshaled", func() {
		r := instance.Record{
			ID:        150,
			Version:   7,
			CheckTime: time.Unix(0, 1700000000123456789),
			Metadata:  storetest.NewMetadata("<host>", 1),
		}

		Expect(unmarshalRecord(150, marshalRecord(r))).To(gomegax.EqualCmp(r))
	})

	It("panics if the data is corrupt", func() {
		Expect(func() {
			unmarshalRecord(150, []byte{0xff, 0x00})
		}).To(PanicWith(
			BeAssignableToTypeOf(bboltx.PanicSentinel{}),
		))
	})
})

var _ = Describe("func marshalID()", func() {
	It("orders keys numerically", func() {
		Expect(string(marshalID(99)) < string(marshalID(256))).To(BeTrue())
	})
})
