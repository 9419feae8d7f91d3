package boltpersistence

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
	"github.com/tethysim/nodeid/instance"
	"github.com/tethysim/nodeid/internal/x/bboltx"
)

// storedRecord is the CBOR representation of an instance record.
type storedRecord struct {
	Version        int64     `cbor:"1,keyasint"`
	CheckTime      int64     `cbor:"2,keyasint"`
	HostName       string    `cbor:"3,keyasint,omitempty"`
	HostAddress    string    `cbor:"4,keyasint,omitempty"`
	OSName         string    `cbor:"5,keyasint,omitempty"`
	OSVersion      string    `cbor:"6,keyasint,omitempty"`
	OSArch         string    `cbor:"7,keyasint,omitempty"`
	OSUser         string    `cbor:"8,keyasint,omitempty"`
	RuntimeName    string    `cbor:"9,keyasint,omitempty"`
	RuntimeVersion string    `cbor:"10,keyasint,omitempty"`
	RuntimeVendor  string    `cbor:"11,keyasint,omitempty"`
	WorkDir        string    `cbor:"12,keyasint,omitempty"`
	PID            int       `cbor:"13,keyasint,omitempty"`
	BootID         uuid.UUID `cbor:"14,keyasint"`
}

// marshalID returns the bucket key for a FID.
func marshalID(id int) []byte {
	data := make([]byte, 8)
	binary.BigEndian.PutUint64(data, uint64(id))
	return data
}

// marshalRecord returns the binary representation of r.
func marshalRecord(r instance.Record) []byte {
	data, err := cbor.Marshal(storedRecord{
		Version:        r.Version,
		CheckTime:      r.CheckTime.UnixNano(),
		HostName:       r.Metadata.HostName,
		HostAddress:    r.Metadata.HostAddress,
		OSName:         r.Metadata.OSName,
		OSVersion:      r.Metadata.OSVersion,
		OSArch:         r.Metadata.OSArch,
		OSUser:         r.Metadata.OSUser,
		RuntimeName:    r.Metadata.RuntimeName,
		RuntimeVersion: r.Metadata.RuntimeVersion,
		RuntimeVendor:  r.Metadata.RuntimeVendor,
		WorkDir:        r.Metadata.WorkDir,
		PID:            r.Metadata.PID,
		BootID:         r.Metadata.BootID,
	})
	bboltx.Must(err)

	return data
}

// unmarshalRecord returns the instance record with the given FID from its
// binary representation.
func unmarshalRecord(id int, data []byte) instance.Record {
	var sr storedRecord
	if err := cbor.Unmarshal(data, &sr); err != nil {
		bboltx.Must(fmt.Errorf("data for FID %d is corrupt: %w", id, err))
	}

	return instance.Record{
		ID:        id,
		Version:   sr.Version,
		CheckTime: time.Unix(0, sr.CheckTime),
		Metadata: instance.Metadata{
			HostName:       sr.HostName,
			HostAddress:    sr.HostAddress,
			OSName:         sr.OSName,
			OSVersion:      sr.OSVersion,
			OSArch:         sr.OSArch,
			OSUser:         sr.OSUser,
			RuntimeName:    sr.RuntimeName,
			RuntimeVersion: sr.RuntimeVersion,
			RuntimeVendor:  sr.RuntimeVendor,
			WorkDir:        sr.WorkDir,
			PID:            sr.PID,
			BootID:         sr.BootID,
		},
	}
}
