package config

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// RecordSize is the stored size of a Record: one flash page.
const RecordSize = 2048

// Defaults written on first boot.
const (
	DefaultCoefAnemo  float32 = 1.1176
	DefaultCoefPluvio float32 = 0.2
	DefaultTempA      float32 = 1.0
	DefaultTempB      float32 = 0.0
)

// Coefficient bounds, both exclusive.
const (
	MaxCoefAnemo  float32 = 5.0
	MaxCoefPluvio float32 = 2.0
)

const (
	// BootMarker is stored when the bootloader hands over to the application
	BootMarker = "TOOB"

	// PresenceMagic is written by an installed application into Presence
	PresenceMagic uint32 = 0x12345678

	// unprogrammed is the first identity word of an erased page
	unprogrammed uint32 = 0xFFFFFFFF
)

// Record is the persistent configuration, laid out exactly as stored:
// little-endian with the padding of the original C structure.
type Record struct {
	UniqueID       [3]uint32
	PermitTransmit bool
	_              [3]byte

	CoefAnemo  float32
	CoefPluvio float32
	TempA      float32
	TempB      float32

	// Last readings published by the application
	WindSpeed   float32
	Rain        float32
	Temperature float32

	Major   uint32
	Minor   uint32
	Release uint32

	Presence uint32

	CompileTime [32]byte
	CompileDate [32]byte
	Version     [32]byte
	BootMarker  [4]byte

	Reserved [1888]byte
}

// Defaults returns the first-boot record for a device.
func Defaults(id [3]uint32) *Record {
	return &Record{
		UniqueID:   id,
		CoefAnemo:  DefaultCoefAnemo,
		CoefPluvio: DefaultCoefPluvio,
		TempA:      DefaultTempA,
		TempB:      DefaultTempB,
	}
}

// Decode parses a stored record. data must hold at least RecordSize bytes.
func Decode(data []byte) (*Record, error) {
	if len(data) < RecordSize {
		return nil, fmt.Errorf("record is %d bytes, want %d", len(data), RecordSize)
	}
	r := new(Record)
	if err := binary.Read(bytes.NewReader(data[:RecordSize]), binary.LittleEndian, r); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return r, nil
}

// Encode returns the stored form of r.
func (r *Record) Encode() []byte {
	var buf bytes.Buffer
	buf.Grow(RecordSize)
	// Writes into a bytes.Buffer of a fixed-size struct cannot fail.
	_ = binary.Write(&buf, binary.LittleEndian, r)
	return buf.Bytes()
}

// Initialized reports whether the record was ever written.
func (r *Record) Initialized() bool {
	return r.UniqueID[0] != unprogrammed
}

// Validate checks the coefficient ranges.
func (r *Record) Validate() error {
	if !(r.CoefAnemo > 0 && r.CoefAnemo < MaxCoefAnemo) {
		return &RangeError{Field: "CoefAnemo", Value: r.CoefAnemo, Max: MaxCoefAnemo}
	}
	if !(r.CoefPluvio > 0 && r.CoefPluvio < MaxCoefPluvio) {
		return &RangeError{Field: "CoefPluvio", Value: r.CoefPluvio, Max: MaxCoefPluvio}
	}
	return nil
}

// SetBootMarker records that the bootloader started the application.
func (r *Record) SetBootMarker() {
	copy(r.BootMarker[:], BootMarker)
}

// HasBootMarker reports whether SetBootMarker was stored.
func (r *Record) HasBootMarker() bool {
	return string(r.BootMarker[:]) == BootMarker
}

// AppPresent reports whether an application announced itself.
func (r *Record) AppPresent() bool {
	return r.Presence == PresenceMagic
}

// VersionString renders the version for display. The application's own
// version text wins when it is present.
func (r *Record) VersionString() string {
	if r.AppPresent() {
		return fmt.Sprintf("%s, %s, %s", Text(r.Version[:]), Text(r.CompileDate[:]), Text(r.CompileTime[:]))
	}
	s := fmt.Sprintf("%d.%02d", r.Major, r.Minor)
	if rel := r.Release; rel >= 0x20 && rel < 0x7F {
		s += string(rune(rel))
	} else if rel != 0 {
		s += fmt.Sprintf(".%d", rel)
	}
	return s
}

// IDString renders the unique ID as 24 hex digits.
func (r *Record) IDString() string {
	return fmt.Sprintf("%08X%08X%08X", r.UniqueID[0], r.UniqueID[1], r.UniqueID[2])
}

// Text returns the NUL-terminated string stored in field. Erased bytes end
// the string too.
func Text(field []byte) string {
	for i, b := range field {
		if b == 0 || b == 0xFF {
			return string(field[:i])
		}
	}
	return string(field)
}

// SetText stores s in field, truncated to leave room for the terminator.
func SetText(field []byte, s string) {
	for i := range field {
		field[i] = 0
	}
	if len(s) >= len(field) {
		s = s[:len(field)-1]
	}
	copy(field, s)
}
