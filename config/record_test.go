package config

import (
	"encoding/binary"
	"errors"
	"math"
	"strings"
	"testing"
)

func TestRecordSize(t *testing.T) {
	if got := binary.Size(Record{}); got != RecordSize {
		t.Fatalf("binary.Size(Record) = %d, want %d", got, RecordSize)
	}
	if got := len(Defaults([3]uint32{}).Encode()); got != RecordSize {
		t.Errorf("len(Encode()) = %d, want %d", got, RecordSize)
	}
}

func TestRecordLayout(t *testing.T) {
	r := Defaults([3]uint32{0x11111111, 0x22222222, 0x33333333})
	r.PermitTransmit = true
	r.Major, r.Minor, r.Release = 2, 7, 'b'
	r.Presence = PresenceMagic
	SetText(r.CompileTime[:], "12:00:00")
	SetText(r.CompileDate[:], "Jan 02 2025")
	SetText(r.Version[:], "v2.07b")
	r.SetBootMarker()

	data := r.Encode()
	u32 := func(off int) uint32 { return binary.LittleEndian.Uint32(data[off:]) }
	f32 := func(off int) float32 { return math.Float32frombits(u32(off)) }

	tests := []struct {
		name string
		ok   bool
	}{
		{name: "unique id at 0", ok: u32(0) == 0x11111111 && u32(8) == 0x33333333},
		{name: "permit transmit at 12", ok: data[12] == 1},
		{name: "padding 13..15 zero", ok: data[13] == 0 && data[14] == 0 && data[15] == 0},
		{name: "coef anemo at 16", ok: f32(16) == DefaultCoefAnemo},
		{name: "coef pluvio at 20", ok: f32(20) == DefaultCoefPluvio},
		{name: "temp a at 24", ok: f32(24) == DefaultTempA},
		{name: "major at 44", ok: u32(44) == 2},
		{name: "release at 52", ok: u32(52) == 'b'},
		{name: "presence at 56", ok: u32(56) == PresenceMagic},
		{name: "compile time at 60", ok: string(data[60:68]) == "12:00:00"},
		{name: "compile date at 92", ok: string(data[92:103]) == "Jan 02 2025"},
		{name: "version at 124", ok: string(data[124:130]) == "v2.07b"},
		{name: "boot marker at 156", ok: string(data[156:160]) == BootMarker},
	}
	for _, tt := range tests {
		if !tt.ok {
			t.Errorf("%s: layout mismatch", tt.name)
		}
	}

	back, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if *back != *r {
		t.Error("Decode(Encode(r)) != r")
	}
}

func TestDecodeShort(t *testing.T) {
	if _, err := Decode(make([]byte, RecordSize-1)); err == nil {
		t.Error("expected error for short record")
	}
}

func TestDecodeErased(t *testing.T) {
	erased := make([]byte, RecordSize)
	for i := range erased {
		erased[i] = 0xFF
	}
	r, err := Decode(erased)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if r.Initialized() {
		t.Error("erased record reports initialized")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		anemo     float32
		pluvio    float32
		wantField string
	}{
		{name: "defaults", anemo: DefaultCoefAnemo, pluvio: DefaultCoefPluvio},
		{name: "anemo zero", anemo: 0, pluvio: 1, wantField: "CoefAnemo"},
		{name: "anemo at max", anemo: 5, pluvio: 1, wantField: "CoefAnemo"},
		{name: "anemo negative", anemo: -1, pluvio: 1, wantField: "CoefAnemo"},
		{name: "anemo NaN", anemo: float32(math.NaN()), pluvio: 1, wantField: "CoefAnemo"},
		{name: "pluvio at max", anemo: 1, pluvio: 2, wantField: "CoefPluvio"},
		{name: "pluvio just below max", anemo: 4.99, pluvio: 1.99},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Defaults([3]uint32{})
			r.CoefAnemo, r.CoefPluvio = tt.anemo, tt.pluvio

			err := r.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			var re *RangeError
			if !errors.As(err, &re) {
				t.Fatalf("Validate() error = %v, want *RangeError", err)
			}
			if re.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", re.Field, tt.wantField)
			}
			if !strings.Contains(err.Error(), "out of range") {
				t.Errorf("error = %q", err)
			}
		})
	}
}

func TestText(t *testing.T) {
	var field [8]byte
	SetText(field[:], "abc")
	if got := Text(field[:]); got != "abc" {
		t.Errorf("Text() = %q, want abc", got)
	}

	SetText(field[:], "truncated-text")
	if got := Text(field[:]); got != "truncat" {
		t.Errorf("Text() = %q, want truncat", got)
	}

	erased := []byte{'x', 0xFF, 0xFF}
	if got := Text(erased); got != "x" {
		t.Errorf("Text(erased) = %q, want x", got)
	}
}

func TestVersionString(t *testing.T) {
	tests := []struct {
		name string
		rec  func(r *Record)
		want string
	}{
		{name: "first boot", rec: func(r *Record) {}, want: "0.00"},
		{name: "printable release", rec: func(r *Record) { r.Major, r.Minor, r.Release = 1, 3, 'a' }, want: "1.03a"},
		{name: "numeric release", rec: func(r *Record) { r.Major, r.Minor, r.Release = 1, 3, 4 }, want: "1.03.4"},
		{
			name: "application text",
			rec: func(r *Record) {
				r.Presence = PresenceMagic
				SetText(r.Version[:], "v1")
				SetText(r.CompileDate[:], "Mar 01 2025")
				SetText(r.CompileTime[:], "10:00:00")
			},
			want: "v1, Mar 01 2025, 10:00:00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Defaults([3]uint32{})
			tt.rec(r)
			if got := r.VersionString(); got != tt.want {
				t.Errorf("VersionString() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIDString(t *testing.T) {
	r := Defaults([3]uint32{0xA, 0xB, 0xC})
	if got := r.IDString(); got != "0000000A0000000B0000000C" {
		t.Errorf("IDString() = %q", got)
	}
}
