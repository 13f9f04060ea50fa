package settings

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadEmptyPath(t *testing.T) {
	s, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s != Default() {
		t.Errorf("Load(\"\") = %+v, want defaults", s)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gaugeboot.yaml")
	doc := `
serial:
  port: /dev/ttyACM1
  read_timeout: 250ms
device:
  volts: 3.3
  unique_id: [1, 2, 3]
upload:
  trigger: ""
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if s.Serial.Port != "/dev/ttyACM1" {
		t.Errorf("Serial.Port = %q", s.Serial.Port)
	}
	if s.Serial.ReadTimeout != 250*time.Millisecond {
		t.Errorf("Serial.ReadTimeout = %v", s.Serial.ReadTimeout)
	}
	if s.Serial.Baud != 115200 {
		t.Errorf("Serial.Baud = %d, want the default", s.Serial.Baud)
	}
	if s.Device.Volts != 3.3 {
		t.Errorf("Device.Volts = %g", s.Device.Volts)
	}
	if s.Device.UniqueID != [3]uint32{1, 2, 3} {
		t.Errorf("Device.UniqueID = %v", s.Device.UniqueID)
	}
	if s.Upload.Trigger != "" {
		t.Errorf("Upload.Trigger = %q, want empty", s.Upload.Trigger)
	}
	if s.Upload.ReadyMarker != Default().Upload.ReadyMarker {
		t.Errorf("Upload.ReadyMarker = %q, want the default", s.Upload.ReadyMarker)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{name: "unknown key", doc: "serial:\n  speed: 9600\n", wantErr: "speed"},
		{name: "bad duration", doc: "upload:\n  timeout: soon\n", wantErr: "invalid settings"},
		{name: "zero baud", doc: "serial:\n  baud: 0\n", wantErr: "serial.baud"},
		{name: "zero retries", doc: "upload:\n  retries: 0\n", wantErr: "upload.retries"},
		{name: "negative volts", doc: "device:\n  volts: -1\n", wantErr: "device.volts"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Default()
			err := Decode([]byte(tt.doc), &s)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Decode() error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load() of a missing file should fail")
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	want := Default()
	want.Device.Volts = 1.25

	data, err := want.Marshal()
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	got := Default()
	if err := Decode(data, &got); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got != want {
		t.Errorf("round trip = %+v, want %+v", got, want)
	}
}
