// Package settings loads the gaugeboot command's YAML settings file.
package settings

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Serial describes a serial link.
type Serial struct {
	Port string `yaml:"port"`
	Baud int    `yaml:"baud"`

	// ReadTimeout makes port reads return empty instead of blocking
	ReadTimeout time.Duration `yaml:"read_timeout"`
}

// Device describes the simulated gauge.
type Device struct {
	// Flash is the simulated flash file
	Flash string `yaml:"flash"`

	// Volts is the attach-detect voltage
	Volts float64 `yaml:"volts"`

	// UniqueID is the MCU identity reported in the menu
	UniqueID [3]uint32 `yaml:"unique_id,flow"`

	AttachThreshold float64       `yaml:"attach_threshold"`
	BootWait        time.Duration `yaml:"boot_wait"`
}

// Upload holds the host uploader settings.
type Upload struct {
	Trigger     string        `yaml:"trigger"`
	ReadyMarker string        `yaml:"ready_marker"`
	Timeout     time.Duration `yaml:"timeout"`
	Retries     int           `yaml:"retries"`
}

// Settings is the root of the settings file.
type Settings struct {
	Serial Serial `yaml:"serial"`
	Device Device `yaml:"device"`
	Upload Upload `yaml:"upload"`
}

// Default returns the settings used when no file is given.
func Default() Settings {
	return Settings{
		Serial: Serial{
			Port:        "/dev/ttyUSB0",
			Baud:        115200,
			ReadTimeout: 100 * time.Millisecond,
		},
		Device: Device{
			Flash:           "gauge-flash.bin",
			Volts:           5,
			UniqueID:        [3]uint32{0x00470021, 0x4E4B5002, 0x20373535},
			AttachThreshold: 4.5,
			BootWait:        10 * time.Second,
		},
		Upload: Upload{
			Trigger:     " 5",
			ReadyMarker: "Waiting for XMODEM",
			Timeout:     10 * time.Second,
			Retries:     10,
		},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
// Unknown keys are rejected.
func Load(path string) (Settings, error) {
	s := Default()
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("failed to read settings: %w", err)
	}
	if err := Decode(data, &s); err != nil {
		return s, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Decode parses YAML settings into s, keeping the fields the document does
// not mention.
func Decode(data []byte, s *Settings) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(s); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	return s.Validate()
}

// Validate checks the values that cannot be defaulted.
func (s Settings) Validate() error {
	if s.Serial.Baud <= 0 {
		return fmt.Errorf("serial.baud must be positive, got %d", s.Serial.Baud)
	}
	if s.Upload.Retries <= 0 {
		return fmt.Errorf("upload.retries must be positive, got %d", s.Upload.Retries)
	}
	if s.Device.Volts < 0 {
		return fmt.Errorf("device.volts cannot be negative, got %g", s.Device.Volts)
	}
	return nil
}

// Marshal renders s as YAML.
func (s Settings) Marshal() ([]byte, error) {
	return yaml.Marshal(s)
}
