package config

import (
	"bytes"
	"encoding/binary"

	"github.com/moffa90/go-gaugeboot/flash"
)

// Identity supplies the device's factory unique identifier.
type Identity interface {
	UniqueID() [3]uint32
}

// StaticIdentity is a fixed identifier.
type StaticIdentity [3]uint32

// UniqueID returns the identifier.
func (s StaticIdentity) UniqueID() [3]uint32 { return s }

// Store reads and writes the configuration record kept in one flash page.
type Store struct {
	dev    flash.Device
	addr   uint32
	id     Identity
	config Config

	verify [RecordSize]byte
}

// NewStore creates a store for the record at addr.
//
// Example:
//
//	store := config.NewStore(mem, flash.ConfigAddress, config.StaticIdentity{1, 2, 3})
//	rec, err := store.Read()
func NewStore(dev flash.Device, addr uint32, id Identity, opts ...Option) *Store {
	if dev == nil || id == nil {
		panic("device and identity cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Store{
		dev:    dev,
		addr:   addr,
		id:     id,
		config: cfg,
	}
}

// Address returns the record's flash address.
func (s *Store) Address() uint32 { return s.addr }

// Read returns the stored record. On first boot the page is still erased:
// the record is populated with the device identity and defaults, persisted,
// and returned.
func (s *Store) Read() (*Record, error) {
	var raw [RecordSize]byte
	if err := s.dev.Read(s.addr, raw[:]); err != nil {
		return nil, &flash.StorageError{Op: "read", Addr: s.addr, Err: err}
	}
	r, err := Decode(raw[:])
	if err != nil {
		return nil, err
	}
	if r.Initialized() {
		return r, nil
	}

	r = Defaults(s.id.UniqueID())
	s.logInfo("initializing configuration", "id", r.IDString())
	if err := s.Write(r); err != nil {
		return nil, err
	}
	return r, nil
}

// Write validates r, erases the record page and programs r into it,
// verifying the result.
func (s *Store) Write(r *Record) error {
	if err := r.Validate(); err != nil {
		return err
	}
	return s.program(r)
}

// MarkBoot sets the boot marker in r and stores it. The coefficients are
// not range-checked: the record is whatever the application left behind,
// and the marker is written regardless.
func (s *Store) MarkBoot(r *Record) error {
	r.SetBootMarker()
	return s.program(r)
}

// program erases the record page, programs r and verifies the read-back.
func (s *Store) program(r *Record) error {
	data := r.Encode()

	layout := s.dev.Layout()
	for p := layout.PageStart(s.addr); p < s.addr+RecordSize; p += layout.PageSize {
		if err := s.dev.ErasePage(p); err != nil {
			s.logError("config erase failed", "addr", p, "error", err)
			return &flash.StorageError{Op: "erase", Addr: p, Err: err}
		}
	}

	for off := 0; off < RecordSize; off += flash.DoubleWord {
		v := binary.LittleEndian.Uint64(data[off : off+flash.DoubleWord])
		if err := s.dev.ProgramDoubleWord(s.addr+uint32(off), v); err != nil {
			s.logError("config program failed", "offset", off, "error", err)
			return &flash.StorageError{Op: "program", Addr: s.addr + uint32(off), Err: err}
		}
	}

	if err := s.dev.Read(s.addr, s.verify[:]); err != nil {
		return &flash.StorageError{Op: "read", Addr: s.addr, Err: err}
	}
	if !bytes.Equal(s.verify[:], data) {
		s.logError("config verify failed")
		return &flash.StorageError{Op: "verify", Addr: s.addr, Err: errVerify}
	}

	s.logDebug("configuration written")
	return nil
}

// logDebug logs a debug message if a logger is configured.
func (s *Store) logDebug(msg string, keysAndValues ...interface{}) {
	if s.config.Logger != nil {
		s.config.Logger.Debug(msg, keysAndValues...)
	}
}

// logInfo logs an info message if a logger is configured.
func (s *Store) logInfo(msg string, keysAndValues ...interface{}) {
	if s.config.Logger != nil {
		s.config.Logger.Info(msg, keysAndValues...)
	}
}

// logError logs an error message if a logger is configured.
func (s *Store) logError(msg string, keysAndValues ...interface{}) {
	if s.config.Logger != nil {
		s.config.Logger.Error(msg, keysAndValues...)
	}
}
