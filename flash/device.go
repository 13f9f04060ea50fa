package flash

import "github.com/pkg/errors"

// Device is the erase/program/read primitive over a linear address space.
// Implementations need not be safe for concurrent use; flash is only touched
// from the foreground loop.
type Device interface {
	// Layout returns the device's memory map.
	Layout() Layout

	// ErasePage sets every byte of the page containing addr to Erased.
	ErasePage(addr uint32) error

	// ProgramDoubleWord writes v little-endian at addr, which must be
	// DoubleWord aligned and erased.
	ProgramDoubleWord(addr uint32, v uint64) error

	// Read copies len(buf) bytes starting at addr.
	Read(addr uint32, buf []byte) error
}

var (
	// ErrOutOfRange is returned for accesses outside the flash array.
	ErrOutOfRange = errors.New("address out of range")

	// ErrAlignment is returned when programming an unaligned address.
	ErrAlignment = errors.New("address not double-word aligned")

	// ErrNotErased is returned when programming over data that was not erased.
	ErrNotErased = errors.New("target not erased")

	// ErrRegionFull is returned when a write would run past the end of the
	// writable region.
	ErrRegionFull = errors.New("write exceeds region")
)
