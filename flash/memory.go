package flash

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// Memory is an in-memory flash array with the programming rules of the real
// part: pages erase to 0xFF and a double word can only be programmed once
// per erase.
type Memory struct {
	layout Layout
	data   []byte

	erases   int
	programs int
}

// NewMemory returns a fully erased array for layout.
func NewMemory(layout Layout) *Memory {
	data := make([]byte, layout.Size)
	for i := range data {
		data[i] = Erased
	}
	return &Memory{layout: layout, data: data}
}

// Layout returns the memory map.
func (m *Memory) Layout() Layout {
	return m.layout
}

// ErasePage erases the page containing addr.
func (m *Memory) ErasePage(addr uint32) error {
	if !m.layout.Contains(addr, 1) {
		return errors.Wrapf(ErrOutOfRange, "erase 0x%08X", addr)
	}
	start := m.layout.PageStart(addr) - m.layout.Base
	page := m.data[start : start+m.layout.PageSize]
	for i := range page {
		page[i] = Erased
	}
	m.erases++
	return nil
}

// ProgramDoubleWord writes v little-endian at addr.
func (m *Memory) ProgramDoubleWord(addr uint32, v uint64) error {
	if addr%DoubleWord != 0 {
		return errors.Wrapf(ErrAlignment, "program 0x%08X", addr)
	}
	if !m.layout.Contains(addr, DoubleWord) {
		return errors.Wrapf(ErrOutOfRange, "program 0x%08X", addr)
	}
	off := addr - m.layout.Base
	word := m.data[off : off+DoubleWord]
	for _, b := range word {
		if b != Erased {
			return errors.Wrapf(ErrNotErased, "program 0x%08X", addr)
		}
	}
	binary.LittleEndian.PutUint64(word, v)
	m.programs++
	return nil
}

// Read copies len(buf) bytes starting at addr.
func (m *Memory) Read(addr uint32, buf []byte) error {
	if !m.layout.Contains(addr, len(buf)) {
		return errors.Wrapf(ErrOutOfRange, "read 0x%08X+%d", addr, len(buf))
	}
	off := addr - m.layout.Base
	copy(buf, m.data[off:])
	return nil
}

// Erases returns the number of page erases performed.
func (m *Memory) Erases() int { return m.erases }

// Programs returns the number of double words programmed.
func (m *Memory) Programs() int { return m.programs }

// Bytes returns a copy of the whole array.
func (m *Memory) Bytes() []byte {
	return append([]byte(nil), m.data...)
}
