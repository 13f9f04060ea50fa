package flash

import (
	"bytes"
	"io"
	"os"

	"github.com/marcinbor85/gohex"
	"github.com/pkg/errors"
)

// hexLineLength is the number of data bytes per Intel HEX record.
const hexLineLength = 16

// Open loads a flash image saved with Save. A missing file yields an erased
// array, so a simulator can start from a blank part.
func Open(path string, layout Layout) (*Memory, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return NewMemory(layout), nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "read flash image")
	}
	if uint32(len(data)) != layout.Size {
		return nil, errors.Errorf("flash image %s is %d bytes, want %d", path, len(data), layout.Size)
	}
	m := NewMemory(layout)
	copy(m.data, data)
	return m, nil
}

// Save writes the raw array to path.
func (m *Memory) Save(path string) error {
	return errors.Wrap(os.WriteFile(path, m.data, 0o644), "write flash image")
}

// WriteIntelHex dumps every page that is not fully erased as Intel HEX.
func (m *Memory) WriteIntelHex(w io.Writer) error {
	mem := gohex.NewMemory()
	blank := bytes.Repeat([]byte{Erased}, int(m.layout.PageSize))

	for off := uint32(0); off < m.layout.Size; off += m.layout.PageSize {
		page := m.data[off : off+m.layout.PageSize]
		if bytes.Equal(page, blank) {
			continue
		}
		if err := mem.AddBinary(m.layout.Base+off, page); err != nil {
			return errors.Wrapf(err, "add page 0x%08X", m.layout.Base+off)
		}
	}
	return errors.Wrap(mem.DumpIntelHex(w, hexLineLength), "dump intel hex")
}

// LoadIntelHex stores the data segments of an Intel HEX stream directly into
// the array, the way an external programmer would.
func (m *Memory) LoadIntelHex(r io.Reader) error {
	mem := gohex.NewMemory()
	if err := mem.ParseIntelHex(r); err != nil {
		return errors.Wrap(err, "parse intel hex")
	}
	for _, seg := range mem.GetDataSegments() {
		if !m.layout.Contains(seg.Address, len(seg.Data)) {
			return errors.Wrapf(ErrOutOfRange, "segment 0x%08X+%d", seg.Address, len(seg.Data))
		}
		copy(m.data[seg.Address-m.layout.Base:], seg.Data)
	}
	return nil
}
