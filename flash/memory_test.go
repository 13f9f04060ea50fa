package flash

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func TestMemoryStartsErased(t *testing.T) {
	m := NewMemory(DefaultLayout())
	buf := make([]byte, 64)
	if err := m.Read(AppAddress, buf); err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if !bytes.Equal(buf, bytes.Repeat([]byte{Erased}, 64)) {
		t.Errorf("fresh memory not erased: % X", buf[:8])
	}
}

func TestMemoryProgramRules(t *testing.T) {
	tests := []struct {
		name    string
		addr    uint32
		prepare func(m *Memory)
		wantErr error
	}{
		{name: "aligned erased", addr: AppAddress},
		{name: "unaligned", addr: AppAddress + 4, wantErr: ErrAlignment},
		{name: "below array", addr: BaseAddress - 8, wantErr: ErrOutOfRange},
		{name: "past array", addr: BaseAddress + Size, wantErr: ErrOutOfRange},
		{
			name: "not erased",
			addr: AppAddress,
			prepare: func(m *Memory) {
				_ = m.ProgramDoubleWord(AppAddress, 0)
			},
			wantErr: ErrNotErased,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMemory(DefaultLayout())
			if tt.prepare != nil {
				tt.prepare(m)
			}
			err := m.ProgramDoubleWord(tt.addr, 0x0807060504030201)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("ProgramDoubleWord() error = %v", err)
				}
				buf := make([]byte, 8)
				_ = m.Read(tt.addr, buf)
				if want := []byte{1, 2, 3, 4, 5, 6, 7, 8}; !bytes.Equal(buf, want) {
					t.Errorf("stored % X, want little-endian % X", buf, want)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ProgramDoubleWord() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestMemoryEraseWholePage(t *testing.T) {
	m := NewMemory(DefaultLayout())
	for addr := AppAddress; addr < AppAddress+2*PageSize; addr += DoubleWord {
		if err := m.ProgramDoubleWord(addr, 0); err != nil {
			t.Fatalf("ProgramDoubleWord(0x%08X) error = %v", addr, err)
		}
	}

	// Any address inside the page selects it.
	if err := m.ErasePage(AppAddress + 0x123); err != nil {
		t.Fatalf("ErasePage() error = %v", err)
	}

	page := make([]byte, 2*PageSize)
	_ = m.Read(AppAddress, page)
	if !bytes.Equal(page[:PageSize], bytes.Repeat([]byte{Erased}, int(PageSize))) {
		t.Error("first page not erased")
	}
	if page[PageSize] != 0 {
		t.Error("second page was erased too")
	}
	if m.Erases() != 1 {
		t.Errorf("Erases() = %d, want 1", m.Erases())
	}
}

func TestMemoryReadBounds(t *testing.T) {
	m := NewMemory(DefaultLayout())
	err := m.Read(ConfigAddress, make([]byte, PageSize+1))
	if !errors.Is(err, ErrOutOfRange) {
		t.Errorf("Read() error = %v, want ErrOutOfRange", err)
	}
	if err := m.Read(ConfigAddress, make([]byte, PageSize)); err != nil {
		t.Errorf("Read() of last page error = %v", err)
	}
}

func TestMemorySaveOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flash.bin")

	m, err := Open(path, DefaultLayout())
	if err != nil {
		t.Fatalf("Open() of missing file error = %v", err)
	}
	_ = m.ProgramDoubleWord(AppAddress, 0x1122334455667788)
	if err := m.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Open(path, DefaultLayout())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if !bytes.Equal(loaded.Bytes(), m.Bytes()) {
		t.Error("reloaded image differs")
	}

	small := DefaultLayout()
	small.Size = PageSize
	if _, err := Open(path, small); err == nil || !strings.Contains(err.Error(), "want") {
		t.Errorf("Open() with wrong layout error = %v", err)
	}
}

func TestMemoryIntelHexRoundTrip(t *testing.T) {
	m := NewMemory(DefaultLayout())
	_ = m.ProgramDoubleWord(AppAddress, 0x2000500008010101)
	_ = m.ProgramDoubleWord(ConfigAddress, 0xDEADBEEF)

	var out bytes.Buffer
	if err := m.WriteIntelHex(&out); err != nil {
		t.Fatalf("WriteIntelHex() error = %v", err)
	}
	if !strings.HasPrefix(out.String(), ":") {
		t.Fatalf("output is not Intel HEX: %q", out.String()[:16])
	}

	loaded := NewMemory(DefaultLayout())
	if err := loaded.LoadIntelHex(&out); err != nil {
		t.Fatalf("LoadIntelHex() error = %v", err)
	}
	if !bytes.Equal(loaded.Bytes(), m.Bytes()) {
		t.Error("hex round trip changed the image")
	}
}

func TestLoadIntelHexOutOfRange(t *testing.T) {
	// One data byte at 0x00000000, far below the flash array.
	const record = ":0100000055AA\n:00000001FF\n"
	err := NewMemory(DefaultLayout()).LoadIntelHex(strings.NewReader(record))
	if !errors.Is(err, ErrOutOfRange) {
		t.Errorf("LoadIntelHex() error = %v, want ErrOutOfRange", err)
	}
}

func TestVector(t *testing.T) {
	tests := []struct {
		name  string
		sp    uint32
		valid bool
	}{
		{name: "top of 64K ram", sp: 0x20010000, valid: true},
		{name: "small ram", sp: 0x20002000, valid: true},
		{name: "erased", sp: 0xFFFFFFFF, valid: false},
		{name: "zero", sp: 0, valid: false},
		{name: "flash address", sp: 0x08010000, valid: false},
		{name: "beyond ram window", sp: 0x20020000, valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMemory(DefaultLayout())
			if err := m.ProgramDoubleWord(AppAddress, uint64(0x080101C1)<<32|uint64(tt.sp)); err != nil {
				t.Fatal(err)
			}
			v, err := ReadVector(m, AppAddress)
			if err != nil {
				t.Fatalf("ReadVector() error = %v", err)
			}
			if v.StackPointer != tt.sp || v.ResetHandler != 0x080101C1 {
				t.Errorf("vector = %+v", v)
			}
			if v.Valid() != tt.valid {
				t.Errorf("Valid() = %v, want %v", v.Valid(), tt.valid)
			}
		})
	}
}
