package image

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/marcinbor85/gohex"
	"github.com/moffa90/go-gaugeboot/flash"
	"github.com/moffa90/go-gaugeboot/xmodem"
)

func hexOf(t *testing.T, segments map[uint32][]byte) string {
	t.Helper()
	mem := gohex.NewMemory()
	for addr, data := range segments {
		if err := mem.AddBinary(addr, data); err != nil {
			t.Fatalf("AddBinary() error = %v", err)
		}
	}
	var buf bytes.Buffer
	if err := mem.DumpIntelHex(&buf, 16); err != nil {
		t.Fatalf("DumpIntelHex() error = %v", err)
	}
	return buf.String()
}

func TestParse(t *testing.T) {
	vector := []byte{0x00, 0x80, 0x00, 0x20, 0xC1, 0x01, 0x01, 0x08}

	tests := []struct {
		name    string
		input   func(t *testing.T) string
		format  Format
		want    []byte
		wantErr bool
		errMsg  string
	}{
		{
			name:   "binary",
			input:  func(t *testing.T) string { return string(vector) },
			format: FormatBinary,
			want:   vector,
		},
		{
			name: "hex at application base",
			input: func(t *testing.T) string {
				return hexOf(t, map[uint32][]byte{flash.AppAddress: vector})
			},
			format: FormatHex,
			want:   vector,
		},
		{
			name: "hex gap filled with erased bytes",
			input: func(t *testing.T) string {
				return hexOf(t, map[uint32][]byte{
					flash.AppAddress:      vector,
					flash.AppAddress + 12: {0xAA},
				})
			},
			format: FormatHex,
			want:   append(append([]byte(nil), vector...), 0xFF, 0xFF, 0xFF, 0xFF, 0xAA),
		},
		{
			name: "hex below application base",
			input: func(t *testing.T) string {
				return hexOf(t, map[uint32][]byte{flash.BaseAddress: vector})
			},
			format:  FormatHex,
			wantErr: true,
			errMsg:  "outside the application region",
		},
		{
			name:    "malformed hex",
			input:   func(t *testing.T) string { return ":zz\n" },
			format:  FormatHex,
			wantErr: true,
			errMsg:  "failed to parse intel hex",
		},
		{
			name:    "empty binary",
			input:   func(t *testing.T) string { return "" },
			format:  FormatBinary,
			wantErr: true,
			errMsg:  "image is empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := Parse(strings.NewReader(tt.input(t)), tt.format, flash.DefaultLayout())

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("error = %q, want to contain %q", err, tt.errMsg)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if !bytes.Equal(img.Data, tt.want) {
				t.Errorf("Data = % X, want % X", img.Data, tt.want)
			}
			if img.Base != flash.AppAddress {
				t.Errorf("Base = 0x%08X", img.Base)
			}
			if img.Format != tt.format {
				t.Errorf("Format = %v, want %v", img.Format, tt.format)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	data := bytes.Repeat([]byte{0x5A}, 100)

	binPath := filepath.Join(dir, "app.bin")
	if err := os.WriteFile(binPath, data, 0o644); err != nil {
		t.Fatal(err)
	}
	hexPath := filepath.Join(dir, "app.hex")
	if err := os.WriteFile(hexPath, []byte(hexOf(t, map[uint32][]byte{flash.AppAddress: data})), 0o644); err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{binPath, hexPath} {
		img, err := Load(path, flash.DefaultLayout())
		if err != nil {
			t.Fatalf("Load(%s) error = %v", path, err)
		}
		if !bytes.Equal(img.Data, data) {
			t.Errorf("Load(%s) data differs", path)
		}
	}

	if _, err := Load(filepath.Join(dir, "missing.bin"), flash.DefaultLayout()); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := map[string]Format{
		"a.hex":  FormatHex,
		"A.HEX":  FormatHex,
		"a.ihex": FormatHex,
		"a.bin":  FormatBinary,
		"a":      FormatBinary,
	}
	for path, want := range tests {
		if got := FormatFromPath(path); got != want {
			t.Errorf("FormatFromPath(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestImageGeometry(t *testing.T) {
	img := &Image{Base: flash.AppAddress, Data: make([]byte, 2*xmodem.BlockSize+1)}

	blocks := img.Blocks()
	if len(blocks) != 3 || len(blocks[2]) != 1 {
		t.Errorf("Blocks() = %d blocks", len(blocks))
	}
	if got, want := img.End(), flash.AppAddress+2*flash.PairSize; got != want {
		t.Errorf("End() = 0x%08X, want 0x%08X", got, want)
	}
}

func TestImageVector(t *testing.T) {
	img := &Image{Data: []byte{0x00, 0x80, 0x00, 0x20, 0xC1, 0x01, 0x01, 0x08, 0x00}}
	v := img.Vector()
	if v.StackPointer != 0x20008000 || v.ResetHandler != 0x080101C1 || !v.Valid() {
		t.Errorf("Vector() = %+v", v)
	}

	short := &Image{Data: []byte{1, 2, 3}}
	if short.Vector().Valid() {
		t.Error("short image has a valid vector")
	}
}
