package image

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/marcinbor85/gohex"
	"github.com/moffa90/go-gaugeboot/flash"
	"github.com/moffa90/go-gaugeboot/xmodem"
)

// Format identifies an image file format.
type Format int

const (
	// FormatBinary is a raw image starting at the application base
	FormatBinary Format = iota

	// FormatHex is Intel HEX
	FormatHex
)

func (f Format) String() string {
	switch f {
	case FormatBinary:
		return "binary"
	case FormatHex:
		return "intel-hex"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// FormatFromPath guesses the format from a file extension. Unknown
// extensions are treated as raw binary.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".hex", ".ihex", ".ihx":
		return FormatHex
	default:
		return FormatBinary
	}
}

// Image is an application image placed at Base.
type Image struct {
	// Base is the flash address of the first byte
	Base uint32

	// Data is the image content
	Data []byte

	// Format is the format the image was read from
	Format Format
}

// Load reads an image file.
//
// Example:
//
//	img, err := image.Load("gauge.bin", flash.DefaultLayout())
func Load(path string, layout flash.Layout) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer func() { _ = f.Close() }()

	return Parse(f, FormatFromPath(path), layout)
}

// Parse reads an image in the given format from r.
func Parse(r io.Reader, format Format, layout flash.Layout) (*Image, error) {
	var (
		data []byte
		err  error
	)
	switch format {
	case FormatBinary:
		data, err = io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("failed to read image: %w", err)
		}
	case FormatHex:
		data, err = parseHex(r, layout)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported format %v", format)
	}

	if len(data) == 0 {
		return nil, fmt.Errorf("image is empty")
	}

	return &Image{Base: layout.AppBase, Data: data, Format: format}, nil
}

// parseHex flattens the data records into one image starting at the
// application base.
func parseHex(r io.Reader, layout flash.Layout) ([]byte, error) {
	mem := gohex.NewMemory()
	if err := mem.ParseIntelHex(r); err != nil {
		return nil, fmt.Errorf("failed to parse intel hex: %w", err)
	}

	var end uint32
	for _, seg := range mem.GetDataSegments() {
		segEnd := seg.Address + uint32(len(seg.Data))
		if seg.Address < layout.AppBase || segEnd > layout.End() {
			return nil, fmt.Errorf("segment 0x%08X-0x%08X is outside the application region 0x%08X-0x%08X",
				seg.Address, segEnd, layout.AppBase, layout.End())
		}
		if segEnd > end {
			end = segEnd
		}
	}
	if end == 0 {
		return nil, nil
	}

	return mem.ToBinary(layout.AppBase, end-layout.AppBase, flash.Erased), nil
}

// Size returns the image size in bytes.
func (img *Image) Size() int { return len(img.Data) }

// Blocks splits the image into transfer payloads. The last one may be short.
func (img *Image) Blocks() [][]byte {
	return xmodem.SplitBlocks(img.Data)
}

// Vector returns the image's vector table. Images shorter than eight bytes
// yield an erased (invalid) vector.
func (img *Image) Vector() flash.Vector {
	if len(img.Data) < 8 {
		return flash.ParseVector(bytes.Repeat([]byte{flash.Erased}, 8))
	}
	return flash.ParseVector(img.Data)
}

// End returns the first address past the image once padded to whole
// block pairs, which is how far the bootloader writes.
func (img *Image) End() uint32 {
	n := uint32(len(img.Data))
	padded := (n + flash.PairSize - 1) / flash.PairSize * flash.PairSize
	return img.Base + padded
}
