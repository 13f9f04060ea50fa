package flash

import (
	"encoding/binary"
	"fmt"

	"github.com/moffa90/go-gaugeboot/xmodem"
)

// PairSize is the amount of data committed at once: two transfer blocks.
const PairSize = 2 * xmodem.BlockSize

// PageWriter accumulates received blocks in pairs and commits each pair to
// flash with erase, program and read-back verification. It implements
// xmodem.BlockHandler.
type PageWriter struct {
	dev    Device
	start  uint32
	limit  uint32
	cursor uint32
	config Config

	pair   [2][xmodem.BlockSize]byte
	crcs   [2]uint16
	slot   int
	verify [PairSize]byte
}

// NewPageWriter creates a writer storing blocks from start up to, but not
// including, limit. start must be page aligned.
//
// Example:
//
//	w := flash.NewPageWriter(dev, flash.AppAddress, flash.ConfigAddress)
//	_, err := rx.Receive(ctx, w)
//	if err == nil {
//	    err = w.Flush()
//	}
func NewPageWriter(dev Device, start, limit uint32, opts ...Option) *PageWriter {
	if dev == nil {
		panic("device cannot be nil")
	}
	layout := dev.Layout()
	if (start-layout.Base)%layout.PageSize != 0 {
		panic(fmt.Sprintf("start 0x%08X is not page aligned", start))
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &PageWriter{
		dev:    dev,
		start:  start,
		limit:  limit,
		cursor: start,
		config: cfg,
	}
}

// Cursor returns the address the next pair will be written to.
func (w *PageWriter) Cursor() uint32 { return w.cursor }

// Pending reports whether a block is waiting for its pair.
func (w *PageWriter) Pending() bool { return w.slot == 1 }

// Written returns the number of bytes committed so far.
func (w *PageWriter) Written() uint32 { return w.cursor - w.start }

// HandleBlock stores one validated block. Every second block triggers a
// commit; a failed commit discards the pair and leaves the cursor where it
// was.
func (w *PageWriter) HandleBlock(data []byte, num uint8, crc uint16) error {
	if len(data) != xmodem.BlockSize {
		return fmt.Errorf("block %d has %d bytes, want %d", num, len(data), xmodem.BlockSize)
	}
	copy(w.pair[w.slot][:], data)
	w.crcs[w.slot] = crc
	w.slot++
	if w.slot < 2 {
		return nil
	}
	return w.commit()
}

// Flush commits a lone pending block, padding the second half with erased
// bytes. It does nothing when no block is pending.
func (w *PageWriter) Flush() error {
	if w.slot == 0 {
		return nil
	}
	for i := range w.pair[1] {
		w.pair[1][i] = Erased
	}
	w.crcs[1] = xmodem.CRC16Table(w.pair[1][:])
	w.slot = 2
	return w.commit()
}

func (w *PageWriter) commit() error {
	defer func() { w.slot = 0 }()

	addr := w.cursor
	end := addr + PairSize
	if end > w.limit || end < addr {
		w.logError("image exceeds region", "addr", hexAddr(addr), "limit", hexAddr(w.limit))
		return &StorageError{Op: "write", Addr: addr, Err: ErrRegionFull}
	}

	pageSize := w.dev.Layout().PageSize
	for p := w.dev.Layout().PageStart(addr); p < end; p += pageSize {
		if err := w.dev.ErasePage(p); err != nil {
			w.logError("erase failed", "addr", hexAddr(p), "error", err)
			return &StorageError{Op: "erase", Addr: p, Err: err}
		}
	}

	for off := 0; off < PairSize; off += DoubleWord {
		half, i := off/xmodem.BlockSize, off%xmodem.BlockSize
		v := binary.LittleEndian.Uint64(w.pair[half][i : i+DoubleWord])
		if err := w.dev.ProgramDoubleWord(addr+uint32(off), v); err != nil {
			w.logError("program failed", "addr", hexAddr(addr+uint32(off)), "error", err)
			return &StorageError{Op: "program", Addr: addr + uint32(off), Err: err}
		}
	}

	if err := w.dev.Read(addr, w.verify[:]); err != nil {
		return &StorageError{Op: "read", Addr: addr, Err: err}
	}
	for half := 0; half < 2; half++ {
		got := xmodem.CRC16Table(w.verify[half*xmodem.BlockSize : (half+1)*xmodem.BlockSize])
		if got != w.crcs[half] {
			a := addr + uint32(half*xmodem.BlockSize)
			w.logError("verify failed",
				"addr", hexAddr(a),
				"crc", fmt.Sprintf("0x%04X", got),
				"expected", fmt.Sprintf("0x%04X", w.crcs[half]),
			)
			return &StorageError{
				Op:   "verify",
				Addr: a,
				Err:  fmt.Errorf("crc 0x%04X, expected 0x%04X", got, w.crcs[half]),
			}
		}
	}

	w.cursor = end
	w.logDebug("pair committed", "addr", hexAddr(addr))
	return nil
}

func hexAddr(addr uint32) string {
	return fmt.Sprintf("0x%08X", addr)
}

// logDebug logs a debug message if a logger is configured.
func (w *PageWriter) logDebug(msg string, keysAndValues ...interface{}) {
	if w.config.Logger != nil {
		w.config.Logger.Debug(msg, keysAndValues...)
	}
}

// logError logs an error message if a logger is configured.
func (w *PageWriter) logError(msg string, keysAndValues ...interface{}) {
	if w.config.Logger != nil {
		w.config.Logger.Error(msg, keysAndValues...)
	}
}
