package boot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/moffa90/go-gaugeboot/config"
	"github.com/moffa90/go-gaugeboot/flash"
	"github.com/moffa90/go-gaugeboot/xmodem"
)

// Menu keys.
const (
	KeyCoefAnemo  = '1'
	KeyCoefPluvio = '2'
	KeyTempA      = '3'
	KeyTempB      = '4'
	KeyUpdate     = '5'
	KeyLaunch     = '6'
)

const (
	bannerFormat = "\r\nGauge bootloader\r\nID %s  version %s\r\nPress space for the menu\r\n"

	promptFormat  = "Enter new value for %s: "
	updateWaiting = "Waiting for XMODEM-1K transfer...\r\n"
	updateDone    = "Update complete: %d bytes written\r\n"
	updateFailed  = "Update failed: %v\r\n"
	launching     = "Starting application...\r\n"
	noApplication = "No valid application installed\r\n"

	maxLineLength = 32
)

// field is one editable calibration value.
type field struct {
	name string
	get  func(r *config.Record) *float32
}

var fields = map[byte]field{
	KeyCoefAnemo:  {name: "CoefAnemo", get: func(r *config.Record) *float32 { return &r.CoefAnemo }},
	KeyCoefPluvio: {name: "CoefPluvio", get: func(r *config.Record) *float32 { return &r.CoefPluvio }},
	KeyTempA:      {name: "TempA", get: func(r *config.Record) *float32 { return &r.TempA }},
	KeyTempB:      {name: "TempB", get: func(r *config.Record) *float32 { return &r.TempB }},
}

// menu serves keys until the application is launched or ctx is done.
func (l *Loader) menu(ctx context.Context, rec *config.Record) (bool, error) {
	l.showMenu(rec)
	for {
		key, err := l.readKey(ctx)
		if err != nil {
			return false, nil
		}

		switch key {
		case KeyCoefAnemo, KeyCoefPluvio, KeyTempA, KeyTempB:
			if err := l.editField(ctx, rec, fields[key]); err != nil {
				return false, nil
			}

		case KeyUpdate:
			l.update(ctx)

		case KeyLaunch:
			vec, err := flash.ReadVector(l.hw.Flash, l.layout.AppBase)
			if err != nil || !vec.Valid() {
				l.send(noApplication)
				break
			}
			l.send(launching)
			l.jump(rec, vec)
			return true, nil

		default:
			continue
		}
		l.showMenu(rec)
	}
}

func (l *Loader) showMenu(rec *config.Record) {
	var b strings.Builder
	fmt.Fprintf(&b, "\r\nID %s  version %s\r\n", rec.IDString(), rec.VersionString())
	fmt.Fprintf(&b, "%c. CoefAnemo  (%.4f)\r\n", KeyCoefAnemo, rec.CoefAnemo)
	fmt.Fprintf(&b, "%c. CoefPluvio (%.4f)\r\n", KeyCoefPluvio, rec.CoefPluvio)
	fmt.Fprintf(&b, "%c. TempA      (%.4f)\r\n", KeyTempA, rec.TempA)
	fmt.Fprintf(&b, "%c. TempB      (%.4f)\r\n", KeyTempB, rec.TempB)
	fmt.Fprintf(&b, "%c. Firmware update (XMODEM-1K)\r\n", KeyUpdate)
	fmt.Fprintf(&b, "%c. Start application\r\n", KeyLaunch)
	l.send(b.String())
}

// editField reads a new value and stores it. Out of range values are
// reported and leave the record unchanged.
func (l *Loader) editField(ctx context.Context, rec *config.Record, f field) error {
	l.send(fmt.Sprintf(promptFormat, f.name))
	line, err := l.readLine(ctx)
	if err != nil {
		return err
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(line), 32)
	if err != nil {
		l.send(fmt.Sprintf("Invalid number %q\r\n", line))
		return nil
	}

	candidate := *rec
	*f.get(&candidate) = float32(v)
	if err := l.store.Write(&candidate); err != nil {
		var re *config.RangeError
		if errors.As(err, &re) {
			l.send(fmt.Sprintf("Invalid value: %v\r\n", re))
		} else {
			l.logError("config write failed", "field", f.name, "error", err)
			l.send(fmt.Sprintf("Write failed: %v\r\n", err))
		}
		return nil
	}

	*rec = candidate
	l.logInfo("calibration updated", "field", f.name, "value", v)
	l.send(fmt.Sprintf("%s updated\r\n", f.name))
	return nil
}

// readLine collects an echoed line ended by CR or LF. Leading line endings
// are skipped.
func (l *Loader) readLine(ctx context.Context) (string, error) {
	var line []byte
	for {
		b, err := l.readKey(ctx)
		if err != nil {
			return "", err
		}
		switch {
		case b == '\r' || b == '\n':
			if len(line) == 0 {
				continue
			}
			l.send("\r\n")
			return string(line), nil
		case b == 0x08 || b == 0x7F:
			if len(line) > 0 {
				line = line[:len(line)-1]
				l.send("\b \b")
			}
		case b >= 0x20 && len(line) < maxLineLength:
			line = append(line, b)
			l.send(string(b))
		}
	}
}

// update receives a new application image into the firmware region.
func (l *Loader) update(ctx context.Context) {
	var writerOpts []flash.Option
	rxOpts := append([]xmodem.Option(nil), l.config.TransferOptions...)
	if l.config.Logger != nil {
		writerOpts = append(writerOpts, flash.WithLogger(l.config.Logger))
		rxOpts = append(rxOpts, xmodem.WithLogger(l.config.Logger))
	}

	w := flash.NewPageWriter(l.hw.Flash, l.layout.AppBase, l.layout.ConfigBase, writerOpts...)
	rx := xmodem.NewReceiver(l.hw.Input, l.hw.Link, rxOpts...)

	l.send(updateWaiting)
	summary, err := rx.Receive(ctx, w)
	if err == nil {
		err = w.Flush()
	}
	if err != nil {
		l.logError("firmware update failed", "error", err, "written", w.Written())
		l.send(fmt.Sprintf(updateFailed, err))
		return
	}

	l.logInfo("firmware updated",
		"blocks", summary.Blocks,
		"bytes", w.Written(),
		"duplicates", summary.Duplicates,
		"naks", summary.Naks,
	)
	l.send(fmt.Sprintf(updateDone, w.Written()))
}
