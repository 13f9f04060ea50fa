package main

import (
	"io"

	"github.com/mattn/go-tty"
	"github.com/tarm/serial"

	"github.com/moffa90/go-gaugeboot/internal/settings"
)

// openSerial opens the configured serial port. Reads time out after
// ReadTimeout and return no data.
func openSerial(s settings.Serial) (*serial.Port, error) {
	return serial.OpenPort(&serial.Config{
		Name:        s.Port,
		Baud:        s.Baud,
		ReadTimeout: s.ReadTimeout,
	})
}

// terminal is the local terminal in raw mode used as the device link.
type terminal struct {
	t       *tty.TTY
	restore func() error
}

func openTerminal() (*terminal, error) {
	t, err := tty.Open()
	if err != nil {
		return nil, err
	}
	restore, err := t.Raw()
	if err != nil {
		_ = t.Close()
		return nil, err
	}
	return &terminal{t: t, restore: restore}, nil
}

func (t *terminal) Read(p []byte) (int, error)  { return t.t.Input().Read(p) }
func (t *terminal) Write(p []byte) (int, error) { return t.t.Output().Write(p) }

func (t *terminal) Close() error {
	_ = t.restore()
	return t.t.Close()
}

var _ io.ReadWriteCloser = (*terminal)(nil)
