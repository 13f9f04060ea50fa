package uploader

import (
	"errors"
	"strings"
	"testing"

	"github.com/moffa90/go-gaugeboot/xmodem"
)

func TestImageTooLargeError(t *testing.T) {
	err := &ImageTooLargeError{Size: 70000, Max: 63488}

	errMsg := err.Error()
	if !strings.Contains(errMsg, "too large") {
		t.Errorf("error message should contain 'too large', got: %s", errMsg)
	}
	if !strings.Contains(errMsg, "70000") || !strings.Contains(errMsg, "63488") {
		t.Errorf("error message should contain both sizes, got: %s", errMsg)
	}
}

func TestInvalidVectorError(t *testing.T) {
	err := &InvalidVectorError{StackPointer: 0xFFFFFFFF}

	errMsg := err.Error()
	if !strings.Contains(errMsg, "0xFFFFFFFF") {
		t.Errorf("error message should contain the stack pointer, got: %s", errMsg)
	}
	if !strings.Contains(errMsg, "SRAM") {
		t.Errorf("error message should mention SRAM, got: %s", errMsg)
	}
}

func TestTriggerError(t *testing.T) {
	err := &TriggerError{Marker: "Waiting", Err: xmodem.ErrTimeout}

	if !strings.Contains(err.Error(), `"Waiting"`) {
		t.Errorf("error message should quote the marker, got: %s", err.Error())
	}
	if !errors.Is(err, xmodem.ErrTimeout) {
		t.Error("TriggerError should unwrap to its cause")
	}
}
