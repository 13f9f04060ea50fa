package uploader

import "fmt"

// ImageTooLargeError indicates that the image does not fit in the
// application region.
type ImageTooLargeError struct {
	Size int
	Max  uint32
}

func (e *ImageTooLargeError) Error() string {
	return fmt.Sprintf("image too large: %d bytes, application region holds %d", e.Size, e.Max)
}

// InvalidVectorError indicates that the image's initial stack pointer does
// not point into SRAM, so the bootloader would never start it.
type InvalidVectorError struct {
	StackPointer uint32
}

func (e *InvalidVectorError) Error() string {
	return fmt.Sprintf("invalid vector table: stack pointer 0x%08X is not in SRAM", e.StackPointer)
}

// TriggerError indicates that the device never announced the transfer after
// the trigger was sent.
type TriggerError struct {
	Marker string
	Err    error
}

func (e *TriggerError) Error() string {
	return fmt.Sprintf("device did not announce %q: %v", e.Marker, e.Err)
}

func (e *TriggerError) Unwrap() error {
	return e.Err
}
