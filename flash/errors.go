package flash

import "fmt"

// StorageError reports a failed erase, program or verify step.
type StorageError struct {
	Op   string
	Addr uint32
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("flash %s at 0x%08X: %v", e.Op, e.Addr, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
