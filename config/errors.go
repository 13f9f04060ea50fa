package config

import (
	"errors"
	"fmt"
)

var errVerify = errors.New("read-back differs from record")

// RangeError reports a coefficient outside its open interval (0, Max).
type RangeError struct {
	Field string
	Value float32
	Max   float32
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s %g out of range: must be > 0 and < %g", e.Field, e.Value, e.Max)
}
