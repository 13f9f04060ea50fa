package flash

import "encoding/binary"

// Stack pointer check for the application's vector table: the initial stack
// pointer must point into SRAM.
const (
	StackPointerMask uint32 = 0x2FFE0000
	RAMBase          uint32 = 0x20000000
)

// Vector is the first two words of an application image.
type Vector struct {
	StackPointer uint32
	ResetHandler uint32
}

// ReadVector reads the vector table at addr.
func ReadVector(dev Device, addr uint32) (Vector, error) {
	var raw [8]byte
	if err := dev.Read(addr, raw[:]); err != nil {
		return Vector{}, err
	}
	return ParseVector(raw[:]), nil
}

// ParseVector decodes the first eight bytes of an image. data must hold at
// least eight bytes.
func ParseVector(data []byte) Vector {
	return Vector{
		StackPointer: binary.LittleEndian.Uint32(data[0:4]),
		ResetHandler: binary.LittleEndian.Uint32(data[4:8]),
	}
}

// Valid reports whether the stack pointer points into SRAM. An erased
// application area reads 0xFFFFFFFF and is never valid.
func (v Vector) Valid() bool {
	return v.StackPointer&StackPointerMask == RAMBase
}
