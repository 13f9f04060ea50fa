package xmodem

// CRC-16/CCITT parameters used by XMODEM (a.k.a. CRC-16/XMODEM).
const (
	// CRC16Polynomial is the CRC-16-CCITT polynomial (0x1021)
	CRC16Polynomial = 0x1021

	// CRC16InitialValue is the register value before the first byte
	CRC16InitialValue = 0x0000

	// CRC16HighBitMask is the high bit mask for CRC-16 calculations
	CRC16HighBitMask = 0x8000

	// BitsPerByte is the number of bits per byte
	BitsPerByte = 8
)

var crc16Table = makeCRC16Table()

func makeCRC16Table() (t [256]uint16) {
	for i := range t {
		crc := uint16(i) << BitsPerByte
		for j := 0; j < BitsPerByte; j++ {
			if crc&CRC16HighBitMask != 0 {
				crc = (crc << 1) ^ CRC16Polynomial
			} else {
				crc <<= 1
			}
		}
		t[i] = crc
	}
	return t
}

// CRC16 computes the CRC-16-CCITT of data bit by bit. This is the routine the
// receiver uses on incoming blocks.
//
// Parameters:
//   - Polynomial: CRC16Polynomial
//   - Initial value: CRC16InitialValue
//   - No final XOR
func CRC16(data []byte) uint16 {
	var crc uint16 = CRC16InitialValue

	for _, b := range data {
		crc ^= uint16(b) << BitsPerByte
		for i := 0; i < BitsPerByte; i++ {
			if crc&CRC16HighBitMask != 0 {
				crc = (crc << 1) ^ CRC16Polynomial
			} else {
				crc <<= 1
			}
		}
	}

	return crc
}

// CRC16Table computes the same checksum as CRC16 with a 256-entry lookup
// table. The flash verify path uses it so that a fault in one routine cannot
// mask a fault in the other.
func CRC16Table(data []byte) uint16 {
	var crc uint16 = CRC16InitialValue
	for _, b := range data {
		crc = (crc << BitsPerByte) ^ crc16Table[byte(crc>>BitsPerByte)^b]
	}
	return crc
}
