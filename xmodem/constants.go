package xmodem

import "time"

// Control bytes of the XMODEM-1K protocol.
const (
	// STX starts a 1024-byte block
	STX = 0x02

	// EOT ends the transfer
	EOT = 0x04

	// ACK acknowledges a block or EOT
	ACK = 0x06

	// NAK rejects a block; the sender retransmits it
	NAK = 0x15

	// CAN cancels the transfer when received twice in a row
	CAN = 0x18

	// CRCRequest is sent by the receiver to request CRC-16 mode
	CRCRequest = 'C'
)

// Frame structure constants.
const (
	// BlockSize is the payload size of a block
	BlockSize = 1024

	// CRCSize is the size of the trailing CRC (MSB first)
	CRCSize = 2

	// BlockHeaderSize covers the block number and its one's complement
	BlockHeaderSize = 2

	// BlockBodySize is what follows STX: number, complement, payload, CRC
	BlockBodySize = BlockHeaderSize + BlockSize + CRCSize

	// FrameSize is a complete block frame including STX
	FrameSize = 1 + BlockBodySize
)

// Timing and retry defaults.
const (
	// DefaultHeaderTimeout bounds the wait for a header byte and for the
	// rest of a block after STX
	DefaultHeaderTimeout = 1000 * time.Millisecond

	// DefaultByteTimeout bounds the wait for the second CAN
	DefaultByteTimeout = 1000 * time.Millisecond

	// DefaultMaxRetries is the number of consecutive header timeouts after
	// which the receiver aborts
	DefaultMaxRetries = 50

	// FirstBlock is the number of the first block of a transfer
	FirstBlock = 1
)

// PadByte fills the unused tail of the last block. 0xFF matches erased flash,
// so padding costs no programming.
const PadByte = 0xFF
