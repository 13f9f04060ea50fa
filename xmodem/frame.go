package xmodem

import (
	"encoding/binary"
	"fmt"
)

// EncodeBlock constructs a block frame ready to send. Payloads shorter than
// BlockSize are padded with PadByte.
//
// Frame structure:
//
//	[STX][NUM][~NUM][DATA(1024)][CRC_H][CRC_L]
func EncodeBlock(num uint8, payload []byte) ([]byte, error) {
	if len(payload) > BlockSize {
		return nil, fmt.Errorf("payload length %d exceeds block size %d", len(payload), BlockSize)
	}

	frame := make([]byte, FrameSize)
	frame[0] = STX
	frame[1] = num
	frame[2] = ^num

	data := frame[3 : 3+BlockSize]
	n := copy(data, payload)
	for i := n; i < BlockSize; i++ {
		data[i] = PadByte
	}

	binary.BigEndian.PutUint16(frame[3+BlockSize:], CRC16(data))
	return frame, nil
}

// SplitBlocks cuts data into BlockSize payloads. The last payload may be
// short; EncodeBlock pads it.
func SplitBlocks(data []byte) [][]byte {
	blocks := make([][]byte, 0, (len(data)+BlockSize-1)/BlockSize)
	for len(data) > BlockSize {
		blocks = append(blocks, data[:BlockSize])
		data = data[BlockSize:]
	}
	if len(data) > 0 {
		blocks = append(blocks, data)
	}
	return blocks
}
