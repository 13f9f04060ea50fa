// Package xmodem implements the XMODEM-1K block transfer used to load
// firmware into the gauge bootloader.
//
// # Protocol Overview
//
// The receiver requests CRC mode by sending 'C'. The sender answers with
// 1024-byte blocks:
//
//	[STX][NUM][~NUM][DATA(1024)][CRC_H][CRC_L]
//
// Where:
//   - STX = 0x02
//   - NUM = block number, starting at 1 and wrapping within a byte
//   - CRC = CRC-16/CCITT (poly 0x1021, init 0) over DATA, MSB first
//
// Each block is answered with ACK (0x06) or NAK (0x15). EOT (0x04) ends the
// transfer and two consecutive CAN (0x18) bytes cancel it.
//
// # Receiver
//
// Receiver consumes bytes from a FIFO filled by the link's receive path and
// hands every validated, in-sequence block to a BlockHandler:
//
//	rx := xmodem.NewReceiver(buf, link)
//	summary, err := rx.Receive(ctx, writer)
//	if xmodem.IsCancel(err) {
//	    // the sender gave up, or nothing arrived for 50 header timeouts
//	}
//
// Only silence is bounded: framing, CRC and sequence errors are answered with
// NAK indefinitely. A BlockHandler error cancels the transfer so that blocks
// which were never stored are not acknowledged.
//
// # Sender
//
// Sender drives the other end over any io.ReadWriter:
//
//	tx := xmodem.NewSender(port)
//	err := tx.Send(ctx, image, func(sent, total int) { ... })
package xmodem
