// Package uploader sends application images to the gauge bootloader.
//
// # Overview
//
// This package orchestrates a complete firmware upload:
//   - Validating the image against the memory map and its vector table
//   - Opening the bootloader menu and selecting the update with a trigger
//   - Sending the image as XMODEM-1K blocks with retransmission
//   - Ending the transfer
//
// # Basic Usage
//
//	port, err := serial.OpenPort(&serial.Config{Name: "/dev/ttyUSB0", Baud: 115200})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	img, err := image.Load("gauge.hex", flash.DefaultLayout())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	up := uploader.New(port)
//	if err := up.Upload(context.Background(), img); err != nil {
//	    log.Fatal(err)
//	}
//
// # Progress Tracking
//
//	up := uploader.New(port,
//	    uploader.WithProgressCallback(func(p uploader.Progress) {
//	        fmt.Printf("[%s] %.1f%%\n", p.Phase, p.Percentage)
//	    }),
//	)
//
// # Error Handling
//
// The package provides structured error types:
//   - ImageTooLargeError: the image overlaps the configuration page
//   - InvalidVectorError: the image would never be started
//   - TriggerError: the device did not announce the transfer
//   - xmodem.NakError: a block was rejected too many times
//
// Cancellation by the device is reported as xmodem.ErrCanceled.
package uploader
