// Package image loads application images for upload to the gauge.
//
// # Formats
//
// Two formats are accepted:
//
//   - Raw binary (.bin): the bytes to place at the application base,
//     starting with the vector table
//   - Intel HEX (.hex, .ihex): data records addressed in the flash space;
//     every record must fall inside the application region, gaps are
//     filled with erased bytes (0xFF)
//
// # Usage
//
// Load an image from disk:
//
//	img, err := image.Load("gauge.hex", flash.DefaultLayout())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("%d bytes, %d blocks, entry 0x%08X\n",
//	    img.Size(), len(img.Blocks()), img.Vector().ResetHandler)
//
// Parse from an io.Reader:
//
//	img, err := image.Parse(r, image.FormatHex, flash.DefaultLayout())
package image
