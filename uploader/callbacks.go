package uploader

import "time"

// Upload phases reported through Progress.
const (
	PhaseValidating   = "validating"
	PhaseEntering     = "entering"
	PhaseTransferring = "transferring"
	PhaseFinishing    = "finishing"
	PhaseComplete     = "complete"
)

// Progress contains information about the upload progress.
// Passed to ProgressCallback during an upload.
type Progress struct {
	// Phase describes the current operation phase:
	//   "validating"   - Checking the image against the memory map
	//   "entering"     - Sending the trigger and waiting for the receiver
	//   "transferring" - Sending blocks
	//   "finishing"    - Ending the transfer
	//   "complete"     - Upload finished successfully
	Phase string

	// CurrentBlock is the number of blocks acknowledged so far
	CurrentBlock int

	// TotalBlocks is the number of blocks in the image
	TotalBlocks int

	// Percentage is the completion percentage (0.0 to 100.0)
	Percentage float64

	// BytesSent is the image payload acknowledged so far
	BytesSent int

	// ElapsedTime is the time elapsed since the upload started
	ElapsedTime time.Duration
}

// ProgressCallback is called during an upload to report progress.
// Implementations should return quickly to avoid stalling the transfer.
//
// Example:
//
//	up := uploader.New(port,
//	    uploader.WithProgressCallback(func(p uploader.Progress) {
//	        fmt.Printf("[%s] %.1f%% - Block %d/%d\n",
//	            p.Phase, p.Percentage, p.CurrentBlock, p.TotalBlocks)
//	    }),
//	)
type ProgressCallback func(Progress)
