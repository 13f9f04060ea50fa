package uploader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/moffa90/go-gaugeboot/image"
	"github.com/moffa90/go-gaugeboot/xmodem"
)

// Uploader sends application images to a resident bootloader over a serial
// link.
type Uploader struct {
	port   io.ReadWriter
	config Config
}

// deadliner is implemented by ports that support read deadlines, such as
// net.Conn.
type deadliner interface {
	SetReadDeadline(t time.Time) error
}

// New creates a new Uploader talking over port.
//
// Example:
//
//	port, _ := serial.OpenPort(&serial.Config{Name: "/dev/ttyUSB0", Baud: 115200})
//	up := uploader.New(port,
//	    uploader.WithProgressCallback(progressFunc),
//	    uploader.WithLogger(logging.Glog()),
//	)
func New(port io.ReadWriter, opts ...Option) *Uploader {
	if port == nil {
		panic("port cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Uploader{
		port:   port,
		config: cfg,
	}
}

// Validate checks that img fits the application region and, when enabled,
// that its vector table is plausible.
func (u *Uploader) Validate(img *image.Image) error {
	if img == nil {
		return fmt.Errorf("image cannot be nil")
	}
	if limit := u.config.Layout.AppRegionSize(); img.End()-img.Base > limit {
		return &ImageTooLargeError{Size: img.Size(), Max: limit}
	}
	if u.config.CheckVector {
		if v := img.Vector(); !v.Valid() {
			return &InvalidVectorError{StackPointer: v.StackPointer}
		}
	}
	return nil
}

// Upload performs the complete upload sequence:
//  1. Validate the image against the memory map
//  2. Send the trigger and wait for the device to announce the transfer
//  3. Send every block, retransmitting on NAK
//  4. End the transfer with EOT
//
// The operation can be cancelled via context.
//
// Example:
//
//	img, _ := image.Load("gauge.hex", flash.DefaultLayout())
//	err := up.Upload(context.Background(), img)
func (u *Uploader) Upload(ctx context.Context, img *image.Image) error {
	startTime := time.Now()

	u.reportProgress(Progress{Phase: PhaseValidating})
	if err := u.Validate(img); err != nil {
		return err
	}

	blocks := img.Blocks()
	total := len(blocks)

	// Phase 2: enter the update
	u.reportProgress(Progress{
		Phase:       PhaseEntering,
		TotalBlocks: total,
		ElapsedTime: time.Since(startTime),
	})
	if err := u.enter(ctx); err != nil {
		return fmt.Errorf("enter update: %w", err)
	}

	tx := xmodem.NewSender(u.port, u.senderOptions()...)
	if err := tx.WaitStart(ctx); err != nil {
		return fmt.Errorf("wait for receiver: %w", err)
	}
	u.logDebug("receiver ready", "blocks", total, "bytes", img.Size())

	// Phase 3: transfer
	sent := 0
	for i, block := range blocks {
		if err := ctx.Err(); err != nil {
			_ = tx.Cancel()
			return fmt.Errorf("cancelled: %w", err)
		}

		if err := tx.SendBlock(ctx, block); err != nil {
			if !xmodem.IsCancel(err) {
				_ = tx.Cancel()
			}
			u.logError("block failed", "block", i+1, "error", err)
			return fmt.Errorf("send block %d/%d: %w", i+1, total, err)
		}
		sent += len(block)

		u.reportProgress(Progress{
			Phase:        PhaseTransferring,
			CurrentBlock: i + 1,
			TotalBlocks:  total,
			Percentage:   float64(i+1) / float64(total) * 95,
			BytesSent:    sent,
			ElapsedTime:  time.Since(startTime),
		})
	}

	// Phase 4: finish
	u.reportProgress(Progress{
		Phase:        PhaseFinishing,
		CurrentBlock: total,
		TotalBlocks:  total,
		Percentage:   97,
		BytesSent:    sent,
		ElapsedTime:  time.Since(startTime),
	})
	if err := tx.Finish(ctx); err != nil {
		return fmt.Errorf("finish transfer: %w", err)
	}

	u.reportProgress(Progress{
		Phase:        PhaseComplete,
		CurrentBlock: total,
		TotalBlocks:  total,
		Percentage:   100,
		BytesSent:    sent,
		ElapsedTime:  time.Since(startTime),
	})

	u.logInfo("upload complete",
		"blocks", total,
		"bytes", sent,
		"elapsed", time.Since(startTime).String(),
	)

	return nil
}

// enter sends the trigger and waits for the ready marker.
func (u *Uploader) enter(ctx context.Context) error {
	if u.config.Trigger != "" {
		if _, err := io.WriteString(u.port, u.config.Trigger); err != nil {
			return fmt.Errorf("write trigger: %w", err)
		}
		u.logDebug("trigger sent", "trigger", fmt.Sprintf("%q", u.config.Trigger))
	}
	if u.config.ReadyMarker == "" {
		return nil
	}
	if err := u.readUntil(ctx, u.config.ReadyMarker, u.config.ReadyTimeout); err != nil {
		return &TriggerError{Marker: u.config.ReadyMarker, Err: err}
	}
	return nil
}

// readUntil consumes device output one byte at a time until marker has been
// seen, leaving whatever follows it unread.
func (u *Uploader) readUntil(ctx context.Context, marker string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	if d, ok := u.port.(deadliner); ok {
		_ = d.SetReadDeadline(deadline)
		defer func() { _ = d.SetReadDeadline(time.Time{}) }()
	}

	want := []byte(marker)
	window := make([]byte, 0, len(want))
	var b [1]byte
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, err := u.port.Read(b[:])
		if n == 1 {
			if len(window) == len(want) {
				window = append(window[:0], window[1:]...)
			}
			window = append(window, b[0])
			if bytes.Equal(window, want) {
				return nil
			}
		}

		if time.Now().After(deadline) {
			return xmodem.ErrTimeout
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				return err
			}
			time.Sleep(time.Millisecond)
		}
	}
}

func (u *Uploader) senderOptions() []xmodem.Option {
	opts := []xmodem.Option{
		xmodem.WithResponseTimeout(u.config.ResponseTimeout),
		xmodem.WithSendRetries(u.config.Retries),
	}
	if u.config.Logger != nil {
		opts = append(opts, xmodem.WithLogger(u.config.Logger))
	}
	return opts
}

// reportProgress calls the progress callback if configured.
func (u *Uploader) reportProgress(progress Progress) {
	if u.config.ProgressCallback != nil {
		u.config.ProgressCallback(progress)
	}
}

// logDebug logs a debug message if a logger is configured.
func (u *Uploader) logDebug(msg string, keysAndValues ...interface{}) {
	if u.config.Logger != nil {
		u.config.Logger.Debug(msg, keysAndValues...)
	}
}

// logInfo logs an info message if a logger is configured.
func (u *Uploader) logInfo(msg string, keysAndValues ...interface{}) {
	if u.config.Logger != nil {
		u.config.Logger.Info(msg, keysAndValues...)
	}
}

// logError logs an error message if a logger is configured.
func (u *Uploader) logError(msg string, keysAndValues ...interface{}) {
	if u.config.Logger != nil {
		u.config.Logger.Error(msg, keysAndValues...)
	}
}
