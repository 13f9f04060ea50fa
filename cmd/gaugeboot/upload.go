package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/moffa90/go-gaugeboot/flash"
	"github.com/moffa90/go-gaugeboot/image"
	"github.com/moffa90/go-gaugeboot/logging"
	"github.com/moffa90/go-gaugeboot/uploader"
)

var (
	uploadPort    string
	uploadBaud    int
	uploadTrigger string
	uploadNoCheck bool

	uploadCmd = &cobra.Command{
		Use:   "upload IMAGE",
		Short: "Send an application image to the bootloader",
		Long: `Send an application image (.bin or .hex) to the bootloader.

The trigger sequence opens the menu and selects the firmware update before the
image is sent over XMODEM-1K.`,
		Args: cobra.ExactArgs(1),
		RunE: runUpload,
	}
)

func init() {
	uploadCmd.Flags().StringVar(&uploadPort, "port", "", "serial port (overrides settings)")
	uploadCmd.Flags().IntVar(&uploadBaud, "baud", 0, "baud rate (overrides settings)")
	uploadCmd.Flags().StringVar(&uploadTrigger, "trigger", "", "keys sent before the transfer (overrides settings)")
	uploadCmd.Flags().BoolVar(&uploadNoCheck, "no-vector-check", false, "skip the stack pointer check")
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	if uploadPort != "" {
		cfg.Serial.Port = uploadPort
	}
	if uploadBaud > 0 {
		cfg.Serial.Baud = uploadBaud
	}
	if cmd.Flags().Changed("trigger") {
		cfg.Upload.Trigger = uploadTrigger
	}

	img, err := image.Load(args[0], flash.DefaultLayout())
	if err != nil {
		return err
	}

	port, err := openSerial(cfg.Serial)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", cfg.Serial.Port, err)
	}
	defer func() { _ = port.Close() }()

	out := cmd.OutOrStdout()
	up := uploader.New(port,
		uploader.WithLogger(logging.Glog()),
		uploader.WithTrigger(cfg.Upload.Trigger),
		uploader.WithReadyMarker(cfg.Upload.ReadyMarker),
		uploader.WithTimeout(cfg.Upload.Timeout),
		uploader.WithRetries(cfg.Upload.Retries),
		uploader.WithVectorCheck(!uploadNoCheck),
		uploader.WithProgressCallback(func(p uploader.Progress) {
			fmt.Fprintf(out, "\r[%-12s] %5.1f%%  block %d/%d", p.Phase, p.Percentage, p.CurrentBlock, p.TotalBlocks)
		}),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	fmt.Fprintf(out, "%s: %d bytes (%s) at 0x%08X\n", args[0], img.Size(), img.Format, img.Base)
	err = up.Upload(ctx, img)
	fmt.Fprintln(out)
	return err
}
