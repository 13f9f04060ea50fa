package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/moffa90/go-gaugeboot/boot"
	"github.com/moffa90/go-gaugeboot/clock"
	"github.com/moffa90/go-gaugeboot/config"
	"github.com/moffa90/go-gaugeboot/fifo"
	"github.com/moffa90/go-gaugeboot/flash"
	"github.com/moffa90/go-gaugeboot/link"
	"github.com/moffa90/go-gaugeboot/logging"
)

var (
	simFlash string
	simPort  string
	simTTY   bool
	simVolts float64

	simCmd = &cobra.Command{
		Use:   "sim",
		Short: "Run the bootloader against a simulated flash file",
		Long: `Run the bootloader against a simulated flash file.

The flash file is created erased when missing and saved on exit. The menu is
served on a serial port (--port) or on the local terminal (--tty). With an
attach voltage below the threshold and a valid application the simulator
records the jump and exits.`,
		Args: cobra.NoArgs,
		RunE: runSim,
	}
)

func init() {
	simCmd.Flags().StringVar(&simFlash, "flash", "", "simulated flash file (overrides settings)")
	simCmd.Flags().StringVar(&simPort, "port", "", "serial port for the link (overrides settings)")
	simCmd.Flags().BoolVar(&simTTY, "tty", false, "use the local terminal as the link")
	simCmd.Flags().Float64Var(&simVolts, "volts", 0, "attach-detect voltage (overrides settings)")
	rootCmd.AddCommand(simCmd)
}

func runSim(cmd *cobra.Command, args []string) error {
	if simFlash != "" {
		cfg.Device.Flash = simFlash
	}
	if simPort != "" {
		cfg.Serial.Port = simPort
	}
	if cmd.Flags().Changed("volts") {
		cfg.Device.Volts = simVolts
	}

	mem, err := flash.Open(cfg.Device.Flash, flash.DefaultLayout())
	if err != nil {
		return err
	}

	var port io.ReadWriteCloser
	if simTTY {
		port, err = openTerminal()
	} else {
		port, err = openSerial(cfg.Serial)
	}
	if err != nil {
		return fmt.Errorf("failed to open link: %w", err)
	}

	logger := logging.Glog()
	buf := fifo.New(clock.System())
	stream := link.NewStream(port, buf, link.WithLogger(logger))
	machine := &boot.Recorder{}

	loader := boot.New(boot.Hardware{
		Link:     stream,
		Input:    buf,
		Flash:    mem,
		Identity: config.StaticIdentity(cfg.Device.UniqueID),
		Analog:   boot.FixedVolts(cfg.Device.Volts),
		Machine:  machine,
	},
		boot.WithLogger(logger),
		boot.WithAttachThreshold(cfg.Device.AttachThreshold),
		boot.WithBootWait(cfg.Device.BootWait),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var outcome boot.Outcome
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return stream.Run(gctx)
	})
	g.Go(func() error {
		defer cancel()
		var err error
		outcome, err = loader.Run(gctx)
		return err
	})
	g.Go(func() error {
		// Run only returns from a blocked read once the port is closed.
		<-gctx.Done()
		return port.Close()
	})

	runErr := g.Wait()
	if err := mem.Save(cfg.Device.Flash); err != nil {
		return err
	}
	if runErr != nil {
		return runErr
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "bootloader %s\n", outcome)
	if outcome == boot.OutcomeJumped {
		fmt.Fprintf(out, "stack pointer 0x%08X, entry 0x%08X\n", machine.StackPointer, machine.Entry)
	}
	return nil
}
