// Command gaugeboot runs the gauge bootloader against a simulated flash file
// and uploads application images to a device.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/golang/glog"
	"github.com/spf13/cobra"

	"github.com/moffa90/go-gaugeboot/internal/settings"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var (
	settingsPath string
	cfg          = settings.Default()

	rootCmd = &cobra.Command{
		Use:           "gaugeboot",
		Short:         "Gauge bootloader simulator and uploader",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			s, err := settings.Load(settingsPath)
			if err != nil {
				return err
			}
			cfg = s
			return nil
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&settingsPath, "config", "", "YAML settings file")
	rootCmd.PersistentFlags().AddGoFlagSet(flag.CommandLine)
}

func main() {
	// glog registers its flags on the standard flag set; cobra parses them.
	_ = flag.CommandLine.Parse(nil)
	defer glog.Flush()

	if err := rootCmd.Execute(); err != nil {
		glog.Flush()
		fmt.Fprintf(os.Stderr, "gaugeboot: %v\n", err)
		os.Exit(1)
	}
}
