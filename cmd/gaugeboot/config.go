package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/moffa90/go-gaugeboot/config"
	"github.com/moffa90/go-gaugeboot/flash"
)

var (
	flashPath string
	hexOut    string

	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
	}

	configShowCmd = &cobra.Command{
		Use:   "show",
		Short: "Decode the configuration page of a flash file as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd.OutOrStdout(), flashFile())
		},
	}

	configSettingsCmd = &cobra.Command{
		Use:   "settings",
		Short: "Print the effective command settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := cfg.Marshal()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	hexCmd = &cobra.Command{
		Use:   "hex",
		Short: "Dump a flash file as Intel HEX",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			if hexOut != "" {
				f, err := os.Create(hexOut)
				if err != nil {
					return err
				}
				defer func() { _ = f.Close() }()
				w = f
			}
			return dumpHex(w, flashFile())
		},
	}
)

func init() {
	configShowCmd.Flags().StringVar(&flashPath, "flash", "", "simulated flash file (overrides settings)")
	hexCmd.Flags().StringVar(&flashPath, "flash", "", "simulated flash file (overrides settings)")
	hexCmd.Flags().StringVarP(&hexOut, "output", "o", "", "output file (default stdout)")

	configCmd.AddCommand(configShowCmd, configSettingsCmd)
	rootCmd.AddCommand(configCmd, hexCmd)
}

func flashFile() string {
	if flashPath != "" {
		return flashPath
	}
	return cfg.Device.Flash
}

func showConfig(w io.Writer, path string) error {
	mem, err := flash.Open(path, flash.DefaultLayout())
	if err != nil {
		return err
	}

	page := make([]byte, config.RecordSize)
	if err := mem.Read(mem.Layout().ConfigBase, page); err != nil {
		return err
	}
	rec, err := config.Decode(page)
	if err != nil {
		return err
	}
	if !rec.Initialized() {
		_, err := fmt.Fprintln(w, "# configuration page is erased")
		return err
	}

	data, err := rec.YAML()
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func dumpHex(w io.Writer, path string) error {
	mem, err := flash.Open(path, flash.DefaultLayout())
	if err != nil {
		return err
	}
	return mem.WriteIntelHex(w)
}
