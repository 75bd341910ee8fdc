// SPDX-License-Identifier: MIT
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"glow/internal/config"
	"glow/pkg/build"
)

// Options is the fully resolved launch configuration: file and
// environment settings with command-line overrides applied on top.
type Options struct {
	Config  *config.Config
	Command string // One-off command ("list"), empty for normal operation.
	TUI     bool
}

// ParseArgs parses the command line and resolves the configuration.
func ParseArgs() (*Options, error) {
	buildInfo := build.GetBuildFlags()
	opts := &Options{}

	var (
		configPath  string
		sourceKind  string
		deviceID    int
		wavPath     string
		addr        string
		initialMode int
		serialPort  string
		udpAddress  string
		verbose     bool
	)

	rootCmd := &cobra.Command{
		Use:           buildInfo.Name,
		Short:         "Audio-reactive LED controller",
		Version:       buildInfo.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			// Flags beat the file and the environment, but only when
			// actually set.
			if cmd.Flags().Changed("source") {
				cfg.Source.Kind = sourceKind
			}
			if cmd.Flags().Changed("device") {
				cfg.Source.Device = deviceID
			}
			if cmd.Flags().Changed("wav") {
				cfg.Source.Kind = "wav"
				cfg.Source.WAVPath = wavPath
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("mode") {
				cfg.InitialMode = initialMode
			}
			if cmd.Flags().Changed("serial") {
				cfg.Sinks.Serial.Enabled = true
				cfg.Sinks.Serial.Port = serialPort
			}
			if cmd.Flags().Changed("udp") {
				cfg.Sinks.UDP.Enabled = true
				cfg.Sinks.UDP.Address = udpAddress
			}
			if verbose {
				cfg.LogLevel = "debug"
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			opts.Config = cfg
			return nil
		},
	}

	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List available audio input devices",
		Run: func(cmd *cobra.Command, args []string) {
			opts.Command = "list"
		},
	}
	rootCmd.AddCommand(listCmd)

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "f", "",
		"Path to a YAML configuration file")
	rootCmd.PersistentFlags().StringVarP(&sourceKind, "source", "s", "portaudio",
		"Sample source: portaudio, wav or synth")
	rootCmd.PersistentFlags().IntVarP(&deviceID, "device", "d", -1,
		"Input device ID. Use 'list' to see available devices")
	rootCmd.PersistentFlags().StringVarP(&wavPath, "wav", "w", "",
		"Read samples from a WAV file instead of the microphone")
	rootCmd.PersistentFlags().StringVarP(&addr, "addr", "a", ":8080",
		"Listen address for the mode-control HTTP server")
	rootCmd.PersistentFlags().IntVarP(&initialMode, "mode", "m", 1,
		"Render mode active at startup (1-7)")
	rootCmd.PersistentFlags().StringVar(&serialPort, "serial", "",
		"Serial port of an attached LED bridge, e.g. /dev/ttyUSB0")
	rootCmd.PersistentFlags().StringVar(&udpAddress, "udp", "",
		"Target address for WLED realtime UDP output")
	rootCmd.PersistentFlags().BoolVarP(&opts.TUI, "tui", "t", false,
		"Show the terminal fixture preview")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug logging")

	rootCmd.SetArgs(os.Args[1:])
	if err := rootCmd.Execute(); err != nil {
		return nil, err
	}
	return opts, nil
}
