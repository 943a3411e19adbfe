package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/zoobzio/vitalz"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func newRootCmd(out io.Writer) *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "vitalz",
		Short: "Browser performance timing to tracing spans",
		Long: `vitalz turns recorded browser performance entries and web vitals
into finished tracing spans and page load measurements.

Examples:
  # Replay a recorded session and print spans as JSON
  vitalz replay session.yaml

  # Print YAML and also export to a collector
  vitalz replay session.json -o yaml --otlp-endpoint localhost:4317
`,
		SilenceUsage: true,
	}
	root.SetOut(out)

	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: search /etc/vitalz, $HOME/.vitalz, .)")
	vitalz.RegisterFlags(root.PersistentFlags())

	root.AddCommand(newReplayCmd(&configPath))
	root.AddCommand(newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Println("vitalz version " + version)
		},
	}
}
