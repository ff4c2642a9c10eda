// Command coderag serves and drives the code assistant.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/coderag/internal/config"
)

type rootOptions struct {
	env      string
	logLevel string
	remote   string
	apiKey   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "coderag",
		Short:         "Retrieval-augmented code assistant",
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringVar(&opts.env, "env", config.GetEnv(), "config environment (config/<env>.yaml)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override log level: debug, info, warn, error")

	root.AddCommand(
		newServeCmd(opts),
		newIngestCmd(opts),
		newAskCmd(opts),
		newStatusCmd(opts),
		newClearCmd(opts),
		newVersionCmd(),
	)
	return root
}

// addRemoteFlags lets a command talk to a running server instead of
// building the pipeline in-process.
func addRemoteFlags(cmd *cobra.Command, opts *rootOptions) {
	cmd.Flags().StringVar(&opts.remote, "remote", "", "server base URL, e.g. http://localhost:8000")
	cmd.Flags().StringVar(&opts.apiKey, "api-key", os.Getenv("CODERAG_API_KEY"), "bearer token for --remote")
}
