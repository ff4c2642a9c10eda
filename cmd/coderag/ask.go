package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/coderag/pkg/sdk"
)

func newAskCmd(opts *rootOptions) *cobra.Command {
	var (
		sessionID string
		topK      int
	)
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Stream an answer to stdout",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.Join(args, " ")
			out := cmd.OutOrStdout()

			if opts.remote != "" {
				c, err := sdk.New(opts.remote, sdk.WithAPIKey(opts.apiKey))
				if err != nil {
					return err
				}
				return askRemote(cmd.Context(), c, out, sessionID, question)
			}

			a, err := newApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			sid := a.sessions.GetOrCreate(sessionID)
			for tok := range a.pipeline.Ask(cmd.Context(), sid, question, topK) {
				if _, err := io.WriteString(out, tok); err != nil {
					return err
				}
			}
			_, err = fmt.Fprintln(out)
			return err
		},
	}
	cmd.Flags().StringVar(&sessionID, "session", "", "session id for conversation history")
	cmd.Flags().IntVar(&topK, "top-k", 0, "chunks to retrieve (default from config)")
	addRemoteFlags(cmd, opts)
	return cmd
}

func askRemote(ctx context.Context, c *sdk.Client, out io.Writer, sessionID, question string) error {
	for tok, err := range c.Ask(ctx, sessionID, question) {
		if err != nil {
			return err
		}
		if _, err := io.WriteString(out, tok); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(out)
	return err
}
