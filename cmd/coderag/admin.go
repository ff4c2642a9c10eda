package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/coderag/internal/usecase/pipeline"
	"github.com/kailas-cloud/coderag/pkg/sdk"
)

func newStatusCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Print knowledge base status as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.remote != "" {
				c, err := sdk.New(opts.remote, sdk.WithAPIKey(opts.apiKey))
				if err != nil {
					return err
				}
				st, err := c.Status(cmd.Context())
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), st)
			}

			a, err := newApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()
			return printJSON(cmd.OutOrStdout(), a.pipeline.Status(cmd.Context()))
		},
	}
	addRemoteFlags(cmd, opts)
	return cmd
}

func newClearCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every chunk from the knowledge base",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.remote != "" {
				c, err := sdk.New(opts.remote, sdk.WithAPIKey(opts.apiKey))
				if err != nil {
					return err
				}
				res, err := c.Clear(cmd.Context())
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), res)
			}

			a, err := newApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			res := a.pipeline.ClearAll(cmd.Context())
			if err := printJSON(cmd.OutOrStdout(), res); err != nil {
				return err
			}
			if res.Status != pipeline.StatusSuccess {
				return fmt.Errorf("clear failed: %s", res.Message)
			}
			return nil
		},
	}
	addRemoteFlags(cmd, opts)
	return cmd
}
