package main

import (
	"fmt"
	"strings"

	"github.com/miosync/miochat/providers"
	"github.com/spf13/cobra"
)

func newModelsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the selectable models for the provider",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, m := range a.cfg.AllowedModels() {
				marker := " "
				if m == a.cfg.Model {
					marker = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", marker, m)
			}
			return nil
		},
	}
}

func newAskCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <message>",
		Short: "Send one message and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			provider, err := providers.New(ctx, a.cfg.Provider, a.logger)
			if err != nil {
				return err
			}
			defer providers.Close(provider)

			turn, err := a.newSession().Submit(ctx, provider, strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), turn.Content)
			return nil
		},
	}
}
