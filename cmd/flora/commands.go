package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/flora/internal/identifications"
)

func newIdentifyCommand(ctx *commandContext) *cobra.Command {
	var wait bool
	var interval time.Duration
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "identify <file>",
		Short: "Upload a plant photo for identification",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := ctx.client()
			out := cmd.OutOrStdout()

			rec, err := c.upload(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if !wait || identifications.Terminal(rec.Status) {
				fmt.Fprintf(out, "Submitted %s (%s)\n", rec.ID, rec.Status)
				return nil
			}

			waitCtx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			final, err := c.wait(waitCtx, rec.ID.String(), interval)
			if errors.Is(err, context.DeadlineExceeded) {
				return fmt.Errorf("identification %s still pending after %s", rec.ID, timeout)
			}
			if err != nil {
				return err
			}

			fmt.Fprint(out, renderIdentification(final, shouldColorize(out)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&wait, "wait", false, "Wait for the identification to finish")
	cmd.Flags().DurationVar(&interval, "interval", 2*time.Second, "Polling interval while waiting")
	cmd.Flags().DurationVar(&timeout, "timeout", 3*time.Minute, "Maximum time to wait")

	return cmd
}

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past identifications, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if status != "" && !identifications.ValidStatus(status) {
				return fmt.Errorf("invalid status %q", status)
			}

			records, err := ctx.client().list(cmd.Context(), status)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "No identifications found")
				return nil
			}
			fmt.Fprintln(out, renderHistory(records, shouldColorize(out)))
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Filter by status (pending, success, failed, no_match)")

	return cmd
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show an identification and its matches",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := ctx.client().find(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprint(out, renderIdentification(rec, shouldColorize(out)))
			return nil
		},
	}
}

func newDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an identification and its photo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ctx.client().remove(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
}
