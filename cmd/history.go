package cmd

import (
	"fmt"
	"time"

	"github.com/UchihaStesla/friberg/internal/domain"
	"github.com/spf13/cobra"
)

func newHistoryCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List guesses recorded for the room",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHistoryList(cmd, app)
		},
	}

	cmd.AddCommand(newHistoryClearCmd(app))
	return cmd
}

func newHistoryClearCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Forget the recorded guesses for the room",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			room, err := app.roomID()
			if err != nil {
				return err
			}
			if err := app.history.Clear(cmd.Context(), room); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "cleared history for %s\n", room)
			return err
		},
	}
}

func runHistoryList(cmd *cobra.Command, app *app) error {
	room, err := app.roomID()
	if err != nil {
		return err
	}

	results, err := app.history.ListByRoom(cmd.Context(), room)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(results) == 0 {
		_, err = fmt.Fprintf(out, "no guesses recorded for %s\n", room)
		return err
	}

	for _, result := range results {
		fmt.Fprintln(out, historyLine(result))
	}
	return nil
}

func historyLine(result domain.GuessResult) string {
	stamp := "-"
	if !result.ReceivedAt.IsZero() {
		stamp = result.ReceivedAt.UTC().Format(time.RFC3339)
	}

	switch {
	case result.IsSuccess:
		return fmt.Sprintf("%s  correct    %s", stamp, result.Nickname)
	case result.Failure():
		return fmt.Sprintf("%s  failed     %s", stamp, result.Message)
	default:
		return fmt.Sprintf("%s  incorrect  %s", stamp, result.Nickname)
	}
}
