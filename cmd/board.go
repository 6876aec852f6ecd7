package cmd

import (
	"fmt"
	"time"

	boardadapter "github.com/UchihaStesla/friberg/internal/adapters/render/board"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newBoardCmd(app *app) *cobra.Command {
	var search string
	var limit int

	cmd := &cobra.Command{
		Use:   "board",
		Short: "Join the room, pull the current board, and print it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBoard(cmd, app, search, limit)
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "Filter candidates by name, nationality, team, or role")
	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum candidates to print")

	return cmd
}

func runBoard(cmd *cobra.Command, app *app, search string, limit int) error {
	ctx := cmd.Context()

	session, _, err := app.newSession(nil)
	if err != nil {
		return err
	}
	if err := session.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if err := session.Stop(ctx); err != nil {
			app.log.Warn("leave room", zap.Error(err))
		}
	}()

	// A failed fetch still renders: the board carries its own error line.
	if err := session.Reconcile(ctx); err != nil {
		app.log.Warn("load board", zap.Error(err))
	}

	snapshot := session.Snapshot()
	if search != "" {
		snapshot.Candidates = session.Filtered(search)
	}

	output, err := app.boardRenderer(snapshot, boardadapter.RenderOptions{
		Now:           time.Now(),
		MaxCandidates: limit,
	})
	if err != nil {
		return fmt.Errorf("render board: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), output)
	return err
}
