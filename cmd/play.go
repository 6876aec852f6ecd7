package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	boardadapter "github.com/UchihaStesla/friberg/internal/adapters/render/board"
	"github.com/UchihaStesla/friberg/internal/adapters/socket"
	"github.com/UchihaStesla/friberg/internal/application"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newPlayCmd(app *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Join the room and follow the live board until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPlay(cmd, app, limit)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum candidates to print")

	return cmd
}

func runPlay(cmd *cobra.Command, app *app, limit int) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	manager := socket.NewManager(socket.Config{
		BaseURL: app.cfg.GetString("server"),
		Logger:  app.log,
	})

	session, _, err := app.newSession(manager)
	if err != nil {
		return err
	}
	manager.SetHandler(session.HandleFrame)

	if err := session.Start(ctx); err != nil {
		return err
	}
	defer func() {
		// The signal context is already canceled on the way out.
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := session.Stop(stopCtx); err != nil {
			app.log.Warn("leave room", zap.Error(err))
		}
	}()

	if err := session.Ready(ctx); err != nil {
		app.log.Warn("player ready", zap.Error(err))
	}

	if err := printBoard(cmd, app, session.Snapshot(), limit); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-session.Changes():
			if err := printBoard(cmd, app, session.Snapshot(), limit); err != nil {
				return err
			}
		}
	}
}

func printBoard(cmd *cobra.Command, app *app, snapshot application.Snapshot, limit int) error {
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
