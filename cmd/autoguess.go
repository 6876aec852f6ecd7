package cmd

import (
	"context"

	"github.com/UchihaStesla/friberg/internal/domain"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newAutoGuessCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "autoguess",
		Short: "Ask the room to pick and submit the next guess",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAutoGuess(cmd, app)
		},
	}
}

func runAutoGuess(cmd *cobra.Command, app *app) error {
	ctx := cmd.Context()

	session, room, err := app.newSession(nil)
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

	var result domain.GuessResult
	submitErr := runWithSpinner(ctx, cmd.ErrOrStderr(), "Submitting recommended guess...", func(ctx context.Context) error {
		var err error
		result, err = session.AutoGuess(ctx)
		return err
	})

	recordHistory(ctx, app, room, result)
	printGuessResult(cmd, result)
	return submitErr
}
