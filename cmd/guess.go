package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/UchihaStesla/friberg/internal/application"
	"github.com/UchihaStesla/friberg/internal/domain"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newGuessCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "guess <player>",
		Short: "Submit a guess for a player, by ID or by a unique search match",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGuess(cmd, app, args[0])
		},
	}
}

func runGuess(cmd *cobra.Command, app *app, query string) error {
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

	if err := session.Reconcile(ctx); err != nil {
		return err
	}

	playerID, err := resolvePlayer(session, query)
	if err != nil {
		return err
	}

	var result domain.GuessResult
	submitErr := runWithSpinner(ctx, cmd.ErrOrStderr(), "Submitting guess...", func(ctx context.Context) error {
		var err error
		result, err = session.SubmitGuess(ctx, playerID)
		return err
	})

	recordHistory(ctx, app, room, result)
	printGuessResult(cmd, result)
	return submitErr
}

// resolvePlayer accepts either a player ID from the current candidate list or
// a search string matching exactly one candidate.
func resolvePlayer(session *application.Session, query string) (string, error) {
	for _, candidate := range session.Filtered("") {
		if candidate.PlayerID == query {
			return candidate.PlayerID, nil
		}
	}

	matches := session.Filtered(query)
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no candidate matches %q", query)
	case 1:
		return matches[0].PlayerID, nil
	default:
		names := make([]string, 0, len(matches))
		for _, m := range matches {
			names = append(names, m.Nickname)
		}
		return "", fmt.Errorf("%q is ambiguous, matches: %s", query, strings.Join(names, ", "))
	}
}

func recordHistory(ctx context.Context, app *app, room string, result domain.GuessResult) {
	if err := app.history.Append(ctx, room, result); err != nil {
		app.log.Warn("save guess to history", zap.Error(err))
	}
}

func printGuessResult(cmd *cobra.Command, result domain.GuessResult) {
	out := cmd.OutOrStdout()

	switch {
	case result.IsSuccess:
		fmt.Fprintf(out, "correct: %s\n", result.Nickname)
	case result.Failure():
		fmt.Fprintf(out, "guess failed: %s\n", result.Message)
	default:
		fmt.Fprintf(out, "incorrect: %s\n", result.Nickname)
	}
}
