package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newSuggestCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "suggest",
		Short: "Print the best next guess without submitting it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSuggest(cmd, app)
		},
	}
}

func runSuggest(cmd *cobra.Command, app *app) error {
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

	if err := session.Reconcile(ctx); err != nil {
		return err
	}

	candidate, err := session.SuggestNext()
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s (%s) %s entropy %.3f\n",
		candidate.Nickname, candidate.FullName(), candidate.Team, candidate.EntropyValue)
	return err
}
