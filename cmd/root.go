package cmd

import (
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const defaultServerURL = "http://localhost:8000"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	cfg := viper.New()
	cfg.SetEnvPrefix("FRIBERG")
	cfg.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	cfg.AutomaticEnv()

	app := &app{cfg: cfg}

	rootCmd := &cobra.Command{
		Use:           "friberg",
		Short:         "Counter-Strike pro guessing game client",
		Long:          "friberg joins a guessing game room, mirrors the live board from the server's push channel, and submits manual or recommended guesses from the terminal.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.init()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("server", defaultServerURL, "Game server base URL")
	flags.String("room", "", "Room ID to join (or FRIBERG_ROOM)")
	flags.Duration("timeout", 10*time.Second, "HTTP request timeout")
	flags.Bool("verbose", false, "Enable debug logging")

	if err := bindFlags(cfg, flags); err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newConfigCmd(app),
		newBoardCmd(app),
		newGuessCmd(app),
		newSuggestCmd(app),
		newAutoGuessCmd(app),
		newPlayCmd(app),
		newHistoryCmd(app),
	)

	return rootCmd
}

func bindFlags(cfg *viper.Viper, flags *pflag.FlagSet) error {
	for _, name := range []string{"server", "room", "timeout", "verbose"} {
		if err := cfg.BindPFlag(name, flags.Lookup(name)); err != nil {
			return err
		}
	}
	return nil
}
