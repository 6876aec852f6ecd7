package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
)

type configFileSchema struct {
	Server  string               `toml:"server"`
	Room    string               `toml:"room,omitempty"`
	Timeout string               `toml:"timeout"`
	History configHistorySection `toml:"history"`
}

type configHistorySection struct {
	Path string `toml:"path"`
}

func newConfigCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the client configuration file",
	}

	cmd.AddCommand(newConfigInitCmd(app))
	return cmd
}

func newConfigInitCmd(app *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write ~/.friberg/config.toml seeded from the current flags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigInit(cmd, app, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")
	return cmd
}

func runConfigInit(cmd *cobra.Command, app *app, force bool) error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("resolve home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, ".friberg")
	configPath := filepath.Join(configDir, "config.toml")

	if !force {
		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("config file %s already exists (use --force to overwrite)", configPath)
		}
	}

	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	timeout := app.cfg.GetDuration("timeout")
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	data, err := toml.Marshal(configFileSchema{
		Server:  app.cfg.GetString("server"),
		Room:    app.cfg.GetString("room"),
		Timeout: timeout.String(),
		History: configHistorySection{Path: filepath.Join(configDir, "history.toml")},
	})
	if err != nil {
		return fmt.Errorf("encode config file: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", configPath)
	return err
}
