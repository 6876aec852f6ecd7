package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	apiadapter "github.com/UchihaStesla/friberg/internal/adapters/api"
	boardadapter "github.com/UchihaStesla/friberg/internal/adapters/render/board"
	tomlrepo "github.com/UchihaStesla/friberg/internal/adapters/repo/toml"
	"github.com/UchihaStesla/friberg/internal/application"
	"github.com/UchihaStesla/friberg/internal/ports"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var errRoomRequired = errors.New("room id is required: pass --room or set FRIBERG_ROOM")

type app struct {
	cfg           *viper.Viper
	log           *zap.Logger
	api           ports.RoomAPI
	history       ports.HistoryRepository
	clock         ports.Clock
	boardRenderer func(application.Snapshot, boardadapter.RenderOptions) (string, error)
}

// init finishes wiring once flags are parsed, so flag and env values are
// visible when the adapters are constructed.
func (a *app) init() error {
	if a.log != nil {
		return nil
	}

	if err := readConfigFile(a.cfg); err != nil {
		return err
	}

	logger, err := newLogger(a.cfg.GetBool("verbose"))
	if err != nil {
		return fmt.Errorf("wire logger: %w", err)
	}

	history, err := tomlrepo.NewHistoryRepository(viper.New())
	if err != nil {
		return fmt.Errorf("wire history repository: %w", err)
	}

	a.log = logger
	a.api = apiadapter.NewClient(a.cfg.GetString("server"), a.cfg.GetDuration("timeout"), logger)
	a.history = history
	a.clock = ports.SystemClock{}
	a.boardRenderer = boardadapter.Render
	return nil
}

func readConfigFile(cfg *viper.Viper) error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("resolve home directory: %w", err)
	}

	cfg.SetConfigName("config")
	cfg.SetConfigType("toml")
	cfg.AddConfigPath(filepath.Join(homeDir, ".friberg"))

	if err := cfg.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return fmt.Errorf("read config file: %w", err)
		}
	}
	return nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}

func (a *app) roomID() (string, error) {
	room := strings.TrimSpace(a.cfg.GetString("room"))
	if room == "" {
		return "", errRoomRequired
	}
	return room, nil
}

func (a *app) newSession(transport ports.Transport) (*application.Session, string, error) {
	room, err := a.roomID()
	if err != nil {
		return nil, "", err
	}
	return application.NewSession(room, a.api, transport, a.clock, a.log), room, nil
}
