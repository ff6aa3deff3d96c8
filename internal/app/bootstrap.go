package app

import (
	"log/slog"

	"vnquant/internal/infra"
	"vnquant/internal/infra/storage"
)

// Bootstrap orchestrates the application startup sequence
type Bootstrap struct {
	Config  *infra.Config
	Logger  *slog.Logger
	Journal *storage.Journal
}

// NewBootstrap creates a new Bootstrap instance
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize performs core system initialization (config, logger, journal)
func (b *Bootstrap) Initialize() error {
	cfg, err := infra.LoadConfig("configs/config.yaml")
	if err != nil {
		return err // Let main handle the error
	}
	b.Config = cfg

	logger := infra.NewLogger(cfg)
	slog.SetDefault(logger)
	b.Logger = logger

	journal, err := storage.NewJournal("data/journal.db")
	if err != nil {
		return err
	}
	b.Journal = journal

	slog.Info("bootstrap complete",
		slog.String("app", cfg.App.Name),
		slog.String("version", cfg.App.Version),
		slog.Int("symbols", len(cfg.Trading.Symbols)))
	return nil
}
