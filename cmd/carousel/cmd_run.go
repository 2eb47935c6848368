package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/teranos/carousel"
	"github.com/teranos/carousel/internal/logging"
	"github.com/teranos/carousel/internal/watch"
)

const reloadDebounce = 200 * time.Millisecond

func runCarousel(cmd *cobra.Command, opts *options) error {
	cfg, deck, err := loadSettings(cmd, opts)
	if err != nil {
		return err
	}
	if opts.watchDeck && cfg.Deck == "" {
		return fmt.Errorf("--watch needs a deck file")
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.File)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	model, err := carousel.New(deck, carousel.WithConfig(cfg), carousel.WithLogger(logger))
	if err != nil {
		return err
	}
	defer model.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	program := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithReportFocus(),
		tea.WithContext(ctx),
	)

	if opts.watchDeck {
		w, err := watch.New(cfg.Deck, reloadDebounce, logger)
		if err != nil {
			return fmt.Errorf("failed to watch deck: %w", err)
		}
		if err := w.Start(ctx); err != nil {
			return fmt.Errorf("failed to watch deck: %w", err)
		}
		defer w.Stop()
		go forwardReloads(ctx, w.Events(), program, logger)
	}

	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

// sender is the part of tea.Program that reloads need.
type sender interface {
	Send(msg tea.Msg)
}

// forwardReloads loads the deck after each change and hands it to the program.
// Decks that fail to load are logged and skipped so the running deck stays up.
func forwardReloads(ctx context.Context, events <-chan string, program sender, logger *zap.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case path := <-events:
			deck, err := carousel.LoadDeck(path)
			if err != nil {
				logger.Warn("deck reload skipped", zap.String("path", path), zap.Error(err))
				continue
			}
			program.Send(carousel.ReloadMsg{Deck: deck})
		}
	}
}
