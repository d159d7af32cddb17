package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/swarmboard/swarmboard/internal/broadcast"
	"github.com/swarmboard/swarmboard/internal/bus"
	"github.com/swarmboard/swarmboard/internal/config"
	"github.com/swarmboard/swarmboard/internal/engine"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the engine's event fan-out until interrupted",
	Long: "Runs the bus dispatcher, logging every event and forwarding to Kafka\n" +
		"when broadcast is enabled in the config.",
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	eng, err := engine.New(cfg)
	if err != nil {
		return err
	}
	defer eng.Close()

	eng.Bus.Subscribe(func(evt *bus.Event) {
		slog.Info("event", "type", evt.Type, "id", evt.ID)
	})

	if cfg.Broadcast.Enabled {
		if cfg.Broadcast.Brokers == "" {
			return fmt.Errorf("broadcast enabled but no brokers configured")
		}
		fwd := broadcast.NewForwarder(cfg.Broadcast.Brokers, cfg.Broadcast.Topic)
		defer fwd.Close()
		fwd.Attach(eng.Bus)
		slog.Info("broadcast enabled", "brokers", cfg.Broadcast.Brokers, "topic", cfg.Broadcast.Topic)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("swarmboard serving", "store", cfg.StorePath(), "backend", cfg.Store.Backend)
	if err := eng.Bus.Dispatch(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
