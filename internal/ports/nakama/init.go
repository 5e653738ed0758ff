package nakama

import (
	"context"
	"database/sql"
	"time"

	"github.com/SnickersDE/DailyHub/internal/app"
	"github.com/SnickersDE/DailyHub/internal/config"

	"github.com/heroiclabs/nakama-common/runtime"
)

// InitModule wires repositories, services and RPCs for the Nakama runtime
// and starts the background deadline sweep.
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	if err := config.LoadEngineConfig("data/engine_config.json"); err != nil {
		logger.Warn("InitModule: Could not load engine config, using defaults: %v", err)
	}

	games := NewStorageGameRepository(nk)
	lobbies := NewStorageLobbyRepository(nk)
	notifier := NewNotificationSender(nk, logger)

	opts := app.Options{
		TurnDuration:  config.GetTurnDuration(),
		SetupDuration: config.GetSetupDuration(),
	}
	svc := app.NewService(games, lobbies, notifier, opts)
	sweep := app.NewSweep(games, lobbies, notifier, opts)

	if err := RegisterRPCs(initializer, svc, sweep); err != nil {
		return err
	}

	startSweepLoop(ctx, logger, sweep, config.GetSweepInterval())

	logger.Info("Board game engine module loaded.")
	return nil
}

// startSweepLoop runs the deadline sweep on a fixed interval until the
// runtime shuts down. The tick_turn RPC drives the same sweep for external
// schedulers; both paths are safe to overlap because every advance is a
// conditional write.
func startSweepLoop(ctx context.Context, logger runtime.Logger, sweep *app.Sweep, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				report := sweep.Run(ctx)
				logFailures(logger, report)
				if len(report.Updated) > 0 || len(report.SetupUpdated) > 0 {
					logger.Info("Sweep: advanced %d turns, started %d games", len(report.Updated), len(report.SetupUpdated))
				}
			}
		}
	}()
}
