// Package main is the entry point for the Gamble3000 terminal slot machine.
package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"gopkg.in/natefinch/lumberjack.v2"

	"gamble3000/internal/config"
	"gamble3000/internal/console"
	"gamble3000/internal/game/slot"
	"gamble3000/internal/pkg/db"
	"gamble3000/internal/pkg/lock"
	"gamble3000/internal/repository"
	"gamble3000/internal/service"
	"gamble3000/internal/session"
)

func main() {
	// Configure zerolog before config so load errors are readable
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	flags := config.Flags()
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		log.Fatal().Err(err).Msg("Failed to parse flags")
	}
	configDir, _ := flags.GetString("config")

	cfg, err := config.Load(configDir, flags)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	setupLogging(cfg)

	log.Info().Uint64("seed", cfg.Game.Seed).Bool("ledger", cfg.Ledger.Enabled).Msg("Configuration loaded")

	machineCfg := slot.DefaultConfig()
	machine, err := slot.New(machineCfg, slot.NewRand(cfg.Game.Seed))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create slot machine")
	}

	if showRTP, _ := flags.GetBool("rtp"); showRTP {
		if err := printRTP(os.Stdout, machine, cfg.Game.SimSpins); err != nil {
			log.Fatal().Err(err).Msg("Failed to print RTP report")
		}
		return
	}

	// Cancelled on SIGINT/SIGTERM; the session aborts and still reports its balance
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	input := console.NewReader(os.Stdin, os.Stdout, machineCfg.MinBet, machineCfg.MaxBet)
	defer input.Close()

	deps := &session.Dependencies{
		Machine: machine,
		Input:   input,
		Output:  console.NewWriter(os.Stdout, machineCfg),
		Locks:   lock.DefaultSessionLock,
	}

	var ledger *service.LedgerService
	if cfg.Ledger.Enabled {
		pool, err := db.NewPool(ctx, &cfg.Database)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to ledger database")
		}
		defer pool.Close()

		if err := repository.Migrate(ctx, pool.Pool); err != nil {
			log.Fatal().Err(err).Msg("Failed to run ledger migrations")
		}

		ledger = service.NewLedgerService(repository.NewSpinRepository(pool.Pool), cfg.Ledger.WriteTimeout)
		deps.Recorder = ledger
	}

	sess, err := session.New(session.ConfigFrom(machineCfg), deps)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create session")
	}
	defer deps.Locks.Release(sess.ID())

	summary, err := sess.Run(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Session ended early")
	}
	if summary == nil {
		return
	}

	log.Info().
		Str("session_id", summary.SessionID).
		Str("reason", summary.Reason.String()).
		Int64("final_balance", summary.FinalBalance).
		Int("spins", summary.Spins).
		Int64("net", summary.Net()).
		Msg("Session summary")

	if ledger != nil {
		statsCtx, cancel := db.WithTimeout(context.Background(), cfg.Ledger.WriteTimeout)
		defer cancel()
		stats, err := ledger.SessionStats(statsCtx, summary.SessionID)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to read ledger stats")
			return
		}
		log.Info().
			Int64("spins", stats.Spins).
			Int64("wagered", stats.Wagered).
			Int64("won", stats.Won).
			Int64("wins", stats.Wins).
			Msg("Ledger totals")
	}
}

// setupLogging applies the configured level and, when a file is set, sends
// logs to a rotated file instead of stderr.
func setupLogging(cfg *config.Config) {
	// Validated by config.Load
	level, _ := cfg.LogLevel()
	zerolog.SetGlobalLevel(level)

	if cfg.Log.File == "" {
		return
	}
	log.Logger = zerolog.New(&lumberjack.Logger{
		Filename:   cfg.Log.File,
		MaxSize:    cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAgeDays,
		Compress:   true,
	}).With().Timestamp().Logger()
}

func printRTP(w io.Writer, machine *slot.Machine, spins int) error {
	if err := console.WriteReport(w, machine.Name()+" exact", slot.ExactReport(machine)); err != nil {
		return err
	}
	return console.WriteReport(w, machine.Name()+" simulated", slot.Simulate(machine, spins))
}
