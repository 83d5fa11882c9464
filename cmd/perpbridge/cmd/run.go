package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/perpkit/bridge/config"
	"github.com/perpkit/bridge/dydx"
	"github.com/perpkit/bridge/engine"
	"github.com/perpkit/bridge/internal/logging"
	"github.com/perpkit/bridge/journal"
	"github.com/perpkit/bridge/notify"
	"github.com/perpkit/bridge/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the signal bridge",
	Long: `Run the bridge: load configuration, connect the venue client and
listen for inbound signals.

Credentials are read from the environment (or a .env file):
  DYDX_API_KEY, DYDX_API_SECRET, DYDX_API_PASSPHRASE
  TELEGRAM_TOKEN, TELEGRAM_CHAT_ID (when telegram is enabled)

Example:
  perpbridge run -f configs/dry.yaml`,
	RunE: runRun,
}

var runConfigPath string

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "f", "", "path to config file (YAML or JSON) (required)")
	runCmd.MarkFlagRequired("config")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(runConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	log, err := logging.New(cfg.Log.File)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	creds := dydx.Credentials{
		Key:        os.Getenv("DYDX_API_KEY"),
		Secret:     os.Getenv("DYDX_API_SECRET"),
		Passphrase: os.Getenv("DYDX_API_PASSPHRASE"),
	}
	if cfg.Live() && (creds.Key == "" || creds.Secret == "" || creds.Passphrase == "") {
		return fmt.Errorf("LIVE mode needs DYDX_API_KEY, DYDX_API_SECRET and DYDX_API_PASSPHRASE")
	}
	exch := dydx.NewClient(cfg.Exchange.Host, creds, cfg.ExchangeTimeout())

	var j journal.Journal = journal.Noop{}
	switch cfg.Journal.Type {
	case "csv":
		if j, err = journal.NewCSV(cfg.Journal.OrdersFile); err != nil {
			return fmt.Errorf("create journal: %w", err)
		}
	case "sqlite":
		if j, err = journal.NewSQLite(cfg.Journal.DBPath); err != nil {
			return fmt.Errorf("create journal: %w", err)
		}
	}
	defer j.Close()

	var notifier notify.Notifier = notify.Noop{}
	if cfg.Telegram.Enabled {
		token, chatID := os.Getenv("TELEGRAM_TOKEN"), os.Getenv("TELEGRAM_CHAT_ID")
		if token == "" || chatID == "" {
			return fmt.Errorf("telegram enabled but TELEGRAM_TOKEN / TELEGRAM_CHAT_ID not set")
		}
		notifier = notify.NewTelegram(token, chatID)
	}

	eng := engine.New(cfg.EngineParams(), exch,
		engine.WithJournal(j),
		engine.WithNotifier(notifier),
		engine.WithLogger(log),
	)

	log.Info("starting perpbridge",
		zap.String("mode", cfg.Trading.Mode),
		zap.Int("port", cfg.Server.Port),
		zap.Bool("stop_loss", cfg.Brackets.StopLossEnabled),
		zap.Bool("take_profit", cfg.Brackets.TakeProfitEnabled),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.New(eng, log).ListenAndServe(ctx, cfg.Server.Port)
}
