// Package cli wires the ledger, valuation and config packages into the
// dunkbonds command line.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/dunkbonds/config"
	"github.com/rustyeddy/dunkbonds/goal"
	"github.com/rustyeddy/dunkbonds/internal/logger"
	"github.com/rustyeddy/dunkbonds/ledger"
	"github.com/rustyeddy/dunkbonds/trade"
)

// RootConfig holds the global flags and whatever they resolve to.
type RootConfig struct {
	ConfigPath   string
	DBPath       string
	ActivityPath string
	LogMode      string

	cfg      *config.Config
	log      *zap.Logger
	db       *ledger.SQLite
	ledger   *ledger.Ledger
	goals    *goal.Registry
	activity *trade.Activity
}

func NewRootCmd() *cobra.Command {
	rc := &RootConfig{}

	cmd := &cobra.Command{
		Use:   "dunkbonds",
		Short: "Goal bond and swap ledger",
		Long: `Dunkbonds keeps the cash balances and bond/swap holdings of goal
accounts, settles issuance and secondary transfers, and values positions.

Examples:
  dunkbonds config init -o dunkbonds.yaml
  dunkbonds -c dunkbonds.yaml account treasury goal-1
  dunkbonds -c dunkbonds.yaml account open alice goal-1
  dunkbonds -c dunkbonds.yaml bond issue <treasury-id> <account-id> --qty 2
  dunkbonds -c dunkbonds.yaml value <account-id>`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&rc.ConfigPath, "config", "c", "", "Path to config file (optional)")
	cmd.PersistentFlags().StringVar(&rc.DBPath, "db", "", "SQLite ledger database (overrides ledger.db_path)")
	cmd.PersistentFlags().StringVar(&rc.ActivityPath, "activity", "", "YAML order-book activity file")
	cmd.PersistentFlags().StringVar(&rc.LogMode, "log", "", "Log mode: development|production|off (overrides log.mode)")

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return rc.load()
	}
	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		return rc.close()
	}

	cmd.AddCommand(
		newAccountCmd(rc),
		newFundsCmd(rc),
		newInstrumentCmd(rc, ledger.KindBond),
		newInstrumentCmd(rc, ledger.KindSwap),
		newSettleCmd(rc),
		newValueCmd(rc),
		newHistoryCmd(rc),
		newConfigCmd(),
		newVersionCmd(),
	)

	return cmd
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// load resolves the config file and flags and builds the logger. The
// ledger itself is opened on first use.
func (rc *RootConfig) load() error {
	cfg := config.Default()
	if rc.ConfigPath != "" {
		var err error
		if cfg, err = config.LoadFromFile(rc.ConfigPath); err != nil {
			return err
		}
	}
	if rc.DBPath != "" {
		cfg.Ledger.DBPath = rc.DBPath
	}
	if rc.LogMode != "" {
		cfg.Log.Mode = rc.LogMode
	}

	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		return err
	}
	goals, err := cfg.Registry()
	if err != nil {
		return err
	}

	rc.cfg = cfg
	rc.log = log
	rc.goals = goals
	return nil
}

func (rc *RootConfig) currency() string {
	return rc.cfg.Ledger.Currency
}

// Ledger opens the configured database on first call.
func (rc *RootConfig) Ledger() (*ledger.Ledger, error) {
	if rc.ledger != nil {
		return rc.ledger, nil
	}

	lc := rc.cfg.Ledger
	opts := []ledger.StoreOption{
		ledger.WithMaxRetries(lc.MaxRetries),
		ledger.WithStoreLogger(rc.log.Named("store")),
	}
	if d, err := lc.Timeout(); err != nil {
		return nil, err
	} else if d > 0 {
		opts = append(opts, ledger.WithBusyTimeout(d))
	}

	db, err := ledger.NewSQLite(lc.DBPath, opts...)
	if err != nil {
		return nil, fmt.Errorf("open ledger %s: %w", lc.DBPath, err)
	}
	rc.db = db
	rc.ledger = ledger.New(db,
		ledger.WithLogger(rc.log),
		ledger.WithOverdraft(lc.AllowOverdraft),
	)
	return rc.ledger, nil
}

// Activity loads the --activity file, or an empty book without one.
func (rc *RootConfig) Activity() (*trade.Activity, error) {
	if rc.activity != nil {
		return rc.activity, nil
	}
	if rc.ActivityPath == "" {
		rc.activity = &trade.Activity{}
		return rc.activity, nil
	}
	a, err := trade.LoadActivity(rc.ActivityPath, rc.currency())
	if err != nil {
		return nil, err
	}
	rc.activity = a
	return a, nil
}

// requireGoal fails for goals missing from the config.
func (rc *RootConfig) requireGoal(ctx context.Context, goalID string) error {
	_, err := rc.goals.Goal(ctx, goalID)
	return err
}

func (rc *RootConfig) parseCash(s string) (ledger.Cash, error) {
	return ledger.ParseCash(s, rc.currency())
}

func (rc *RootConfig) close() error {
	var err error
	if rc.db != nil {
		err = rc.db.Close()
		rc.db, rc.ledger = nil, nil
	}
	if rc.log != nil {
		_ = rc.log.Sync()
	}
	return err
}
