// Command bankctl applies and reverses ledger transactions directly against
// the database, through the same engine the API uses.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"bankbook/internal/config"
	"bankbook/internal/database"
	"bankbook/internal/ledger"
	"bankbook/internal/logger"
	"bankbook/internal/server"
)

// env is what every subcommand works against.
type env struct {
	db     *gorm.DB
	engine *ledger.Engine
}

// connectFunc opens the ledger. The returned func releases it.
type connectFunc func(ctx context.Context) (*env, func(), error)

func connectFromConfig(_ context.Context) (*env, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	manager, err := database.NewManager(database.NewConfig(cfg))
	if err != nil {
		return nil, nil, err
	}
	if err := manager.Migrate(); err != nil {
		_ = manager.Close()
		return nil, nil, err
	}
	db := manager.DB()
	release := func() {
		if err := manager.Close(); err != nil {
			logger.Get().Warnw("failed to close database", "error", err)
		}
	}
	return &env{db: db, engine: server.NewEngine(db, cfg)}, release, nil
}

func newRootCmd(connect connectFunc) *cobra.Command {
	var (
		current *env
		release func()
	)

	root := &cobra.Command{
		Use:           "bankctl",
		Short:         "Apply, reverse and inspect ledger transactions",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			e, done, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			current, release = e, done
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if release != nil {
				release()
			}
		},
	}

	get := func() *env { return current }
	root.AddCommand(applyCmd(get))
	root.AddCommand(reverseCmd(get))
	root.AddCommand(accountsCmd(get))
	root.AddCommand(budgetsCmd(get))
	return root
}

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd(connectFromConfig).ExecuteContext(ctx)
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
