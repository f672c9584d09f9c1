package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"resizer/internal/config"
	"resizer/internal/logging"
)

var (
	cfg    = config.Default()
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:           "resizer",
	Short:         "resizer - batch resize and re-encode images",
	Long:          "resizer resizes a batch of images to one target size and format, in parallel, and bundles the results.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		loaded, err := config.Load(path, cmd.Flags())
		if err != nil {
			return err
		}
		log, err := logging.New(loaded.Log)
		if err != nil {
			return err
		}
		cfg = loaded
		logger = log
		logger.Debug("configuration loaded", zap.Stringer("config", cfg))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})
	config.RegisterGlobalFlags(rootCmd.PersistentFlags())
}
