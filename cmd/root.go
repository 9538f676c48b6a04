// Package cmd implements the tmk CLI commands.
package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/eykd/tanmark-go/internal/config"
	"github.com/eykd/tanmark-go/internal/logger"
)

// NewRootCmd creates the root tmk command with all subcommands registered.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "tmk",
		Short:         "tmk - tanmark Markdown document tools",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		RunE:          rootRunE,
	}
	root.PersistentFlags().String("log-level", "", "log level: debug, info, warn or error (default from config)")

	docIO := newDefaultDocumentIO()
	root.AddCommand(NewFmtCmd(docIO))
	root.AddCommand(NewCheckCmd(docIO))
	root.AddCommand(NewTypeCmd(docIO))
	root.AddCommand(NewPasteCmd(docIO))
	root.AddCommand(NewImageCmd(docIO))
	root.AddCommand(NewOutlineCmd(docIO))
	root.AddCommand(NewInitCmd(newDefaultInitIO()))
	return root
}

func rootRunE(cmd *cobra.Command, _ []string) error {
	return cmd.Help()
}

// loadEnv loads the configuration that applies to documents in dir and
// builds the command logger. --log-level overrides the configured level.
// When io accepts a logger it is handed the command logger.
func loadEnv(cmd *cobra.Command, dir string, io any) (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	name := cfg.Log.Level
	if flag, _ := cmd.Flags().GetString("log-level"); flag != "" {
		name = flag
	}
	level, err := logger.ParseLevel(name)
	if err != nil {
		return nil, nil, err
	}
	log := logger.NewWithLevel(cmd.ErrOrStderr(), level)
	log.ConfigLoaded(cfg.Path, cfg.System.AutoSave, cfg.System.AutoSaveInterval)
	if s, ok := io.(loggerSetter); ok {
		s.SetLogger(log)
	}
	return cfg, log, nil
}

// documentDir returns the directory whose config applies to path.
func documentDir(path string) string {
	return filepath.Dir(path)
}
