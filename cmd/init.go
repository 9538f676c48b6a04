package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/eykd/tanmark-go/internal/config"
	"github.com/eykd/tanmark-go/internal/vault"
)

// InitIO handles I/O for the init command.
type InitIO interface {
	StatFile(path string) (bool, error)
	WriteFileAtomic(path, content string) error
}

// NewInitCmd creates the init subcommand.
func NewInitCmd(io InitIO) *cobra.Command {
	return newInitCmdWithGetCWD(io, os.Getwd)
}

func newInitCmdWithGetCWD(io InitIO, getwd func() (string, error)) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:          "init",
		Short:        "Write a default " + config.ProjectFile + " in the current directory",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			if dir == "" {
				cwd, err := getwd()
				if err != nil {
					return fmt.Errorf("getting working directory: %w", err)
				}
				dir = cwd
			}
			configPath := filepath.Join(dir, config.ProjectFile)

			exists, err := io.StatFile(configPath)
			if err != nil {
				return fmt.Errorf("checking %s: %w", configPath, err)
			}
			if exists && !force {
				return fmt.Errorf("%s already exists in %s; use --force to overwrite", config.ProjectFile, dir)
			}

			data, err := config.DefaultConfig().Marshal()
			if err != nil {
				return fmt.Errorf("encoding config: %w", err)
			}
			content := "# tanmark configuration\n" + string(data)
			if err := io.WriteFileAtomic(configPath, content); err != nil {
				return fmt.Errorf("writing %s: %w", config.ProjectFile, err)
			}

			if exists {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning: overwriting existing "+config.ProjectFile)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Initialized "+dir)
			return nil
		},
	}

	cmd.Flags().String("dir", "", "directory to initialize (default: current directory)")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")

	return cmd
}

// fileInitIO implements InitIO using OS file I/O.
type fileInitIO struct{}

func newDefaultInitIO() *fileInitIO {
	return &fileInitIO{}
}

// StatFile returns true if the file at path exists, false if it does not.
// Returns an error only for unexpected OS errors.
func (f *fileInitIO) StatFile(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// WriteFileAtomic writes content to path atomically through the document
// store. New files are created 0644; an existing file keeps its permissions.
func (f *fileInitIO) WriteFileAtomic(path, content string) error {
	return vault.New().Save(context.Background(), path, content)
}
