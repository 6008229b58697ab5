// Package initcmder provides the init command for initializing a local
// .leadline directory in the current working directory.
package initcmder

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/leadline/pkg/config"
)

const (
	dirName = ".leadline"
)

const initLongDesc string = `Initialize a new .leadline/ directory in the current working directory.

Creates a local .leadline/ directory that takes precedence over the default
~/.leadline/ directory for configuration, credentials and chat history.

Use --preset to seed config.toml for a deployment shape:
  cloud    Vertex AI Search retrieval, PostgreSQL analytics
  local    Qdrant + Ollama retrieval, SQLite analytics

Examples:
  leadline init
  leadline init --preset local`

const initShortDesc string = "Initialize a local .leadline/ directory"

type initer struct {
	preset string
}

func NewInitCmd() *cobra.Command {
	cmder := &initer{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: initShortDesc,
		Long:  initLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&cmder.preset, "preset", "", "Seed config.toml from a preset (cloud, local)")

	return cmd
}

func (i *initer) run(w io.Writer) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	dir := filepath.Join(cwd, dirName)

	info, err := os.Stat(dir)
	exists := err == nil && info.IsDir()
	if !exists {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating .leadline directory: %w", err)
		}
	}

	if i.preset != "" {
		if err := writePreset(dir, i.preset); err != nil {
			return err
		}
		fmt.Fprintf(w, "Wrote %s preset: %s\n", i.preset, filepath.Join(dir, "config.toml"))
	}

	if exists {
		fmt.Fprintf(w, "Already initialized: %s\n", dir)
		return nil
	}

	fmt.Fprintf(w, "Initialized .leadline directory: %s\n", dir)
	return nil
}

func writePreset(dir, name string) error {
	cfg, err := config.PresetConfig(name)
	if err != nil {
		return err
	}

	if _, err := os.Stat(filepath.Join(dir, "config.toml")); err == nil {
		return errors.New("config.toml already exists, use 'leadline config set' to change it")
	}

	cfger, err := config.NewConfiger(dir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	return cfger.SaveConfig(cfg)
}
