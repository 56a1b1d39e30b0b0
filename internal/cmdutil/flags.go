package cmdutil

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/code-explainer/internal/config"
)

// ErrNotInitialized is returned when a command runs before config.Init.
var ErrNotInitialized = errors.New("configuration not initialized")

// FlagKeys maps the shared override flags to their configuration keys.
var FlagKeys = map[string]string{
	"max-size": "split.max_piece_size",
	"overlap":  "split.overlap",
	"language": "extract.language",
	"format":   "output.format",
	"out":      "output.dir",
	"workers":  "annotate.workers",
	"provider": "annotate.provider",
}

// BindFlags binds every flag of cmd named in FlagKeys to its configuration
// key. Flags the command does not define are skipped.
func BindFlags(cmd *cobra.Command) error {
	names := make([]string, 0, len(FlagKeys))
	for name := range FlagKeys {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			continue
		}
		if err := config.BindFlag(FlagKeys[name], flag); err != nil {
			return err
		}
	}
	return nil
}

// LoadConfig returns the validated global configuration.
func LoadConfig() (*config.Config, error) {
	cfg := config.Get()
	if cfg == nil {
		return nil, ErrNotInitialized
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration; %w", err)
	}
	return cfg, nil
}
