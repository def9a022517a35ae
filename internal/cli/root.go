// Package cli implements the keychord command line.
package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/dshills/keychord/internal/config"
	"github.com/dshills/keychord/internal/logging"
)

// session holds what PersistentPreRunE prepared for a subcommand.
type session struct {
	configFile string
	cfg        config.Config
	logger     zerolog.Logger
}

// NewRootCmd creates the keychord command tree.
func NewRootCmd(version string) *cobra.Command {
	rt := &session{logger: zerolog.Nop()}

	cmd := &cobra.Command{
		Use:   "keychord",
		Short: "Keyboard shortcut resolution engine",
		Long: `keychord loads keyboard shortcut declarations, reports conflicts between
them and resolves key presses, including two-key chords, to actions.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return rt.setup(cmd)
		},
	}

	f := cmd.PersistentFlags()
	f.StringVarP(&rt.configFile, "config", "c", "", "config file (default is keychord.yaml in the user config dir or .)")
	f.String("platform", "auto", "platform to resolve bindings for: auto, mac, windows or linux")
	f.String("keybind-set", "devToolsDefault", "active keybind set")
	f.StringSlice("bindings", nil, "binding declaration files")
	f.String("user-bindings", "", "user override file")
	f.StringSlice("actions", nil, "Lua action scripts")
	f.Bool("strict", true, "fail on the first malformed binding")
	f.String("log-level", "info", "log level: trace, debug, info, warn or error")
	f.String("log-format", "console", "log format: console or json")

	cmd.AddCommand(
		newCheckCmd(rt),
		newListCmd(rt),
		newResolveCmd(rt),
		newListenCmd(rt),
		newWatchCmd(rt),
	)
	return cmd
}

func (rt *session) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(cmd, rt.configFile)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	lc, err := cfg.Logging()
	if err != nil {
		return err
	}
	lc.Out = cmd.ErrOrStderr()

	rt.cfg = cfg
	rt.logger = logging.New(lc)
	rt.logger.Debug().Str("config", cfg.File).Msg("configuration loaded")
	return nil
}
