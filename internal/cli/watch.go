package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dshills/keychord/internal/app"
)

func newWatchCmd(rt *session) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Rebuild the shortcut index whenever a binding file changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := app.New(ctx, rt.cfg, rt.logger)
			if err != nil {
				return err
			}
			defer a.Close()

			rt.logger.Info().Strs("files", a.BindingFiles()).Msg("watching binding files")
			return a.Watch(ctx)
		},
	}
}
