package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dshills/keychord/internal/app"
	"github.com/dshills/keychord/internal/input/keymap"
	"github.com/dshills/keychord/internal/input/platform"
)

func newCheckCmd(rt *session) *cobra.Command {
	var allPlatforms bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the binding files and report conflicts",
		Long: `Loads the binding files and builds the shortcut index, then lists the
duplicate, overlapping and prefix-shadowed shortcuts and every binding that
failed to parse. Exits non-zero when a binding is invalid.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			platforms := []string{platform.Resolve(rt.cfg.Platform)}
			if allPlatforms {
				platforms = []string{platform.Mac, platform.Windows, platform.Linux}
			}

			out := cmd.OutOrStdout()
			loader := keymap.NewLoader()
			invalid := 0
			for _, p := range platforms {
				parser := keymap.Parser{Platform: p, KeybindSet: rt.cfg.KeybindSet}
				idx, conflicts, err := app.Build(cmd.Context(), loader, parser, rt.cfg, rt.logger)
				bes := keymap.BindingErrors(err)
				if err != nil && len(bes) == 0 {
					return err
				}
				invalid += len(bes)

				fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("%s: %d shortcuts, %d conflicts, %d invalid",
					p, idx.Len(), len(conflicts), len(bes))))
				if len(conflicts) > 0 {
					renderTable(out, []string{"Kind", "Shortcut", "Action", "Existing", "Existing action"}, conflictRows(conflicts))
				}
				if len(bes) > 0 {
					renderTable(out, []string{"Source", "#", "Action", "Shortcut", "Error"}, bindingErrorRows(bes))
				}
			}

			if invalid > 0 {
				return fmt.Errorf("%d invalid bindings", invalid)
			}
			fmt.Fprintln(out, "ok")
			return nil
		},
	}
	cmd.Flags().BoolVar(&allPlatforms, "all-platforms", false, "check mac, windows and linux")
	return cmd
}

func conflictRows(conflicts []keymap.Conflict) [][]string {
	rows := make([][]string, 0, len(conflicts))
	for _, c := range conflicts {
		rows = append(rows, []string{
			c.Kind.String(),
			c.Shortcut.String(),
			c.Shortcut.Action,
			c.Existing.String(),
			c.Existing.Action,
		})
	}
	return rows
}

func bindingErrorRows(bes []*keymap.BindingError) [][]string {
	rows := make([][]string, 0, len(bes))
	for _, be := range bes {
		rows = append(rows, []string{
			be.Source,
			strconv.Itoa(be.Index),
			be.ActionID,
			be.Shortcut,
			errorStyle.Render(be.Err.Error()),
		})
	}
	return rows
}
