package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/keychord/internal/app"
	"github.com/dshills/keychord/internal/input/fuzzy"
	"github.com/dshills/keychord/internal/input/keymap"
	"github.com/dshills/keychord/internal/input/platform"
)

func newListCmd(rt *session) *cobra.Command {
	var actionID, search string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the shortcuts bound on the platform",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			parser := keymap.Parser{Platform: platform.Resolve(rt.cfg.Platform), KeybindSet: rt.cfg.KeybindSet}
			idx, _, err := app.Build(cmd.Context(), keymap.NewLoader(), parser, rt.cfg, rt.logger)
			if err != nil {
				if rt.cfg.Strict || len(keymap.BindingErrors(err)) == 0 {
					return err
				}
				rt.logger.Warn().Err(err).Msg("some bindings were skipped")
			}

			shortcuts := idx.Shortcuts()
			switch {
			case actionID != "":
				shortcuts = idx.ShortcutsForAction(actionID)
			case search != "":
				shortcuts = searchShortcuts(idx, search)
			}

			rows := make([][]string, 0, len(shortcuts))
			for _, s := range shortcuts {
				rows = append(rows, []string{s.String(), s.Action, s.Type.String()})
			}

			out := cmd.OutOrStdout()
			if len(rows) == 0 {
				fmt.Fprintln(out, "no shortcuts")
				return nil
			}
			renderTable(out, []string{"Keys", "Action", "Type"}, rows)
			return nil
		},
	}
	cmd.Flags().StringVar(&actionID, "action", "", "only list the shortcuts of this action")
	cmd.Flags().StringVar(&search, "search", "", "fuzzy-match action ids, best match first")
	return cmd
}

// searchShortcuts returns the shortcuts of the actions matching query.
func searchShortcuts(idx *keymap.Index, query string) []keymap.KeyboardShortcut {
	var ids []string
	seen := make(map[string]bool)
	for _, s := range idx.Shortcuts() {
		if !seen[s.Action] {
			seen[s.Action] = true
			ids = append(ids, s.Action)
		}
	}

	var out []keymap.KeyboardShortcut
	for _, m := range fuzzy.Find(query, ids) {
		out = append(out, idx.ShortcutsForAction(m.Text)...)
	}
	return out
}
