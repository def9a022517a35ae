package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/keychord/internal/app"
	"github.com/dshills/keychord/internal/input"
	"github.com/dshills/keychord/internal/input/action"
	"github.com/dshills/keychord/internal/input/clock"
	"github.com/dshills/keychord/internal/input/key"
	"github.com/dshills/keychord/internal/input/keymap"
	"github.com/dshills/keychord/internal/input/platform"
)

func newResolveCmd(rt *session) *cobra.Command {
	var (
		editing bool
		wait    bool
	)

	cmd := &cobra.Command{
		Use:   "resolve <key>...",
		Short: "Show which actions a sequence of key presses triggers",
		Long: `Feeds each key (for example Ctrl-K) to a dispatcher in order and prints
what happened. Every bound action is stubbed to report that it handled the
shortcut. Time does not pass between keys; --wait lets the chord timeout
expire after the last key.`,
		Example: `  keychord resolve Ctrl-K Ctrl-F
  keychord resolve --platform mac Meta-P
  keychord resolve --editing a Ctrl-Z`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			host := platform.New(rt.cfg.Platform)
			host.Editing = func() bool { return editing }

			parser := keymap.Parser{Platform: host.Name(), KeybindSet: rt.cfg.KeybindSet}
			idx, _, err := app.Build(cmd.Context(), keymap.NewLoader(), parser, rt.cfg, rt.logger)
			if err != nil && (rt.cfg.Strict || len(keymap.BindingErrors(err)) == 0) {
				return err
			}

			r := newResolver(idx, host, rt)
			defer r.dispatcher.Close()

			for _, token := range args {
				desc, err := key.ParseToken(token, host.IsMac())
				if err != nil {
					return err
				}
				r.press(cmd.Context(), token, desc.Key)
			}
			if wait {
				r.wait()
			}

			renderTable(cmd.OutOrStdout(), []string{"#", "Input", "Key", "Result", "Fired", "State"}, r.rows)
			return nil
		},
	}
	cmd.Flags().BoolVar(&editing, "editing", false, "resolve as if a text field had focus")
	cmd.Flags().BoolVar(&wait, "wait", false, "let a pending chord time out after the last key")
	return cmd
}

// resolver drives a dispatcher on a virtual clock and records a row per
// step.
type resolver struct {
	clock      *clock.Fake
	dispatcher *input.Dispatcher
	fired      []string
	rows       [][]string
}

func newResolver(idx *keymap.Index, host platform.Platform, rt *session) *resolver {
	r := &resolver{clock: clock.NewFake(time.Now())}

	registry := action.NewStaticRegistry()
	seen := make(map[string]bool)
	for _, s := range idx.Shortcuts() {
		if seen[s.Action] {
			continue
		}
		seen[s.Action] = true
		registry.MustRegister(action.Registration{
			ID: s.Action,
			Handler: func(context.Context) (bool, error) {
				return true, nil
			},
		})
	}

	r.dispatcher = input.NewDispatcher(idx, registry, host,
		input.WithClock(r.clock),
		input.WithLogger(rt.logger),
		input.WithListener(func(id string) { r.fired = append(r.fired, id) }),
	)
	return r
}

func (r *resolver) press(ctx context.Context, token string, code key.Code) {
	r.fired = nil
	handled, err := r.dispatcher.HandleKey(ctx, code, "")

	result := "passed"
	switch {
	case err != nil:
		result = errorStyle.Render(err.Error())
	case !handled:
	case r.armed(code):
		// An aborted chord may have replayed its prefix before code
		// armed a new one.
		result = "prefix"
	default:
		result = "consumed"
	}
	r.addRow(token, code.String(), result)
}

func (r *resolver) armed(code key.Code) bool {
	prefix, pending := r.dispatcher.PendingPrefix()
	return pending && prefix == code
}

func (r *resolver) wait() {
	prefix, pending := r.dispatcher.PendingPrefix()
	if !pending {
		return
	}
	r.fired = nil
	r.clock.Advance(input.KeyTimeout)
	r.addRow("(timeout)", prefix.String(), "timed out")
}

func (r *resolver) addRow(label, keyName, result string) {
	r.rows = append(r.rows, []string{
		fmt.Sprint(len(r.rows) + 1),
		label,
		keyName,
		result,
		strings.Join(r.fired, ", "),
		r.dispatcher.State().String(),
	})
}
