package cli

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/dshills/keychord/internal/app"
	"github.com/dshills/keychord/internal/input"
	"github.com/dshills/keychord/internal/input/action"
	"github.com/dshills/keychord/internal/input/tcellkey"
)

func newListenCmd(rt *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Dispatch key presses from the terminal interactively",
		Long: `Opens the terminal in full-screen mode and dispatches every key press.
Bound actions without a Lua script print their id. Press Esc twice to quit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			screen, err := tcell.NewScreen()
			if err != nil {
				return err
			}
			if err := screen.Init(); err != nil {
				return err
			}
			defer screen.Fini()

			// Logs would corrupt the screen.
			rt.logger = zerolog.Nop()

			l := &listener{screen: screen}
			registry := action.NewStaticRegistry()
			a, err := app.New(cmd.Context(), rt.cfg, rt.logger,
				app.WithRegistry(registry),
				app.WithDispatcherOptions(input.WithListener(l.fired)))
			if err != nil {
				return err
			}
			defer a.Close()
			stubActions(a, registry, l)

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			if rt.cfg.Watch {
				go func() { _ = a.Watch(ctx) }()
			}

			l.printf("keychord listening on %s, Esc twice quits", a.Host().Name())
			return l.run(ctx, a.Dispatcher())
		},
	}
	cmd.Flags().Bool("watch", false, "reload bindings when their files change")
	return cmd
}

// stubActions registers an action printing its id for every bound
// action that no script provides.
func stubActions(a *app.App, registry *action.StaticRegistry, l *listener) {
	for _, s := range a.Dispatcher().Index().Shortcuts() {
		if _, ok := registry.Action(s.Action); ok {
			continue
		}
		id := s.Action
		_ = registry.Register(action.Registration{
			ID: id,
			Handler: func(context.Context) (bool, error) {
				l.printf("  run %s", id)
				return true, nil
			},
		})
	}
}

// listener renders dispatch results line by line. Chord timeouts fire
// on timer goroutines, so lines are guarded and redraws are requested
// through the screen's event queue.
type listener struct {
	screen tcell.Screen

	mu    sync.Mutex
	lines []string
}

func (l *listener) printf(format string, args ...any) {
	l.mu.Lock()
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
	l.mu.Unlock()
	_ = l.screen.PostEvent(tcell.NewEventInterrupt(nil))
}

func (l *listener) fired(id string) {
	l.printf("  fired %s", id)
}

func (l *listener) run(ctx context.Context, d *input.Dispatcher) error {
	escapes := 0
	for {
		switch ev := l.screen.PollEvent().(type) {
		case nil:
			return nil
		case *tcell.EventResize:
			l.screen.Sync()
		case *tcell.EventInterrupt:
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyEscape {
				if escapes++; escapes == 2 {
					return nil
				}
			} else {
				escapes = 0
			}

			kev, ok := tcellkey.FromEvent(ev)
			if !ok {
				l.printf("%s: no key mapping", ev.Name())
				break
			}
			handled, err := d.HandleEvent(ctx, kev)
			switch {
			case err != nil:
				l.printf("%s: %v", kev, err)
			case handled:
				l.printf("%s: consumed [%s]", kev, d.State())
			default:
				l.printf("%s: passed [%s]", kev, d.State())
			}
		}
		l.draw()
	}
}

func (l *listener) draw() {
	l.mu.Lock()
	lines := l.lines
	l.mu.Unlock()

	l.screen.Clear()
	w, h := l.screen.Size()
	if len(lines) > h {
		lines = lines[len(lines)-h:]
	}
	style := tcell.StyleDefault
	for y, line := range lines {
		x := 0
		for _, r := range strings.TrimRight(line, "\n") {
			if x >= w {
				break
			}
			l.screen.SetContent(x, y, r, nil, style)
			x++
		}
	}
	l.screen.Show()
}
