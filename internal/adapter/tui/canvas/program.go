package canvas

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"polydraw/internal/domain"
	"polydraw/internal/infra/config"
)

// ProgramOptions maps the editor config to Bubble Tea program options.
func ProgramOptions(cfg config.EditorConfig) []tea.ProgramOption {
	var opts []tea.ProgramOption
	if cfg.AltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	if cfg.AllMotion {
		opts = append(opts, tea.WithMouseAllMotion())
	} else {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	return opts
}

// Run starts the editor and blocks until it exits or ctx is cancelled.
// Events published on bus are shown in the status line. bus may be nil.
func Run(ctx context.Context, deps Deps, cfg config.EditorConfig, bus domain.EventBus) error {
	program := tea.NewProgram(New(deps), ProgramOptions(cfg)...)

	done := make(chan struct{})
	defer close(done)

	if bus != nil {
		// The bus worker must never wait on the program loop, which itself
		// publishes through the dispatcher. Keep only the newest event.
		latest := make(chan domain.Event, 1)
		unsub := bus.SubscribeAll(func(_ context.Context, event domain.Event) {
			select {
			case <-latest:
			default:
			}
			latest <- event
		})
		defer unsub()

		go func() {
			for {
				select {
				case event := <-latest:
					program.Send(EventMsg{Event: event})
				case <-done:
					return
				}
			}
		}()
	}

	go func() {
		select {
		case <-ctx.Done():
			program.Send(QuitMsg{})
		case <-done:
		}
	}()

	_, err := program.Run()
	return err
}
