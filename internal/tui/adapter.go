package tui

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/felixgeelhaar/freementors/internal/app"
	"github.com/felixgeelhaar/freementors/internal/auth"
)

// Adapter forwards session snapshots from the store to a running program
type Adapter struct {
	mu      sync.Mutex
	program *tea.Program
	queue   []auth.State
	stop    func()
}

// NewAdapter subscribes to the app's session store. Snapshots published
// before Attach are queued and delivered once a program is attached.
func NewAdapter(a *app.App) *Adapter {
	ad := &Adapter{}
	ad.stop = a.Store().Subscribe(ad.publish)
	return ad
}

// Attach starts delivering snapshots to program
func (ad *Adapter) Attach(program *tea.Program) {
	ad.mu.Lock()
	ad.program = program
	queued := ad.queue
	ad.queue = nil
	ad.mu.Unlock()

	// Send blocks until the program reads, so never under the lock
	go func() {
		for _, s := range queued {
			program.Send(StateMsg{State: s})
		}
	}()
}

// Stop unsubscribes from the store
func (ad *Adapter) Stop() {
	if ad.stop != nil {
		ad.stop()
	}
}

func (ad *Adapter) publish(s auth.State) {
	ad.mu.Lock()
	program := ad.program
	if program == nil {
		ad.queue = append(ad.queue, s)
	}
	ad.mu.Unlock()

	if program != nil {
		// The model drops snapshots older than the one it holds
		go program.Send(StateMsg{State: s})
	}
}

// Run starts the interactive client at start and blocks until the user
// quits. The persisted session is verified in the background while the
// first screen waits.
func Run(ctx context.Context, a *app.App, start string, opts ...tea.ProgramOption) error {
	adapter := NewAdapter(a)
	defer adapter.Stop()

	options := append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	program := tea.NewProgram(NewModel(ctx, a, start), options...)
	adapter.Attach(program)

	go func() {
		_ = a.Initialize(ctx)
	}()

	_, err := program.Run()
	return err
}
