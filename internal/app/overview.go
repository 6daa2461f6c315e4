package app

import (
	"context"

	"github.com/felixgeelhaar/freementors/internal/authz"
	"github.com/felixgeelhaar/freementors/internal/domain"
)

// Overview is the dashboard: who is signed in, where they can go, and
// how their mentorship sessions stand.
type Overview struct {
	Identity     domain.Identity
	Destinations []authz.Destination
	Tabs         []Tab
}

// Overview loads the dashboard. The identity and destinations are known
// locally; a failed session fetch leaves Tabs empty and returns the notice.
func (a *App) Overview(ctx context.Context) (*Overview, Notice) {
	identity, err := a.identity(authz.PathDashboard)
	if err != nil {
		return nil, Failure(err)
	}

	view := &Overview{
		Identity:     *identity,
		Destinations: a.router.Visible(a.store.State()),
	}

	board := a.Sessions()
	notice := board.Load(ctx)
	if !notice.IsError() {
		view.Tabs = board.Tabs()
	}
	return view, notice
}
