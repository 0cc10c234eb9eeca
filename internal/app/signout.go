package app

import (
	"context"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/medidas/navshell/internal/identity"
)

// signOutFailedMsg reports a rejected sign-out. It only feeds the event log.
type signOutFailedMsg struct {
	err error
}

// SignOut asks the provider to end the session. It never touches the
// session store: the resulting absence arrives through the subscription.
// Failures are logged and reported as signOutFailedMsg; the caller may
// retry.
func SignOut(ctx context.Context, p identity.Provider, timeout time.Duration, logger *slog.Logger) tea.Cmd {
	if logger == nil {
		logger = slog.Default()
	}
	return func() tea.Msg {
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		if err := p.SignOut(ctx); err != nil {
			logger.Error("sign out failed", "err", err)
			return signOutFailedMsg{err: err}
		}
		return nil
	}
}
