package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/reachlyapp/reachly-server/internal/config"
	"github.com/reachlyapp/reachly-server/internal/logger"
	"github.com/reachlyapp/reachly-server/internal/roster"
	"github.com/reachlyapp/reachly-server/internal/service"
)

// RosterInboxHandle wraps the roster inbox watcher for lifecycle management.
// Inbox is nil when the inbox is disabled.
type RosterInboxHandle struct {
	*roster.Inbox
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *RosterInboxHandle) Shutdown() error {
	if h.Inbox == nil {
		return nil
	}
	h.cancel()
	return h.Stop()
}

// ProvideRosterInbox watches the roster inbox directory and imports files
// dropped into it.
func ProvideRosterInbox(i do.Injector) (*RosterInboxHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.Roster.InboxEnabled {
		log.Info("Roster inbox disabled")
		return &RosterInboxHandle{}, nil
	}

	rosterService := do.MustInvoke[*service.RosterService](i)

	inbox, err := roster.NewInbox(roster.InboxOptions{
		Path:        cfg.Roster.InboxPath,
		SettleDelay: cfg.Roster.SettleDelay,
	}, rosterService, log.Logger)
	if err != nil {
		return nil, err
	}

	// Run picks up files that arrived while the server was down first.
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		if err := inbox.Run(ctx); err != nil {
			log.Error("Roster inbox stopped", "error", err)
		}
	}()

	log.Info("Roster inbox watching", "path", inbox.Path())

	return &RosterInboxHandle{Inbox: inbox, cancel: cancel}, nil
}

// SessionCleanupJob runs periodic session cleanup.
type SessionCleanupJob struct {
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (j *SessionCleanupJob) Shutdown() error {
	j.cancel()
	return nil
}

// ProvideSessionCleanupJob provides the periodic session cleanup job.
func ProvideSessionCleanupJob(i do.Injector) (*SessionCleanupJob, error) {
	sessionService := do.MustInvoke[*service.SessionService](i)
	log := do.MustInvoke[*logger.Logger](i)

	ctx, cancel := context.WithCancel(context.Background())

	if count, err := sessionService.DeleteExpiredSessions(ctx); err != nil {
		log.Warn("Initial session cleanup failed", "error", err)
	} else if count > 0 {
		log.Info("Initial session cleanup completed", "deleted", count)
	}

	go sessionService.RunCleanup(ctx, sessionCleanupInterval)

	log.Info("Session cleanup job started")

	return &SessionCleanupJob{cancel: cancel}, nil
}
