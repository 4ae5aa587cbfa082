package providers

import "time"

const (
	// shutdownTimeout is the maximum time to wait for graceful shutdown of services.
	shutdownTimeout = 30 * time.Second

	// sessionCleanupInterval is how often expired sessions are purged.
	sessionCleanupInterval = time.Hour

	// avatarFetchTimeout bounds a single roster avatar download.
	avatarFetchTimeout = 20 * time.Second
)
