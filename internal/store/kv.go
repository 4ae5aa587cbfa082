package store

import (
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"github.com/reachlyapp/reachly-server/internal/domain"
)

// KV wraps a Badger database holding per-user collections.
type KV struct {
	db     *badger.DB
	logger *slog.Logger

	Wishlist      *Entity[domain.WishlistEntry]
	Notifications *Entity[domain.Notification]
}

// OpenKV opens (or creates) the badger database at path.
func OpenKV(path string, logger *slog.Logger) (*KV, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	opts.SyncWrites = true
	opts.CompactL0OnClose = true

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	kv := &KV{db: db, logger: logger}

	kv.Wishlist = NewEntity[domain.WishlistEntry](kv, "wish:").
		WithIndex("user", func(w *domain.WishlistEntry) []string { return []string{w.UserID} }).
		WithIndex("influencer", func(w *domain.WishlistEntry) []string { return []string{w.InfluencerID} })

	kv.Notifications = NewEntity[domain.Notification](kv, "ntf:").
		WithIndex("user", func(n *domain.Notification) []string { return []string{n.UserID} })

	if logger != nil {
		logger.Info("Badger database opened", "path", path)
	}

	return kv, nil
}

// Close flushes and closes the database.
func (kv *KV) Close() error {
	if kv.logger != nil {
		kv.logger.Info("Closing badger database")
	}
	return kv.db.Close()
}

// Size returns the on-disk LSM and value log sizes in bytes.
func (kv *KV) Size() (lsm, vlog int64) {
	return kv.db.Size()
}
