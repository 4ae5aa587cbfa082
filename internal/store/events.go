package store

import (
	"context"

	"github.com/reachlyapp/reachly-server/internal/domain"
)

// EventEmitter broadcasts change events without the store depending on the
// transport that delivers them.
type EventEmitter interface {
	Emit(event any)
}

// NoopEmitter discards events.
type NoopEmitter struct{}

// Emit implements EventEmitter.
func (NoopEmitter) Emit(any) {}

// NewNoopEmitter creates a new no-op emitter for testing.
func NewNoopEmitter() EventEmitter { return NoopEmitter{} }

// SearchIndexer keeps the full-text index in step with influencer writes.
type SearchIndexer interface {
	IndexInfluencer(ctx context.Context, inf *domain.Influencer) error
	DeleteInfluencer(ctx context.Context, influencerID string) error
}

// NoopSearchIndexer ignores index updates.
type NoopSearchIndexer struct{}

// IndexInfluencer is a no-op.
func (NoopSearchIndexer) IndexInfluencer(context.Context, *domain.Influencer) error { return nil }

// DeleteInfluencer is a no-op.
func (NoopSearchIndexer) DeleteInfluencer(context.Context, string) error { return nil }

// NewNoopSearchIndexer creates a new no-op search indexer for testing.
func NewNoopSearchIndexer() SearchIndexer { return NoopSearchIndexer{} }
