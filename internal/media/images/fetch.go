package images

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const fetchTimeout = 30 * time.Second

// Fetcher downloads remote avatars, such as the avatar_url of roster entries,
// and runs them through a Processor.
type Fetcher struct {
	client    *http.Client
	processor *Processor
	logger    *slog.Logger
}

// NewFetcher creates a Fetcher. A nil client gets a 30s timeout default.
func NewFetcher(client *http.Client, processor *Processor, logger *slog.Logger) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: fetchTimeout}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Fetcher{client: client, processor: processor, logger: logger}
}

// Fetch downloads url and stores it as the avatar for id.
func (f *Fetcher) Fetch(ctx context.Context, id, url string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "image/*")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch avatar: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch avatar: status %d", resp.StatusCode)
	}

	// One byte over the limit lets Process report the size error.
	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxAvatarBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read avatar: %w", err)
	}

	result, err := f.processor.Process(id, data)
	if err != nil {
		return nil, err
	}

	f.logger.Info("downloaded avatar",
		"id", id,
		"url", url,
		"size", result.Size,
		"width", result.Width,
		"height", result.Height,
	)
	return result, nil
}
