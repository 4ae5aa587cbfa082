package images

import (
	"bytes"
	"fmt"
	"image"
	"log/slog"
	"slices"

	domainerrors "github.com/reachlyapp/reachly-server/internal/errors"
)

// Upload limits.
const (
	MaxAvatarBytes     = 5 << 20
	MaxAvatarDimension = 4096
)

// SupportedFormats are the image.Decode format names accepted as avatars.
var SupportedFormats = []string{"jpeg", "png", "gif", "webp"}

// Validation errors returned by Processor.Process.
var (
	ErrEmptyImage        = domainerrors.Validation("image is empty")
	ErrImageTooLarge     = domainerrors.Validationf("image exceeds %d bytes", MaxAvatarBytes)
	ErrUnsupportedFormat = domainerrors.Validation("image format must be jpeg, png, gif or webp")
	ErrImageDimensions   = domainerrors.Validationf("image edges must be between 1 and %d pixels", MaxAvatarDimension)
)

// Result describes a stored avatar.
type Result struct {
	Path     string
	Format   string
	Width    int
	Height   int
	Size     int64
	Hash     string
	BlurHash string
}

// Processor validates uploaded avatars, stores them and computes placeholders.
type Processor struct {
	storage *Storage
	logger  *slog.Logger
}

// NewProcessor creates a Processor writing into storage.
func NewProcessor(storage *Storage, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Processor{storage: storage, logger: logger}
}

// Storage returns the underlying image storage.
func (p *Processor) Storage() *Storage { return p.storage }

// Process validates data as an avatar for id and stores it. The header is
// checked before the full decode so oversized images are rejected cheaply.
func (p *Processor) Process(id string, data []byte) (*Result, error) {
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}
	if len(data) > MaxAvatarBytes {
		return nil, ErrImageTooLarge
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil || !slices.Contains(SupportedFormats, format) {
		return nil, ErrUnsupportedFormat
	}
	if cfg.Width < 1 || cfg.Height < 1 || cfg.Width > MaxAvatarDimension || cfg.Height > MaxAvatarDimension {
		return nil, ErrImageDimensions
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, ErrUnsupportedFormat.WithCause(err)
	}

	// A placeholder is optional; the avatar is still usable without one.
	hash, err := BlurHash(img)
	if err != nil {
		p.logger.Warn("failed to compute blurhash", "id", id, "error", err)
		hash = ""
	}

	if err := p.storage.Save(id, data); err != nil {
		return nil, fmt.Errorf("store avatar: %w", err)
	}

	return &Result{
		Path:     p.storage.Path(id),
		Format:   format,
		Width:    cfg.Width,
		Height:   cfg.Height,
		Size:     int64(len(data)),
		Hash:     HashBytes(data),
		BlurHash: hash,
	}, nil
}
