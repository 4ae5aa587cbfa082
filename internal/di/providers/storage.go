package providers

import (
	"net/http"

	"github.com/samber/do/v2"

	"github.com/reachlyapp/reachly-server/internal/config"
	"github.com/reachlyapp/reachly-server/internal/logger"
	"github.com/reachlyapp/reachly-server/internal/media/images"
)

// ProvideAvatarStorage provides on-disk storage for influencer avatars.
func ProvideAvatarStorage(i do.Injector) (*images.Storage, error) {
	cfg := do.MustInvoke[*config.Config](i)

	return images.NewStorageWithSubdir(cfg.Data.BasePath, "avatars")
}

// ProvideImageProcessor provides the avatar processor.
func ProvideImageProcessor(i do.Injector) (*images.Processor, error) {
	storage := do.MustInvoke[*images.Storage](i)
	log := do.MustInvoke[*logger.Logger](i)

	return images.NewProcessor(storage, log.Logger), nil
}

// ProvideImageFetcher provides the downloader for roster avatar URLs.
func ProvideImageFetcher(i do.Injector) (*images.Fetcher, error) {
	processor := do.MustInvoke[*images.Processor](i)
	log := do.MustInvoke[*logger.Logger](i)

	client := &http.Client{Timeout: avatarFetchTimeout}
	return images.NewFetcher(client, processor, log.Logger), nil
}
