package pipeline

import (
	"context"
	"fmt"

	"github.com/raushankrgupta/resale-catalog-parser/catalog"
	"github.com/raushankrgupta/resale-catalog-parser/utils"
)

// Downloader fetches raw image bytes
type Downloader interface {
	Download(ctx context.Context, url string) ([]byte, error)
}

// ImagePublisher downloads a color's images into the run staging directory,
// uploads them as one batch and removes the staged files afterwards.
// The batch is uploaded even when no image could be staged.
type ImagePublisher struct {
	Source   Downloader
	Staging  *utils.Staging
	Uploader utils.Uploader
}

func (p *ImagePublisher) Publish(ctx context.Context, key catalog.ImageKey, refs []string) (int, error) {
	name := key.String()

	var paths []string
	defer func() { p.Staging.Remove(paths) }()

	for i, ref := range refs {
		data, err := p.Source.Download(ctx, ref)
		if err != nil {
			fmt.Printf("[Images] Download failed for %s: %v\n", ref, err)
			continue
		}
		path, err := p.Staging.SaveJPEG(fmt.Sprintf("%s_%d", name, i), data)
		if err != nil {
			fmt.Printf("[Images] %v\n", err)
			continue
		}
		paths = append(paths, path)
	}

	if len(paths) == 0 {
		fmt.Printf("[Images] No images of %s could be staged, uploading an empty batch\n", name)
	}
	if err := p.Uploader.Upload(ctx, name, paths); err != nil {
		return 0, err
	}
	return len(paths), nil
}
