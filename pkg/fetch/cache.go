// Package fetch resolves logical asset names to local files, downloading
// and caching on first use. Sources may be anything go-getter understands:
// plain HTTP(S) URLs, local paths, or archive URLs.
package fetch

import (
	"context"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	getter "github.com/hashicorp/go-getter"
	"go.uber.org/zap"
)

// ErrUnknownAsset flags a Fetch of a name no source was registered for.
var ErrUnknownAsset = errors.New("unknown asset")

// Cache maps logical asset names to cached local files.
type Cache struct {
	dir     string
	sources map[string]string
	log     *zap.SugaredLogger
}

// New creates a cache rooted at dir. The directory is created on first
// download. A nil logger silences the cache.
func New(dir string, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{
		dir:     dir,
		sources: make(map[string]string),
		log:     logger.Sugar(),
	}
}

// Register associates a logical name with a source URL. Registering the
// same name with a different source drops the cached file so the next
// Fetch downloads from the new source.
func (c *Cache) Register(name, source string) {
	if old, ok := c.sources[name]; ok && old != source {
		os.Remove(filepath.Join(c.dir, name))
	}
	c.sources[name] = source
}

// Names returns the registered asset names.
func (c *Cache) Names() []string {
	names := make([]string, 0, len(c.sources))
	for n := range c.sources {
		names = append(names, n)
	}
	return names
}

// Fetch resolves name to a local path, downloading on the first request
// and reusing the cached file thereafter. The context bounds the download.
func (c *Cache) Fetch(ctx context.Context, name string) (string, error) {
	source, ok := c.sources[name]
	if !ok {
		return "", errors.Wrapf(ErrUnknownAsset, "%q", name)
	}

	local := filepath.Join(c.dir, name)
	if _, err := os.Stat(local); err == nil {
		c.log.Debugw("asset cache hit", "asset", name, "path", local)
		return local, nil
	}

	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return "", errors.Wrapf(err, "creating cache directory %s", c.dir)
	}

	c.log.Infow("fetching asset", "asset", name, "source", source)
	client := &getter.Client{
		Ctx:  ctx,
		Src:  source,
		Dst:  local,
		Mode: getter.ClientModeFile,
		// The default file getter symlinks local sources; the cache must
		// hold real copies that outlive the source.
		Getters: map[string]getter.Getter{
			"file":  &getter.FileGetter{Copy: true},
			"http":  &getter.HttpGetter{},
			"https": &getter.HttpGetter{},
		},
	}
	if err := client.Get(); err != nil {
		// Leave no partial file behind so the next Fetch retries cleanly.
		os.Remove(local)
		return "", errors.Wrapf(err, "fetching asset %q from %s", name, source)
	}

	c.log.Infow("asset cached", "asset", name, "path", local)
	return local, nil
}
