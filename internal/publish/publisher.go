package publish

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/your-org/vodforge/pkg/storage/objectstore"
)

// Publisher uploads local transcode artifacts to durable object storage.
type Publisher struct {
	store  objectstore.Client
	logger *zap.Logger
}

// NewPublisher constructs a Publisher on top of an object store client.
func NewPublisher(store objectstore.Client, logger *zap.Logger) *Publisher {
	return &Publisher{store: store, logger: logger}
}

// PublishFile uploads one local file under the given object key and
// returns its public URL.
func (p *Publisher) PublishFile(ctx context.Context, localPath, key string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", localPath, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", localPath, err)
	}

	url, err := p.store.Put(ctx, key, f, info.Size(), ContentTypeFor(localPath))
	if err != nil {
		return "", fmt.Errorf("put %s: %w", key, err)
	}
	return url, nil
}

// PublishDirectory uploads every file under root, preserving its relative
// path beneath prefix, and returns a map of POSIX-style relative path to
// public URL. The walk order is not guaranteed and callers must not rely
// on it. The first failed upload aborts the call; objects uploaded before
// the failure are left in the store and their keys logged for an external
// sweep.
func (p *Publisher) PublishDirectory(ctx context.Context, root, prefix string) (map[string]string, error) {
	urls := map[string]string{}

	err := filepath.WalkDir(root, func(fpath string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(root, fpath)
		if err != nil {
			return fmt.Errorf("relativize %s: %w", fpath, err)
		}
		relKey := filepath.ToSlash(rel)

		url, err := p.PublishFile(ctx, fpath, path.Join(prefix, relKey))
		if err != nil {
			return err
		}
		urls[relKey] = url
		return nil
	})
	if err != nil {
		p.logOrphans(prefix, urls)
		return nil, fmt.Errorf("publish directory %s: %w", root, err)
	}
	return urls, nil
}

// logOrphans records the keys already uploaded by an aborted directory
// publish. There is no rollback; a reconciliation sweep picks these up.
func (p *Publisher) logOrphans(prefix string, uploaded map[string]string) {
	if len(uploaded) == 0 {
		return
	}
	keys := make([]string, 0, len(uploaded))
	for rel := range uploaded {
		keys = append(keys, path.Join(prefix, rel))
	}
	p.logger.Warn("directory publish aborted, uploaded objects orphaned",
		zap.String("prefix", prefix),
		zap.Strings("orphaned_keys", keys))
}
