package dashboard

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/patentminer/patentminer/internal/infrastructure/monitoring/logging"
	"github.com/patentminer/patentminer/pkg/errors"
)

// Watch reloads the store whenever a new export lands in the vault
// directory.  It blocks until the context is cancelled; callers run it in a
// goroutine.
func (s *Store) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "create vault watcher")
	}
	defer watcher.Close()

	if err := watcher.Add(s.vaultDir); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "watch vault directory")
	}
	s.logger.Info("watching vault directory", logging.String("dir", s.vaultDir))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			name := filepath.Base(event.Name)
			if !strings.HasPrefix(name, exportPrefix) || !strings.HasSuffix(name, exportSuffix) {
				continue
			}
			if err := s.LoadLatest(); err != nil {
				s.logger.Warn("vault reload failed", logging.String("file", name), logging.Err(err))
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("vault watcher error", logging.Err(err))
		}
	}
}
