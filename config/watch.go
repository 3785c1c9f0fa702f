// watch.go — live configuration reload via filesystem notification
//
// Only the tunables that are safe to change mid-flight are applied on
// reload (cooldown today; the caller decides in its callback). Structural
// fields like worker count and strategy require a restart: worker contexts
// bind their backoff function at initialization and never rebind.

package config

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"actorruntime/debug"
)

// Watch re-loads the configuration whenever the file at path is rewritten
// and hands each successfully parsed result to onReload. Malformed or
// partially written files are logged and dropped — the previous
// configuration stays in force, a reload can never regress the scheduler
// into an invalid state.
//
// The parent directory is watched rather than the file itself so the usual
// editor/deployment pattern (write temp file, rename over target) keeps
// delivering events after the inode changes.
//
// The returned stop function releases the watcher; it is safe to call once.
func Watch(path string, onReload func(Config)) (func(), error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, err
	}

	target := filepath.Clean(path)
	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				cfg, err := Load(target)
				if err != nil {
					debug.DropError("CONFIG_RELOAD", err)
					continue
				}
				debug.DropMessage("CONFIG_RELOAD", "applied "+target)
				onReload(cfg)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				debug.DropError("CONFIG_WATCH", err)
			}
		}
	}()

	return func() { _ = watcher.Close() }, nil
}
