/* watcher.go
 * Contains the logic used to load event data from a local json file and reload it whenever the file changes. Used to
 * serve a saved snapshot when upstream is unavailable
 * Authors: Zachary Bower
 */

package external

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"pickleball-brackets/api/bracket"

	"github.com/fsnotify/fsnotify"
)

// LoadSnapshotFile reads and decodes a snapshot file. The file holds either an upstream envelope or bare event data
// Preconditions: Receives path of the json file
// Postconditions: Returns the decoded snapshot or an error
func LoadSnapshotFile(path string) (*bracket.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading snapshot file: %w", err)
	}

	if eventData, err := DecodeEnvelope(data); err == nil {
		data = eventData
	}
	snapshot, err := bracket.DecodeSnapshot(data)
	if err != nil {
		return nil, fmt.Errorf("error decoding snapshot file %s: %w", path, err)
	}
	return snapshot, nil
}

// WatchSnapshotFile calls onLoad with the snapshot in path now and every time the file is written
// Preconditions: Receives context, path of the json file and the callback
// Postconditions: Blocks until ctx is done and returns ctx.Err(), or returns an error if the first load or the watcher
// fails. Invalid rewrites of the file are logged and skipped
func WatchSnapshotFile(ctx context.Context, path string, onLoad func(*bracket.Snapshot)) (err error) {
	snapshot, err := LoadSnapshotFile(path)
	if err != nil {
		return err
	}
	onLoad(snapshot)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() {
		if closeErr := watcher.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	// Watch the directory so editors that replace the file by renaming are seen too
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to watch snapshot file: %w", err)
	}
	target := filepath.Clean(path)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target || (!event.Has(fsnotify.Write) && !event.Has(fsnotify.Create)) {
				continue
			}
			snapshot, err := LoadSnapshotFile(path)
			if err != nil {
				log.Printf("skipping snapshot file change: %v", err)
				continue
			}
			log.Printf("reloaded snapshot from %s", path)
			onLoad(snapshot)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("snapshot file watcher error: %v", err)
		}
	}
}
