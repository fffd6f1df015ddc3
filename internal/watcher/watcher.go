// Package watcher reports debounced changes to files, such as a scenario
// being edited while a simulation is running.
package watcher

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// FileWatcher watches files for changes and sends their paths on a channel.
// Parent directories are watched so that editors which save by renaming a
// temporary file over the original are still noticed.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	log      *zap.Logger
	mu       sync.Mutex
	files    map[string]struct{}
	dirs     map[string]struct{}
	debounce time.Duration
	timers   map[string]*time.Timer
	changes  chan string
}

// NewFileWatcher creates a new file watcher. A nil logger disables logging.
func NewFileWatcher(debounce time.Duration, log *zap.Logger) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &FileWatcher{
		watcher:  watcher,
		log:      log,
		files:    make(map[string]struct{}),
		dirs:     make(map[string]struct{}),
		debounce: debounce,
		timers:   make(map[string]*time.Timer),
		changes:  make(chan string, 16),
	}, nil
}

// Watch starts watching the specified files.
func (fw *FileWatcher) Watch(files ...string) error {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	for _, file := range files {
		absPath, err := filepath.Abs(file)
		if err != nil {
			return fmt.Errorf("failed to resolve path %s: %w", file, err)
		}

		dir := filepath.Dir(absPath)
		if _, ok := fw.dirs[dir]; !ok {
			if err := fw.watcher.Add(dir); err != nil {
				return fmt.Errorf("failed to watch %s: %w", dir, err)
			}
			fw.dirs[dir] = struct{}{}
		}
		fw.files[absPath] = struct{}{}
		fw.log.Debug("watching file", zap.String("path", absPath))
	}

	return nil
}

// Changes delivers the absolute path of each changed file once its debounce
// period has passed.
func (fw *FileWatcher) Changes() <-chan string {
	return fw.changes
}

// Start begins watching for file changes. It returns immediately; the
// watch loop ends when Close is called.
func (fw *FileWatcher) Start() {
	go func() {
		for {
			select {
			case event, ok := <-fw.watcher.Events:
				if !ok {
					return
				}

				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
					fw.handleFileChange(filepath.Clean(event.Name))
				}

			case err, ok := <-fw.watcher.Errors:
				if !ok {
					return
				}
				fw.log.Warn("watcher error", zap.Error(err))
			}
		}
	}()
}

// handleFileChange handles a file change event with debouncing.
func (fw *FileWatcher) handleFileChange(filePath string) {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if _, ok := fw.files[filePath]; !ok {
		return
	}

	if timer, ok := fw.timers[filePath]; ok {
		timer.Stop()
	}

	fw.timers[filePath] = time.AfterFunc(fw.debounce, func() {
		select {
		case fw.changes <- filePath:
		default:
			// A notification is already pending.
		}
	})
}

// Close stops the watcher and any pending notifications.
func (fw *FileWatcher) Close() error {
	fw.mu.Lock()
	for _, timer := range fw.timers {
		timer.Stop()
	}
	fw.mu.Unlock()
	return fw.watcher.Close()
}

// RemoveAll removes all watched files.
func (fw *FileWatcher) RemoveAll() error {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	for dir := range fw.dirs {
		if err := fw.watcher.Remove(dir); err != nil {
			return err
		}
	}

	for _, timer := range fw.timers {
		timer.Stop()
	}
	fw.files = make(map[string]struct{})
	fw.dirs = make(map[string]struct{})
	fw.timers = make(map[string]*time.Timer)
	return nil
}
