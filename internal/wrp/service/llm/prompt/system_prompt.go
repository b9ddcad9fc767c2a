package prompt

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/kiosk404/warp/pkg/logger"
)

const defaultDebounce = 500 * time.Millisecond

// FileLoader serves the content of a system prompt file and reloads it when
// the file changes on disk. The parent directory is watched so editors that
// replace the file on save are picked up as well.
type FileLoader struct {
	path     string
	debounce time.Duration

	mu      sync.RWMutex
	content string
	watcher *fsnotify.Watcher
	timer   *time.Timer
	closeCh chan struct{}
	closed  bool
}

// NewFileLoader reads path and starts watching it. An empty path returns
// nil, which is a valid PromptSource yielding no prompt.
func NewFileLoader(path string) (*FileLoader, error) {
	if path == "" {
		return nil, nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve system prompt path %q: %w", path, err)
	}
	if _, err := os.Stat(abs); err != nil {
		return nil, fmt.Errorf("system prompt file: %w", err)
	}

	fl := &FileLoader{
		path:     abs,
		debounce: defaultDebounce,
		closeCh:  make(chan struct{}),
	}
	fl.reload()

	if err := fl.startWatcher(); err != nil {
		logger.Warn("[Prompt] failed to start watcher: %v, system prompt loaded statically", err)
	}
	return fl, nil
}

// SystemPrompt returns the current file content, trimmed.
func (fl *FileLoader) SystemPrompt() string {
	if fl == nil {
		return ""
	}
	fl.mu.RLock()
	defer fl.mu.RUnlock()
	return fl.content
}

// Path returns the absolute path being served.
func (fl *FileLoader) Path() string {
	if fl == nil {
		return ""
	}
	return fl.path
}

// Close stops the watcher.
func (fl *FileLoader) Close() {
	if fl == nil {
		return
	}
	fl.mu.Lock()
	defer fl.mu.Unlock()
	if fl.closed {
		return
	}
	fl.closed = true
	close(fl.closeCh)
	if fl.timer != nil {
		fl.timer.Stop()
	}
	if fl.watcher != nil {
		_ = fl.watcher.Close()
	}
}

func (fl *FileLoader) reload() {
	data, err := os.ReadFile(fl.path)
	if err != nil {
		// Keep the last good prompt while the file is being replaced.
		logger.Debug("[Prompt] read %s: %v", fl.path, err)
		return
	}
	content := strings.TrimSpace(string(data))

	fl.mu.Lock()
	changed := content != fl.content
	fl.content = content
	fl.mu.Unlock()

	if changed {
		logger.Info("[Prompt] loaded system prompt from %s (%d bytes)", fl.path, len(content))
	}
}

func (fl *FileLoader) startWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(fl.path)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch %q: %w", filepath.Dir(fl.path), err)
	}
	fl.watcher = watcher

	go fl.watchLoop()
	return nil
}

func (fl *FileLoader) watchLoop() {
	for {
		select {
		case event, ok := <-fl.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != fl.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				fl.trigger()
			}
		case err, ok := <-fl.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("[Prompt] watcher error: %v", err)
		case <-fl.closeCh:
			return
		}
	}
}

// trigger schedules a reload once events stop arriving for the debounce
// interval.
func (fl *FileLoader) trigger() {
	fl.mu.Lock()
	defer fl.mu.Unlock()
	if fl.closed {
		return
	}
	if fl.timer != nil {
		fl.timer.Stop()
	}
	fl.timer = time.AfterFunc(fl.debounce, fl.reload)
}
