package server

import (
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches the preview assets directory and reports changed files so
// connected rendering surfaces can be told to reload.
type Watcher struct {
	watcher  *fsnotify.Watcher
	rootDir  string
	onChange func(path string)
	done     chan struct{}
	debug    bool
}

// NewWatcher creates a recursive watcher over rootDir.
func NewWatcher(rootDir string, onChange func(string), debug bool) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher:  fsWatcher,
		rootDir:  rootDir,
		onChange: onChange,
		done:     make(chan struct{}),
		debug:    debug,
	}

	if err := w.addDirectoryRecursive(rootDir); err != nil {
		fsWatcher.Close()
		return nil, err
	}

	return w, nil
}

// addDirectoryRecursive adds a directory and all its subdirectories.
func (w *Watcher) addDirectoryRecursive(dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			if strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			if err := w.watcher.Add(path); err != nil {
				return err
			}
			if w.debug {
				log.Printf("[Watch] Added directory: %s", path)
			}
		}

		return nil
	})
}

// Start begins watching for file changes.
func (w *Watcher) Start() {
	go func() {
		for {
			select {
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}

				if event.Op&fsnotify.Write == fsnotify.Write || event.Op&fsnotify.Create == fsnotify.Create {
					relPath, err := filepath.Rel(w.rootDir, event.Name)
					if err != nil {
						relPath = event.Name
					}
					if w.debug {
						log.Printf("[Watch] File changed: %s", relPath)
					}
					w.onChange(relPath)
				}

			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				log.Printf("[Watch] Error: %v", err)

			case <-w.done:
				return
			}
		}
	}()
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	close(w.done)
	return w.watcher.Close()
}
