package lsp

import (
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// settleDelay is how long the watcher waits after the last file system event
// before rescanning, so a build writing hundreds of class files causes one
// reload.
const settleDelay = 200 * time.Millisecond

// watcher calls onChange when a class file or archive under root appears,
// changes or disappears. File system events trigger a rescan once they
// settle; the tree is also rescanned every interval, which is the only
// trigger when events are unavailable. Hidden directories are skipped.
type watcher struct {
	root     string
	interval time.Duration
	onChange func()
	stopCh   chan struct{}
	done     chan struct{}
	modTimes map[string]time.Time
	events   *fsnotify.Watcher
}

func newWatcher(root string, interval time.Duration, onChange func()) *watcher {
	return &watcher{
		root:     root,
		interval: interval,
		onChange: onChange,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
		modTimes: make(map[string]time.Time),
	}
}

func (w *watcher) Start() {
	w.scan()
	events, err := fsnotify.NewWatcher()
	if err != nil {
		log.Warningf("file events unavailable for %s, polling every %s: %s", w.root, w.interval, err.Error())
	} else {
		w.events = events
		w.watchTree(w.root)
	}
	go w.run()
}

// Stop ends the watch and waits for the watch loop to exit.
func (w *watcher) Stop() {
	close(w.stopCh)
	<-w.done
}

func (w *watcher) run() {
	defer close(w.done)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	settle := time.NewTimer(settleDelay)
	settle.Stop()
	defer settle.Stop()

	var (
		events <-chan fsnotify.Event
		errs   <-chan error
	)
	if w.events != nil {
		defer w.events.Close()
		events, errs = w.events.Events, w.events.Errors
	}

	for {
		select {
		case <-w.stopCh:
			return
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if ev.Has(fsnotify.Create) {
				w.watchTree(ev.Name)
			}
			settle.Reset(settleDelay)
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			log.Warningf("watching %s: %s", w.root, err.Error())
		case <-settle.C:
			w.rescan()
		case <-ticker.C:
			w.rescan()
		}
	}
}

func (w *watcher) rescan() {
	if w.scan() {
		w.onChange()
	}
}

// watchTree subscribes to events for every non-hidden directory under dir.
// Files are ignored.
func (w *watcher) watchTree(dir string) {
	filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if path != w.root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.events.Add(path); err != nil {
			log.Debugf("not watching %s: %s", path, err.Error())
		}
		return nil
	})
}

// scan records the current modification times and reports whether they
// differ from the previous scan.
func (w *watcher) scan() bool {
	changed := false
	current := make(map[string]bool)

	filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != w.root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !watched(path) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}

		current[path] = true
		if last, known := w.modTimes[path]; !known || !info.ModTime().Equal(last) {
			w.modTimes[path] = info.ModTime()
			changed = true
		}
		return nil
	})

	for path := range w.modTimes {
		if !current[path] {
			delete(w.modTimes, path)
			changed = true
		}
	}
	return changed
}

func watched(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".class", ".jar", ".zip":
		return true
	}
	return false
}
