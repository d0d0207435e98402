package storage

import (
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reports external changes to one local file. It watches the
// parent directory so that editors which replace files by rename are
// noticed too.
type Watcher struct {
	fs      *fsnotify.Watcher
	path    string
	changes chan string

	mu         sync.Mutex
	quietUntil time.Time

	done chan struct{}
	wg   sync.WaitGroup
}

// Watch starts watching path.
func Watch(path string) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	w := &Watcher{
		fs:      fsw,
		path:    abs,
		changes: make(chan string, 1),
		done:    make(chan struct{}),
	}
	w.wg.Add(1)
	go w.loop()
	return w, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string { return w.path }

// Changes delivers the watched path after each external write. Bursts are
// coalesced into one notification. The channel is closed by Close.
func (w *Watcher) Changes() <-chan string { return w.changes }

// Quiet suppresses notifications for d, covering the editor's own saves.
func (w *Watcher) Quiet(d time.Duration) {
	w.mu.Lock()
	w.quietUntil = time.Now().Add(d)
	w.mu.Unlock()
}

func (w *Watcher) quiet() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return time.Now().Before(w.quietUntil)
}

func (w *Watcher) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if w.quiet() {
				continue
			}
			select {
			case w.changes <- w.path:
			default:
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			log.Printf("[watcher] %s: %v", w.path, err)
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	select {
	case <-w.done:
		return nil
	default:
	}
	close(w.done)
	w.wg.Wait()
	close(w.changes)
	return w.fs.Close()
}
