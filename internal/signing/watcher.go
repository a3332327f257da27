package signing

import (
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounce coalesces the bursts of events editors and atomic-rename writes
// produce into a single reload.
const debounce = time.Millisecond * 500

// watchKeyFile watches the directory containing the key file and invokes
// callback after writes settle. The directory is watched rather than the
// file itself so atomic replaces (write temp, rename over) stay visible.
func watchKeyFile(path string, callback func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return err
	}

	go handleEvents(watcher, filepath.Base(path), callback)
	return nil
}

func handleEvents(watcher *fsnotify.Watcher, filename string, callback func()) {
	var timer *time.Timer = nil
	var settled <-chan time.Time = nil
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filename {
				continue
			}
			if !event.Has(fsnotify.Write | fsnotify.Remove | fsnotify.Create) {
				continue
			}
			if timer != nil {
				timer.Reset(debounce)
			} else {
				timer = time.NewTimer(debounce)
				settled = timer.C
			}

		case <-settled:
			settled = nil
			timer = nil
			callback()

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Printf("signing key watcher error: %v\n", err)
		}
	}
}
