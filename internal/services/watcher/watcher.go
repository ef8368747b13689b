// Package watcher reports external writes to the cache database file, so a
// second process refreshing the same cache shows up in a running browser.
package watcher

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// EventType defines the type of watcher event.
type EventType int

const (
	EventFileChanged EventType = iota
	EventError
)

// Event represents a watcher event.
type Event struct {
	Type  EventType
	Path  string
	Error error
}

// Service watches the database file for changes made outside this process.
type Service struct {
	mu            sync.Mutex
	filePath      string
	watcher       *fsnotify.Watcher
	eventChan     chan Event
	stopChan      chan struct{}
	debounceTimer *time.Timer
}

// New starts watching the directory containing filePath. Watching the
// directory rather than the file catches creation and deletion too.
func New(filePath string) (*Service, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	s := &Service{
		filePath:  filePath,
		watcher:   watcher,
		eventChan: make(chan Event, 100),
		stopChan:  make(chan struct{}),
	}

	if err := watcher.Add(filepath.Dir(filePath)); err != nil {
		_ = watcher.Close()
		return nil, err
	}

	go s.watchLoop()
	return s, nil
}

// Events returns the channel of watcher events.
func (s *Service) Events() <-chan Event {
	return s.eventChan
}

// watchLoop handles file system events with debouncing.
func (s *Service) watchLoop() {
	const debounceInterval = 100 * time.Millisecond

	base := filepath.Base(s.filePath)

	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}

			// The sqlite sidecar files (-wal, -shm) share the database's
			// base name, and a write can land in any of them.
			if !strings.HasPrefix(filepath.Base(event.Name), base) {
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				s.mu.Lock()
				if s.debounceTimer != nil {
					s.debounceTimer.Stop()
				}
				s.debounceTimer = time.AfterFunc(debounceInterval, func() {
					s.sendEvent(Event{Type: EventFileChanged, Path: s.filePath})
				})
				s.mu.Unlock()
			}

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.sendEvent(Event{Type: EventError, Error: err})

		case <-s.stopChan:
			return
		}
	}
}

func (s *Service) sendEvent(event Event) {
	select {
	case s.eventChan <- event:
	default:
		// Channel full, drop oldest event
		select {
		case <-s.eventChan:
		default:
		}
		select {
		case s.eventChan <- event:
		default:
		}
	}
}

// Close stops the watcher and cleans up resources.
func (s *Service) Close() error {
	close(s.stopChan)

	s.mu.Lock()
	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
	}
	s.mu.Unlock()

	return s.watcher.Close()
}
