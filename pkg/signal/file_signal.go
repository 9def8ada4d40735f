package signal

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"voice-coach-be/internal/pkg/logger"

	"github.com/fsnotify/fsnotify"
)

const markerSuffix = ".updated"

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// FileSignal uses one marker file per session in a shared directory, so the
// upload server and the agent can run as separate processes on one host.
// The marker file is the signal; fsnotify only wakes watchers early.
type FileSignal struct {
	dir     string
	watcher *fsnotify.Watcher
	wakers  *wakers
	logger  logger.ILogger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewFileSignal(dir string, log logger.ILogger) (*FileSignal, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create marker dir: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &FileSignal{
		dir:     dir,
		watcher: watcher,
		wakers:  newWakers(),
		logger:  log,
		ctx:     ctx,
		cancel:  cancel,
	}

	s.wg.Add(1)
	go s.eventLoop()

	return s, nil
}

// markerKey maps a session id onto a safe file name stem.
func markerKey(sessionID string) string {
	return unsafeNameChars.ReplaceAllString(sessionID, "_")
}

func (s *FileSignal) markerPath(sessionID string) string {
	return filepath.Join(s.dir, markerKey(sessionID)+markerSuffix)
}

func (s *FileSignal) eventLoop() {
	defer s.wg.Done()

	for {
		select {
		case <-s.ctx.Done():
			return

		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			name := filepath.Base(event.Name)
			if !strings.HasSuffix(name, markerSuffix) {
				continue
			}
			s.wakers.wake(strings.TrimSuffix(name, markerSuffix))

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn("FileSignal", "Watcher error", map[string]interface{}{"error": err.Error()})
		}
	}
}

// Publish writes the session's marker file.
func (s *FileSignal) Publish(ctx context.Context, sessionID string) error {
	stamp := []byte(time.Now().UTC().Format(time.RFC3339Nano))
	if err := os.WriteFile(s.markerPath(sessionID), stamp, 0o644); err != nil {
		return fmt.Errorf("failed to write marker for %s: %w", sessionID, err)
	}
	return nil
}

// Pending consumes the marker if present.
func (s *FileSignal) Pending(ctx context.Context, sessionID string) (bool, error) {
	err := os.Remove(s.markerPath(sessionID))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("failed to clear marker for %s: %w", sessionID, err)
	}
}

func (s *FileSignal) Watch(sessionID string) (<-chan struct{}, func()) {
	return s.wakers.watch(markerKey(sessionID))
}

func (s *FileSignal) Close() error {
	s.cancel()
	s.wg.Wait()
	return s.watcher.Close()
}
