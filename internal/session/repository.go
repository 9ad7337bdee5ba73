package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bassista/go_sole/internal/logger"
	"github.com/fsnotify/fsnotify"
	"github.com/go-playground/validator/v10"
)

// Saver persists a session document.
type Saver interface {
	Save(ctx context.Context, doc *Document) error
}

// Repository abstracts persistence and watching of the session file.
type Repository interface {
	Saver
	Load(ctx context.Context) (*Document, error)
	StartWatcher(ctx context.Context, target WatchTarget) error
}

// WatchTarget is what the watcher callback needs from the live session.
type WatchTarget interface {
	GetLastUpdate() int64
	IsDirty() bool
	Snapshot() Document
	Replace(doc Document)
}

// FileRepository stores the session as a JSON file.
type FileRepository struct {
	path      string
	dir       string
	base      string
	validator *validator.Validate
	debounce  time.Duration
	mu        sync.Mutex
}

// NewFileRepository creates a repository for the given file path.
func NewFileRepository(path string) (*FileRepository, error) {
	if path == "" {
		return nil, errors.New("session file path is required")
	}

	dir := filepath.Dir(path)
	if dir == "" {
		dir = "."
	}
	return &FileRepository{
		path:      path,
		dir:       dir,
		base:      filepath.Base(path),
		validator: validator.New(),
		debounce:  200 * time.Millisecond,
	}, nil
}

// Load reads, decodes and validates the file. An empty file is an empty
// session.
func (r *FileRepository) Load(ctx context.Context) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	raw, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("read session file: %w", err)
	}
	var doc Document
	if len(raw) == 0 {
		return &doc, nil
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode session file: %w", err)
	}
	if doc.User != nil {
		doc.User.ApplyDefaults()
	}
	if err := r.validator.Struct(&doc); err != nil {
		return nil, fmt.Errorf("validate session file: %w", err)
	}
	return &doc, nil
}

// Save validates and writes the document atomically (temp file + rename).
func (r *FileRepository) Save(ctx context.Context, doc *Document) error {
	if doc == nil {
		return errors.New("document is nil")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := r.validator.Struct(doc); err != nil {
		return fmt.Errorf("validate before save: %w", err)
	}

	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	tmpFile, err := os.CreateTemp(r.dir, r.base+".tmp-")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		tmpFile.Close()
		os.Remove(tmpFile.Name())
	}()

	if _, err := tmpFile.Write(payload); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	// The session holds a bearer token.
	if err := os.Chmod(tmpFile.Name(), 0o600); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpFile.Name(), r.path); err != nil {
		return fmt.Errorf("replace session file: %w", err)
	}
	return nil
}

// StartWatcher reloads the session when another process rewrites the file.
// It watches the parent directory so temp+rename replacements are seen, and
// debounces bursts of events into one reload. Cancel ctx to stop it.
func (r *FileRepository) StartWatcher(ctx context.Context, target WatchTarget) error {
	onChange := r.MakeWatcherCallback(target)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(r.dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch dir: %w", err)
	}

	go func() {
		defer watcher.Close()
		log := logger.WithComponent("session-watch")

		var debounce *time.Timer
		schedule := func() {
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(r.debounce, onChange)
		}

		for {
			select {
			case <-ctx.Done():
				if debounce != nil {
					debounce.Stop()
				}
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(event.Name) != r.base {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Chmod|fsnotify.Remove|fsnotify.Rename) != 0 {
					log.Tracef("session file event: %s", event.Op)
					schedule()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warnf("watcher error: %v", err)
			}
		}
	}()

	return nil
}

// MakeWatcherCallback returns the reload step run after a file change. The
// disk copy wins only when it is newer and the live session has no
// unsaved changes.
func (r *FileRepository) MakeWatcherCallback(target WatchTarget) func() {
	return func() {
		log := logger.WithComponent("session-watch")

		diskDoc, err := r.Load(context.Background())
		if err != nil {
			log.Warnf("watch reload failed: %v", err)
			return
		}
		liveLastUpdate := target.GetLastUpdate()
		diskLastUpdate := diskDoc.Metadata.LastUpdate

		if diskLastUpdate < liveLastUpdate {
			log.Debugf("disk session is older than live session (%d < %d)", diskLastUpdate, liveLastUpdate)
			return
		}
		if target.IsDirty() {
			log.Warn("disk session is newer but live session is dirty; skipping reload")
			return
		}
		if diskLastUpdate == liveLastUpdate {
			live := target.Snapshot()
			if AreDocumentsEqual(&live, diskDoc) {
				return
			}
		}
		target.Replace(*diskDoc)
		log.Info("session reloaded from newer disk version")
	}
}
