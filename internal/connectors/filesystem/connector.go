// Package filesystem reads news files from a local directory tree and
// watches it for changes.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/newsrag/internal/core/domain"
	"github.com/custodia-labs/newsrag/internal/core/ports/driven"
	"github.com/custodia-labs/newsrag/internal/logger"
)

// Ensure Connector implements the interface.
var _ driven.Connector = (*Connector)(nil)

const (
	// DefaultDebounce is how long a file must stay quiet before a write is reported.
	DefaultDebounce = 250 * time.Millisecond

	// MaxFileSize is the largest file read into memory.
	MaxFileSize = 64 << 20
)

// Option configures the connector.
type Option func(*Connector)

// WithDebounce sets the quiet period used to coalesce bursts of writes to
// one file. Zero reports every event as it arrives.
func WithDebounce(d time.Duration) Option {
	return func(c *Connector) {
		c.debounce = d
	}
}

// Connector reads files under a root directory. The root may also be a
// single file. Hidden files and directories below the root are skipped.
type Connector struct {
	rootPath string
	debounce time.Duration

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	closed  bool
}

// New creates a filesystem connector rooted at rootPath.
func New(rootPath string, opts ...Option) *Connector {
	c := &Connector{
		rootPath: rootPath,
		debounce: DefaultDebounce,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Root returns the path the connector reads from.
func (c *Connector) Root() string {
	return c.rootPath
}

// Scan walks the root and emits every visible file. Per-file failures are
// sent on the error channel and the walk continues; callers must drain
// both channels. Both are closed when the walk ends.
func (c *Connector) Scan(ctx context.Context) (<-chan domain.RawDocument, <-chan error) {
	docs := make(chan domain.RawDocument)
	errs := make(chan error, 1)

	go func() {
		defer close(docs)
		defer close(errs)

		sendErr := func(err error) bool {
			select {
			case errs <- err:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if c.isClosed() {
			sendErr(domain.ErrConnectorClosed)
			return
		}

		walkErr := filepath.WalkDir(c.rootPath, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if path == c.rootPath {
					return err
				}
				if !sendErr(fmt.Errorf("walk %s: %w", path, err)) {
					return ctx.Err()
				}
				return nil
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if path != c.rootPath && c.hidden(path) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return nil
			}

			doc, err := readFile(path)
			if err != nil {
				if !sendErr(err) {
					return ctx.Err()
				}
				return nil
			}

			select {
			case docs <- *doc:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		if walkErr != nil && !errors.Is(walkErr, context.Canceled) && !errors.Is(walkErr, context.DeadlineExceeded) {
			sendErr(fmt.Errorf("scan %s: %w", c.rootPath, walkErr))
		}
	}()

	return docs, errs
}

// Watch reports file changes under the root until ctx is cancelled or the
// connector is closed. New subdirectories are watched as they appear.
func (c *Connector) Watch(ctx context.Context) (<-chan domain.RawDocumentChange, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, domain.ErrConnectorClosed
	}
	if c.watcher != nil {
		return nil, fmt.Errorf("watch %s: already watching", c.rootPath)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := addTree(watcher, c.rootPath, c.hidden); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", c.rootPath, err)
	}
	c.watcher = watcher

	changes := make(chan domain.RawDocumentChange)
	go c.watchLoop(ctx, watcher, changes)

	logger.Debug("Watching %s", c.rootPath)
	return changes, nil
}

func (c *Connector) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, changes chan<- domain.RawDocumentChange) {
	defer close(changes)

	pending := make(map[string]domain.ChangeType)
	var flush <-chan time.Time

	send := func(change *domain.RawDocumentChange) bool {
		if change == nil {
			return true
		}
		select {
		case changes <- *change:
			return true
		case <-ctx.Done():
			return false
		}
	}

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if c.debounce > 0 && isWrite(event) {
				if c.watchIfDir(event.Name) || c.hidden(event.Name) {
					continue
				}
				if _, seen := pending[event.Name]; !seen {
					pending[event.Name] = changeTypeOf(event)
				}
				flush = time.After(c.debounce)
				continue
			}
			if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				delete(pending, event.Name)
			}
			if !send(c.handleFsEvent(event)) {
				return
			}

		case <-flush:
			flush = nil
			paths := make([]string, 0, len(pending))
			for path := range pending {
				paths = append(paths, path)
			}
			sort.Strings(paths)
			for _, path := range paths {
				if !send(c.readChange(path, pending[path])) {
					return
				}
			}
			pending = make(map[string]domain.ChangeType)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("Watcher error on %s: %v", c.rootPath, err)
		}
	}
}

// handleFsEvent converts a single fsnotify event into a change. It returns
// nil for events that do not concern a visible file.
func (c *Connector) handleFsEvent(event fsnotify.Event) *domain.RawDocumentChange {
	if c.hidden(event.Name) {
		return nil
	}

	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return &domain.RawDocumentChange{
			Type: domain.ChangeDeleted,
			Document: domain.RawDocument{
				URI:      event.Name,
				MIMEType: detectMIMEType(event.Name),
			},
		}
	case isWrite(event):
		if c.watchIfDir(event.Name) {
			return nil
		}
		return c.readChange(event.Name, changeTypeOf(event))
	default:
		return nil
	}
}

// readChange reads path for a create or update. Files that vanished or
// turned out to be directories yield nil.
func (c *Connector) readChange(path string, changeType domain.ChangeType) *domain.RawDocumentChange {
	doc, err := readFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("Skipping %s: %v", path, err)
		}
		return nil
	}
	return &domain.RawDocumentChange{Type: changeType, Document: *doc}
}

// watchIfDir adds a newly created directory tree to the watcher.
func (c *Connector) watchIfDir(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return false
	}

	c.mu.Lock()
	watcher := c.watcher
	c.mu.Unlock()

	if watcher != nil && !c.hidden(path) {
		if err := addTree(watcher, path, c.hidden); err != nil {
			logger.Warn("Cannot watch %s: %v", path, err)
		}
	}
	return true
}

// Close stops any watch in progress. Close is idempotent.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	if c.watcher != nil {
		err := c.watcher.Close()
		c.watcher = nil
		return err
	}
	return nil
}

func (c *Connector) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// hidden checks path relative to the root, so a root inside a dot
// directory is still readable.
func (c *Connector) hidden(path string) bool {
	rel, err := filepath.Rel(c.rootPath, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		rel = path
	}
	return isHidden(rel)
}

func addTree(watcher *fsnotify.Watcher, root string, hidden func(string) bool) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && hidden(path) {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}

func readFile(path string) (*domain.RawDocument, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s: %w", path, fs.ErrNotExist)
	}
	if info.Size() > MaxFileSize {
		return nil, fmt.Errorf("%w: %s is larger than %d bytes", domain.ErrInvalidInput, path, MaxFileSize)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return &domain.RawDocument{
		URI:      path,
		MIMEType: detectMIMEType(path),
		Content:  content,
		Metadata: map[string]any{
			"size":     info.Size(),
			"modified": info.ModTime(),
		},
	}, nil
}

func isWrite(event fsnotify.Event) bool {
	return event.Has(fsnotify.Create) || event.Has(fsnotify.Write)
}

func changeTypeOf(event fsnotify.Event) domain.ChangeType {
	if event.Has(fsnotify.Create) {
		return domain.ChangeCreated
	}
	return domain.ChangeUpdated
}

// extensionTypes covers formats the standard table lacks or reports
// differently across platforms.
var extensionTypes = map[string]string{
	".md":       "text/markdown",
	".markdown": "text/markdown",
	".txt":      "text/plain",
	".text":     "text/plain",
	".json":     "application/json",
	".html":     "text/html",
	".htm":      "text/html",
	".xhtml":    "application/xhtml+xml",
	".xml":      "application/xml",
	".csv":      "text/csv",
	".pdf":      "application/pdf",
}

// detectMIMEType maps a file name to a MIME type without parameters.
// Files without an extension are treated as plain text.
func detectMIMEType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return "text/plain"
	}
	if t, ok := extensionTypes[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension(ext); t != "" {
		if i := strings.IndexByte(t, ';'); i >= 0 {
			t = t[:i]
		}
		return strings.TrimSpace(t)
	}
	return "application/octet-stream"
}

// isHidden reports whether any element of path starts with a dot.
// "." and ".." are not hidden.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if len(part) > 1 && part[0] == '.' && part != ".." {
			return true
		}
	}
	return false
}
